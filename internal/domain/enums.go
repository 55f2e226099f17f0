// Package domain defines the core domain models for the portal.
package domain

// InterviewState represents the state of a mock interview session.
type InterviewState string

const (
	InterviewStateAwaitingConfig InterviewState = "AWAITING_CONFIG"
	InterviewStateLoading        InterviewState = "LOADING"
	InterviewStateInProgress     InterviewState = "IN_PROGRESS"
	InterviewStateFinished       InterviewState = "FINISHED"
)

// InterviewMode selects whether questions are timed.
type InterviewMode string

const (
	InterviewModeTimed   InterviewMode = "timed"
	InterviewModeUntimed InterviewMode = "untimed"
)

// DifficultyMixed is the wildcard difficulty that disables difficulty filtering.
const DifficultyMixed = "mixed"

// SkippedAnswer is recorded as the user answer of a skipped question.
const SkippedAnswer = "[SKIPPED]"

// ResumeDecision is the caller's answer to a resume offer.
type ResumeDecision string

const (
	ResumeDecisionResume            ResumeDecision = "resume"
	ResumeDecisionDiscardAndRestart ResumeDecision = "discard"
	ResumeDecisionCancel            ResumeDecision = "cancel"
)

// ExitChoice is the caller's answer to the exit prompt.
type ExitChoice string

const (
	ExitChoiceSave    ExitChoice = "save"
	ExitChoiceDiscard ExitChoice = "discard"
	ExitChoiceStay    ExitChoice = "stay"
)

// ChangeEventType represents the type of a render-trigger notification.
type ChangeEventType string

const (
	ChangeEventConversationUpdated ChangeEventType = "conversation_updated"
	ChangeEventMessageSent         ChangeEventType = "message_sent"
	ChangeEventMessageRead         ChangeEventType = "message_read"
	ChangeEventViewerChanged       ChangeEventType = "viewer_changed"
)
