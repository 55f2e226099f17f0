package domain

import "errors"

var (
	// ErrInvalidInput is returned for empty message content, unknown ids and bad configs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a conversation, message or question does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoQuestionsAvailable is returned when the filtered question set is empty.
	ErrNoQuestionsAvailable = errors.New("no questions available for this configuration")
	// ErrStorageRead is returned when a persisted value cannot be parsed.
	ErrStorageRead = errors.New("storage read error")
	// ErrFetch is returned when the question bank cannot be fetched.
	ErrFetch = errors.New("failed to load interview questions")
	// ErrConfigRequired is returned when an interview is started without a configuration.
	ErrConfigRequired = errors.New("interview configuration required")
	// ErrInvalidState is returned when an interview operation does not fit the current state.
	ErrInvalidState = errors.New("invalid interview state")
	// ErrPolicyDenied is returned when the messaging policy rejects an action.
	ErrPolicyDenied = errors.New("denied by messaging policy")
)
