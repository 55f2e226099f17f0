package domain

import "time"

// InterviewQuestion is one entry of the read-only question bank.
type InterviewQuestion struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

// AnswerRecord is produced for every question the user advances past.
type AnswerRecord struct {
	QuestionID  string    `json:"questionId"`
	Question    string    `json:"question"`
	UserAnswer  string    `json:"userAnswer"`
	ModelAnswer string    `json:"modelAnswer"`
	Timestamp   time.Time `json:"timestamp"`
}

// Skipped reports whether the record carries the skip sentinel.
func (a AnswerRecord) Skipped() bool {
	return a.UserAnswer == SkippedAnswer
}

// InterviewConfig is the session-scoped interview configuration.
type InterviewConfig struct {
	Category      string        `json:"category"`
	Difficulty    string        `json:"difficulty"`
	QuestionCount int           `json:"questionCount"`
	Mode          InterviewMode `json:"mode"`
}

// Timed reports whether the configuration asks for a per-question countdown.
func (c InterviewConfig) Timed() bool {
	return c.Mode == InterviewModeTimed
}

// InterviewProgress is the persisted in-progress snapshot.
type InterviewProgress struct {
	Config       InterviewConfig     `json:"config"`
	CurrentIndex int                 `json:"currentIndex"`
	Answers      []AnswerRecord      `json:"answers"`
	Questions    []InterviewQuestion `json:"questions"`
	StartTime    time.Time           `json:"startTime"`
	SavedAt      time.Time           `json:"savedAt"`
}

// QuestionsLeft returns how many questions remain unanswered.
func (p InterviewProgress) QuestionsLeft() int {
	return len(p.Questions) - p.CurrentIndex
}

// InterviewResults is handed to the results view when an interview finishes.
type InterviewResults struct {
	Config      InterviewConfig `json:"config"`
	Answers     []AnswerRecord  `json:"answers"`
	TotalTimeMs int64           `json:"totalTime"`
	CompletedAt time.Time       `json:"completedAt"`
}

// QuestionView is the display model of the current question.
type QuestionView struct {
	Number     int     `json:"number"`
	Total      int     `json:"total"`
	QuestionID string  `json:"question_id"`
	Question   string  `json:"question"`
	Difficulty string  `json:"difficulty"`
	Category   string  `json:"category"`
	Progress   float64 `json:"progress"` // percent, 0-100
}

// ResumeOffer describes a saved interview the caller may resume.
type ResumeOffer struct {
	Category      string    `json:"category"`
	QuestionsLeft int       `json:"questions_left"`
	SavedAt       time.Time `json:"saved_at"`
}

// ExitSummary describes where the user stands when asking to exit.
type ExitSummary struct {
	CurrentQuestion int `json:"current_question"`
	TotalQuestions  int `json:"total_questions"`
	QuestionsLeft   int `json:"questions_left"`
}
