// Package interview implements the mock interview state machine and the
// controller that drives it per browsing session.
package interview

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
)

// ShuffleFunc permutes n elements through swap.
type ShuffleFunc func(n int, swap func(i, j int))

// SelectQuestions filters bank by category and, unless difficulty is mixed,
// by exact difficulty; shuffles the result and keeps the first count entries.
// A count of zero or less keeps all of them.
func SelectQuestions(bank map[string][]domain.InterviewQuestion, category, difficulty string, count int, shuffle ShuffleFunc) []domain.InterviewQuestion {
	var selected []domain.InterviewQuestion
	for _, q := range bank[category] {
		if difficulty != "" && difficulty != domain.DifficultyMixed && q.Difficulty != difficulty {
			continue
		}
		selected = append(selected, q)
	}

	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	if count > 0 && count < len(selected) {
		selected = selected[:count]
	}
	return selected
}

// Session is one run of a mock interview. It is not safe for concurrent use;
// the Controller serialises access.
type Session struct {
	state        domain.InterviewState
	config       domain.InterviewConfig
	questions    []domain.InterviewQuestion
	answers      []domain.AnswerRecord
	currentIndex int
	startTime    time.Time

	now     func() time.Time
	shuffle ShuffleFunc
}

// NewSession returns a session awaiting configuration.
func NewSession(now func() time.Time, shuffle ShuffleFunc) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		state:   domain.InterviewStateAwaitingConfig,
		now:     now,
		shuffle: shuffle,
	}
}

// State returns the current state.
func (s *Session) State() domain.InterviewState { return s.state }

// Config returns the configuration the session was loaded with.
func (s *Session) Config() domain.InterviewConfig { return s.config }

// CurrentIndex returns the index of the question being asked.
func (s *Session) CurrentIndex() int { return s.currentIndex }

// Total returns the number of selected questions.
func (s *Session) Total() int { return len(s.questions) }

// LoadQuestions fetches the bank and selects questions for cfg. On success the
// session is IN_PROGRESS at question one; on failure it returns to
// AWAITING_CONFIG.
func (s *Session) LoadQuestions(ctx context.Context, bank QuestionBank, cfg domain.InterviewConfig) error {
	if s.state == domain.InterviewStateInProgress || s.state == domain.InterviewStateLoading {
		return fmt.Errorf("%w: cannot load questions while %s", domain.ErrInvalidState, s.state)
	}
	s.state = domain.InterviewStateLoading

	all, err := bank.Fetch(ctx)
	if err != nil {
		s.state = domain.InterviewStateAwaitingConfig
		return fmt.Errorf("failed to fetch question bank: %w", err)
	}

	selected := SelectQuestions(all, cfg.Category, cfg.Difficulty, cfg.QuestionCount, s.shuffle)
	if len(selected) == 0 {
		s.state = domain.InterviewStateAwaitingConfig
		return fmt.Errorf("%w: category %q, difficulty %q", domain.ErrNoQuestionsAvailable, cfg.Category, cfg.Difficulty)
	}

	s.config = cfg
	s.questions = selected
	s.answers = nil
	s.currentIndex = 0
	s.startTime = s.now()
	s.state = domain.InterviewStateInProgress
	return nil
}

// Advance records answer for the current question and moves on. It reports
// whether the interview finished with this answer.
func (s *Session) Advance(answer string) (bool, error) {
	if s.state != domain.InterviewStateInProgress {
		return false, fmt.Errorf("%w: cannot advance while %s", domain.ErrInvalidState, s.state)
	}

	q := s.questions[s.currentIndex]
	s.answers = append(s.answers, domain.AnswerRecord{
		QuestionID:  q.ID,
		Question:    q.Question,
		UserAnswer:  answer,
		ModelAnswer: q.Answer,
		Timestamp:   s.now().UTC(),
	})
	s.currentIndex++

	if s.currentIndex >= len(s.questions) {
		s.state = domain.InterviewStateFinished
		return true, nil
	}
	return false, nil
}

// Skip advances past the current question with the skip sentinel.
func (s *Session) Skip() (bool, error) {
	return s.Advance(domain.SkippedAnswer)
}

// Current returns the display model of the question being asked.
func (s *Session) Current() (domain.QuestionView, error) {
	if s.state != domain.InterviewStateInProgress {
		return domain.QuestionView{}, fmt.Errorf("%w: no current question while %s", domain.ErrInvalidState, s.state)
	}
	q := s.questions[s.currentIndex]
	total := len(s.questions)
	return domain.QuestionView{
		Number:     s.currentIndex + 1,
		Total:      total,
		QuestionID: q.ID,
		Question:   q.Question,
		Difficulty: q.Difficulty,
		Category:   q.Category,
		Progress:   float64(s.currentIndex+1) / float64(total) * 100,
	}, nil
}

// Snapshot captures the session for persistence.
func (s *Session) Snapshot() domain.InterviewProgress {
	return domain.InterviewProgress{
		Config:       s.config,
		CurrentIndex: s.currentIndex,
		Answers:      append([]domain.AnswerRecord(nil), s.answers...),
		Questions:    append([]domain.InterviewQuestion(nil), s.questions...),
		StartTime:    s.startTime,
		SavedAt:      s.now().UTC(),
	}
}

// Restore replaces the session with a persisted snapshot. A snapshot whose
// index does not match its answers is rejected with domain.ErrStorageRead.
// A snapshot with every question answered restores as FINISHED.
func (s *Session) Restore(p domain.InterviewProgress) error {
	if len(p.Questions) == 0 || p.CurrentIndex < 0 || p.CurrentIndex > len(p.Questions) || p.CurrentIndex != len(p.Answers) {
		return fmt.Errorf("%w: inconsistent interview progress (index %d, %d answers, %d questions)",
			domain.ErrStorageRead, p.CurrentIndex, len(p.Answers), len(p.Questions))
	}

	s.config = p.Config
	s.questions = append([]domain.InterviewQuestion(nil), p.Questions...)
	s.answers = append([]domain.AnswerRecord(nil), p.Answers...)
	s.currentIndex = p.CurrentIndex
	s.startTime = p.StartTime
	if s.currentIndex == len(s.questions) {
		s.state = domain.InterviewStateFinished
	} else {
		s.state = domain.InterviewStateInProgress
	}
	return nil
}

// Results returns the final payload. The elapsed time runs from the first
// load, so it includes time spent away from a resumed interview.
func (s *Session) Results() domain.InterviewResults {
	now := s.now()
	return domain.InterviewResults{
		Config:      s.config,
		Answers:     append([]domain.AnswerRecord(nil), s.answers...),
		TotalTimeMs: now.Sub(s.startTime).Milliseconds(),
		CompletedAt: now.UTC(),
	}
}

// ExitSummary describes the current position for the exit prompt.
func (s *Session) ExitSummary() domain.ExitSummary {
	return domain.ExitSummary{
		CurrentQuestion: s.currentIndex + 1,
		TotalQuestions:  len(s.questions),
		QuestionsLeft:   len(s.questions) - s.currentIndex,
	}
}

// WordCount counts whitespace-separated words in a draft answer.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
