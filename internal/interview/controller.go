package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/store"
)

// Session-scoped storage keys.
const (
	KeyConfig   = "mock-interview-config"
	KeyProgress = "mock-interview-progress"
	KeyResults  = "mock-interview-results"
)

// DefaultTimeLimit is the per-question budget in timed mode.
const DefaultTimeLimit = 120 * time.Second

// Status is what the host renders after an interview operation.
type Status struct {
	State            domain.InterviewState    `json:"state"`
	Timed            bool                     `json:"timed"`
	Question         *domain.QuestionView     `json:"question,omitempty"`
	RemainingSeconds int                      `json:"remaining_seconds,omitempty"`
	ResumeOffer      *domain.ResumeOffer      `json:"resume_offer,omitempty"`
	Results          *domain.InterviewResults `json:"results,omitempty"`
}

// ExitResult answers an exit request.
type ExitResult struct {
	Choice  domain.ExitChoice  `json:"choice"`
	Exited  bool               `json:"exited"`
	Summary domain.ExitSummary `json:"summary"`
}

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	Bank      QuestionBank  // defaults to EmbeddedBank
	TimeLimit time.Duration // defaults to DefaultTimeLimit
	Tick      time.Duration // countdown resolution, defaults to 1s
	Logger    *logger.Logger
	Now       func() time.Time
	Shuffle   ShuffleFunc
}

type activeSession struct {
	session   *Session
	countdown *Countdown
	offer     *domain.InterviewProgress
}

// Controller drives one interview per browsing session and persists its
// config, progress and results under session-scoped keys.
type Controller struct {
	mu        sync.Mutex
	store     store.Store
	bank      QuestionBank
	timeLimit time.Duration
	tick      time.Duration
	log       *logger.Logger
	now       func() time.Time
	shuffle   ShuffleFunc
	sessions  map[string]*activeSession
}

// NewController creates an interview controller backed by s.
func NewController(s store.Store, opts Options) *Controller {
	c := &Controller{
		store:     s,
		bank:      opts.Bank,
		timeLimit: opts.TimeLimit,
		tick:      opts.Tick,
		log:       opts.Logger,
		now:       opts.Now,
		shuffle:   opts.Shuffle,
		sessions:  make(map[string]*activeSession),
	}
	if c.bank == nil {
		c.bank = EmbeddedBank{}
	}
	if c.timeLimit <= 0 {
		c.timeLimit = DefaultTimeLimit
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Close stops every running countdown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sid, a := range c.sessions {
		a.countdown.Stop()
		delete(c.sessions, sid)
	}
}

// Configure validates cfg, fills in defaults and stores it for the session.
func (c *Controller) Configure(ctx context.Context, sessionID string, cfg domain.InterviewConfig) (domain.InterviewConfig, error) {
	if sessionID == "" {
		return cfg, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	cfg.Category = strings.TrimSpace(cfg.Category)
	cfg.Difficulty = strings.TrimSpace(cfg.Difficulty)
	if cfg.Category == "" {
		return cfg, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = domain.DifficultyMixed
	}
	if cfg.QuestionCount <= 0 {
		return cfg, fmt.Errorf("%w: question count must be positive", domain.ErrInvalidInput)
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = domain.InterviewModeUntimed
	case domain.InterviewModeTimed, domain.InterviewModeUntimed:
	default:
		return cfg, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, cfg.Mode)
	}

	if err := store.SetJSON(ctx, c.store, store.SessionKey(sessionID, KeyConfig), cfg); err != nil {
		return cfg, fmt.Errorf("failed to save interview config: %w", err)
	}
	return cfg, nil
}

// Start opens the interview page. A saved snapshot is offered for resumption
// and nothing else happens until Decide; otherwise the stored config is
// required and questions are loaded.
func (c *Controller) Start(ctx context.Context, sessionID string) (*Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLocked(sessionID)

	if progress, ok := c.loadProgressLocked(ctx, sessionID); ok {
		c.sessions[sessionID] = &activeSession{
			session:   NewSession(c.now, c.shuffle),
			countdown: NewCountdown(c.timeLimit, c.tick),
			offer:     &progress,
		}
		return &Status{
			State: domain.InterviewStateAwaitingConfig,
			Timed: progress.Config.Timed(),
			ResumeOffer: &domain.ResumeOffer{
				Category:      progress.Config.Category,
				QuestionsLeft: progress.QuestionsLeft(),
				SavedAt:       progress.SavedAt,
			},
		}, nil
	}
	return c.startFreshLocked(ctx, sessionID)
}

// Decide answers a pending resume offer.
func (c *Controller) Decide(ctx context.Context, sessionID string, decision domain.ResumeDecision) (*Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.sessions[sessionID]
	if a == nil || a.offer == nil {
		return nil, fmt.Errorf("%w: no resume offer pending", domain.ErrInvalidState)
	}

	switch decision {
	case domain.ResumeDecisionResume:
		if err := a.session.Restore(*a.offer); err != nil {
			c.deleteLocked(ctx, sessionID, KeyProgress)
			delete(c.sessions, sessionID)
			return nil, err
		}
		a.offer = nil
		if a.session.State() == domain.InterviewStateFinished {
			return c.finishLocked(ctx, sessionID, a), nil
		}
		c.startCountdownLocked(sessionID, a)
		return c.statusLocked(a), nil

	case domain.ResumeDecisionDiscardAndRestart:
		delete(c.sessions, sessionID)
		c.deleteLocked(ctx, sessionID, KeyProgress)
		return c.startFreshLocked(ctx, sessionID)

	case domain.ResumeDecisionCancel:
		delete(c.sessions, sessionID)
		return &Status{State: domain.InterviewStateAwaitingConfig}, nil
	}
	return nil, fmt.Errorf("%w: unknown resume decision %q", domain.ErrInvalidInput, decision)
}

// Answer records answer for the current question and advances.
func (c *Controller) Answer(ctx context.Context, sessionID, answer string) (*Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceLocked(ctx, sessionID, answer)
}

// Skip advances with the skip sentinel.
func (c *Controller) Skip(ctx context.Context, sessionID string) (*Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceLocked(ctx, sessionID, domain.SkippedAnswer)
}

// View returns the current status without changing anything.
func (c *Controller) View(sessionID string) (*Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.sessions[sessionID]
	if a == nil {
		return &Status{State: domain.InterviewStateAwaitingConfig}, nil
	}
	if a.offer != nil {
		return &Status{
			State: domain.InterviewStateAwaitingConfig,
			Timed: a.offer.Config.Timed(),
			ResumeOffer: &domain.ResumeOffer{
				Category:      a.offer.Config.Category,
				QuestionsLeft: a.offer.QuestionsLeft(),
				SavedAt:       a.offer.SavedAt,
			},
		}, nil
	}
	return c.statusLocked(a), nil
}

// SaveProgress writes the in-progress snapshot.
func (c *Controller) SaveProgress(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := c.inProgressLocked(sessionID)
	if err != nil {
		return err
	}
	return c.saveProgressLocked(ctx, sessionID, a)
}

// ExitPrompt returns the summary shown when the user asks to leave.
func (c *Controller) ExitPrompt(sessionID string) (domain.ExitSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := c.inProgressLocked(sessionID)
	if err != nil {
		return domain.ExitSummary{}, err
	}
	return a.session.ExitSummary(), nil
}

// Exit answers the exit prompt. Save keeps a snapshot for later, discard
// removes config and progress, stay changes nothing.
func (c *Controller) Exit(ctx context.Context, sessionID string, choice domain.ExitChoice) (*ExitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := c.inProgressLocked(sessionID)
	if err != nil {
		return nil, err
	}
	result := &ExitResult{Choice: choice, Summary: a.session.ExitSummary()}

	switch choice {
	case domain.ExitChoiceStay:
		return result, nil
	case domain.ExitChoiceSave:
		if err := c.saveProgressLocked(ctx, sessionID, a); err != nil {
			return nil, err
		}
	case domain.ExitChoiceDiscard:
		c.deleteLocked(ctx, sessionID, KeyConfig)
		c.deleteLocked(ctx, sessionID, KeyProgress)
	default:
		return nil, fmt.Errorf("%w: unknown exit choice %q", domain.ErrInvalidInput, choice)
	}

	c.dropLocked(sessionID)
	result.Exited = true
	return result, nil
}

// Results returns the stored results of the session's last finished interview.
func (c *Controller) Results(ctx context.Context, sessionID string) (*domain.InterviewResults, error) {
	var results domain.InterviewResults
	err := store.GetJSON(ctx, c.store, store.SessionKey(sessionID, KeyResults), &results)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: no interview results", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &results, nil
}

func (c *Controller) startFreshLocked(ctx context.Context, sessionID string) (*Status, error) {
	cfg, err := c.configLocked(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess := NewSession(c.now, c.shuffle)
	if err := sess.LoadQuestions(ctx, c.bank, cfg); err != nil {
		return nil, err
	}

	a := &activeSession{session: sess, countdown: NewCountdown(c.timeLimit, c.tick)}
	c.sessions[sessionID] = a
	if err := c.saveProgressLocked(ctx, sessionID, a); err != nil {
		c.log.Warn("failed to persist interview progress", logger.Fields{"session_id": sessionID, "error": err.Error()})
	}
	c.startCountdownLocked(sessionID, a)

	c.log.Info("interview started", logger.Fields{
		"session_id": sessionID,
		"category":   cfg.Category,
		"difficulty": cfg.Difficulty,
		"questions":  sess.Total(),
		"mode":       cfg.Mode,
	})
	return c.statusLocked(a), nil
}

func (c *Controller) advanceLocked(ctx context.Context, sessionID, answer string) (*Status, error) {
	a, err := c.inProgressLocked(sessionID)
	if err != nil {
		return nil, err
	}

	finished, err := a.session.Advance(answer)
	if err != nil {
		return nil, err
	}
	if finished {
		return c.finishLocked(ctx, sessionID, a), nil
	}

	if err := c.saveProgressLocked(ctx, sessionID, a); err != nil {
		c.log.Warn("failed to persist interview progress", logger.Fields{"session_id": sessionID, "error": err.Error()})
	}
	c.startCountdownLocked(sessionID, a)
	return c.statusLocked(a), nil
}

func (c *Controller) finishLocked(ctx context.Context, sessionID string, a *activeSession) *Status {
	a.countdown.Stop()
	c.deleteLocked(ctx, sessionID, KeyProgress)

	results := a.session.Results()
	if err := store.SetJSON(ctx, c.store, store.SessionKey(sessionID, KeyResults), results); err != nil {
		c.log.Error("failed to save interview results", logger.Fields{"session_id": sessionID, "error": err.Error()})
	}

	c.log.Info("interview finished", logger.Fields{
		"session_id": sessionID,
		"answers":    len(results.Answers),
		"total_ms":   results.TotalTimeMs,
	})
	return &Status{
		State:   domain.InterviewStateFinished,
		Timed:   a.session.Config().Timed(),
		Results: &results,
	}
}

// startCountdownLocked restarts the timer for the current question. The
// expiry callback only skips if the session is still on that question.
func (c *Controller) startCountdownLocked(sessionID string, a *activeSession) {
	if !a.session.Config().Timed() {
		return
	}
	index := a.session.CurrentIndex()
	a.countdown.Reset(func() {
		c.expire(sessionID, a, index)
	})
}

func (c *Controller) expire(sessionID string, a *activeSession, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessions[sessionID] != a || a.session.State() != domain.InterviewStateInProgress || a.session.CurrentIndex() != index {
		return
	}
	c.log.Debug("question timed out", logger.Fields{"session_id": sessionID, "index": index})
	if _, err := c.advanceLocked(context.Background(), sessionID, domain.SkippedAnswer); err != nil {
		c.log.Warn("failed to skip timed out question", logger.Fields{"session_id": sessionID, "error": err.Error()})
	}
}

func (c *Controller) statusLocked(a *activeSession) *Status {
	st := &Status{
		State: a.session.State(),
		Timed: a.session.Config().Timed(),
	}
	if q, err := a.session.Current(); err == nil {
		st.Question = &q
	}
	if st.Timed && st.State == domain.InterviewStateInProgress {
		st.RemainingSeconds = a.countdown.RemainingSeconds()
	}
	return st
}

func (c *Controller) inProgressLocked(sessionID string) (*activeSession, error) {
	a := c.sessions[sessionID]
	if a == nil || a.offer != nil || a.session.State() != domain.InterviewStateInProgress {
		return nil, fmt.Errorf("%w: no interview in progress", domain.ErrInvalidState)
	}
	return a, nil
}

// dropLocked forgets the in-memory session, like leaving the page.
func (c *Controller) dropLocked(sessionID string) {
	if a := c.sessions[sessionID]; a != nil {
		a.countdown.Stop()
		delete(c.sessions, sessionID)
	}
}

func (c *Controller) configLocked(ctx context.Context, sessionID string) (domain.InterviewConfig, error) {
	var cfg domain.InterviewConfig
	err := store.GetJSON(ctx, c.store, store.SessionKey(sessionID, KeyConfig), &cfg)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return cfg, domain.ErrConfigRequired
	case errors.Is(err, domain.ErrStorageRead):
		c.log.Warn("discarding unreadable interview config", logger.Fields{"session_id": sessionID, "error": err.Error()})
		return cfg, fmt.Errorf("%w: %v", domain.ErrConfigRequired, err)
	case err != nil:
		return cfg, fmt.Errorf("failed to load interview config: %w", err)
	}
	return cfg, nil
}

// loadProgressLocked returns the saved snapshot, if any. A snapshot that does
// not decode or is inconsistent is deleted and treated as absent.
func (c *Controller) loadProgressLocked(ctx context.Context, sessionID string) (domain.InterviewProgress, bool) {
	var progress domain.InterviewProgress
	err := store.GetJSON(ctx, c.store, store.SessionKey(sessionID, KeyProgress), &progress)
	if errors.Is(err, store.ErrNotFound) {
		return progress, false
	}
	if err == nil {
		err = NewSession(c.now, nil).Restore(progress)
	}
	if err != nil {
		c.log.Warn("discarding unreadable interview progress", logger.Fields{"session_id": sessionID, "error": err.Error()})
		c.deleteLocked(ctx, sessionID, KeyProgress)
		return progress, false
	}
	return progress, true
}

func (c *Controller) saveProgressLocked(ctx context.Context, sessionID string, a *activeSession) error {
	if err := store.SetJSON(ctx, c.store, store.SessionKey(sessionID, KeyProgress), a.session.Snapshot()); err != nil {
		return fmt.Errorf("failed to save interview progress: %w", err)
	}
	return nil
}

func (c *Controller) deleteLocked(ctx context.Context, sessionID, key string) {
	if err := c.store.Delete(ctx, store.SessionKey(sessionID, key)); err != nil && !errors.Is(err, store.ErrNotFound) {
		c.log.Warn("failed to delete session key", logger.Fields{"session_id": sessionID, "key": key, "error": err.Error()})
	}
}
