package interview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/store"
	"github.com/Terrence-morris-dev/cag-portal-astro/tests/helpers"
)

const testSession = "sess-1"

func newTestController(t *testing.T, opts Options) (*Controller, store.Store) {
	t.Helper()
	db := helpers.NewTestSQLiteStore(t)
	c := NewController(db, opts)
	t.Cleanup(c.Close)
	return c, db
}

func configure(t *testing.T, c *Controller, cfg domain.InterviewConfig) {
	t.Helper()
	_, err := c.Configure(context.Background(), testSession, cfg)
	require.NoError(t, err)
}

func hasKey(t *testing.T, db store.Store, key string) bool {
	t.Helper()
	_, err := db.Get(context.Background(), store.SessionKey(testSession, key))
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestConfigureValidates(t *testing.T) {
	c, _ := newTestController(t, Options{})
	ctx := context.Background()

	cfg, err := c.Configure(ctx, testSession, domain.InterviewConfig{Category: " technical ", QuestionCount: 3})
	require.NoError(t, err)
	assert.Equal(t, "technical", cfg.Category)
	assert.Equal(t, domain.DifficultyMixed, cfg.Difficulty)
	assert.Equal(t, domain.InterviewModeUntimed, cfg.Mode)

	tests := []domain.InterviewConfig{
		{QuestionCount: 3},
		{Category: "technical"},
		{Category: "technical", QuestionCount: 3, Mode: "sprint"},
	}
	for _, bad := range tests {
		_, err := c.Configure(ctx, testSession, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestStartRequiresConfig(t *testing.T) {
	c, db := newTestController(t, Options{})

	_, err := c.Start(context.Background(), testSession)
	assert.ErrorIs(t, err, domain.ErrConfigRequired)

	require.NoError(t, db.Set(context.Background(), store.SessionKey(testSession, KeyConfig), []byte("nope")))
	_, err = c.Start(context.Background(), testSession)
	assert.ErrorIs(t, err, domain.ErrConfigRequired)
}

func TestStartSurfacesBankErrors(t *testing.T) {
	c, _ := newTestController(t, Options{Bank: failingBank{}})
	configure(t, c, domain.InterviewConfig{Category: "technical", QuestionCount: 3})

	_, err := c.Start(context.Background(), testSession)
	assert.ErrorIs(t, err, domain.ErrFetch)

	c2, _ := newTestController(t, Options{})
	_, err = c2.Configure(context.Background(), testSession, domain.InterviewConfig{Category: "underwater", QuestionCount: 3})
	require.NoError(t, err)
	_, err = c2.Start(context.Background(), testSession)
	assert.ErrorIs(t, err, domain.ErrNoQuestionsAvailable)
}

func TestFullRunDeletesProgressAndWritesResults(t *testing.T) {
	ctx := context.Background()
	c, db := newTestController(t, Options{})
	configure(t, c, domain.InterviewConfig{Category: "technical", Difficulty: "mixed", QuestionCount: 3})

	st, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStateInProgress, st.State)
	require.NotNil(t, st.Question)
	assert.Equal(t, 1, st.Question.Number)

	st, err = c.Answer(ctx, testSession, "an answer")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Question.Number)
	assert.True(t, hasKey(t, db, KeyProgress), "progress is persisted on every advance")

	_, err = c.Skip(ctx, testSession)
	require.NoError(t, err)
	st, err = c.Answer(ctx, testSession, "final")
	require.NoError(t, err)

	assert.Equal(t, domain.InterviewStateFinished, st.State)
	require.NotNil(t, st.Results)
	assert.Len(t, st.Results.Answers, 3)
	assert.False(t, hasKey(t, db, KeyProgress))

	results, err := c.Results(ctx, testSession)
	require.NoError(t, err)
	assert.Len(t, results.Answers, 3)
	assert.True(t, results.Answers[1].Skipped())

	_, err = c.Answer(ctx, testSession, "more")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestResultsMissing(t *testing.T) {
	c, _ := newTestController(t, Options{})
	_, err := c.Results(context.Background(), testSession)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResumeRestoresSavedProgress(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, Options{})
	configure(t, c, domain.InterviewConfig{Category: "technical", QuestionCount: 4})

	_, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	_, err = c.Answer(ctx, testSession, "first")
	require.NoError(t, err)
	require.NoError(t, c.SaveProgress(ctx, testSession))
	saved := c.sessions[testSession].session.Snapshot()

	st, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	require.NotNil(t, st.ResumeOffer)
	assert.Equal(t, "technical", st.ResumeOffer.Category)
	assert.Equal(t, 3, st.ResumeOffer.QuestionsLeft)
	assert.Nil(t, st.Question)

	_, err = c.Answer(ctx, testSession, "not yet")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "nothing proceeds before a decision")

	st, err = c.Decide(ctx, testSession, domain.ResumeDecisionResume)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Question.Number)

	restored := c.sessions[testSession].session
	assert.Equal(t, saved.CurrentIndex, restored.currentIndex)
	assert.Equal(t, saved.Answers, restored.answers)
	assert.Equal(t, saved.Questions, restored.questions)
}

func TestDiscardRestartsFromLoading(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, Options{})
	configure(t, c, domain.InterviewConfig{Category: "behavioral", QuestionCount: 2})

	_, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	_, err = c.Skip(ctx, testSession)
	require.NoError(t, err)

	_, err = c.Start(ctx, testSession)
	require.NoError(t, err)
	st, err := c.Decide(ctx, testSession, domain.ResumeDecisionDiscardAndRestart)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStateInProgress, st.State)
	assert.Equal(t, 1, st.Question.Number)
	assert.Empty(t, c.sessions[testSession].session.answers)
}

func TestCancelKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	c, db := newTestController(t, Options{})
	configure(t, c, domain.InterviewConfig{Category: "behavioral", QuestionCount: 2})

	_, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	_, err = c.Start(ctx, testSession)
	require.NoError(t, err)

	st, err := c.Decide(ctx, testSession, domain.ResumeDecisionCancel)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStateAwaitingConfig, st.State)
	assert.True(t, hasKey(t, db, KeyProgress))

	_, err = c.Decide(ctx, testSession, domain.ResumeDecisionResume)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCorruptSnapshotTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	c, db := newTestController(t, Options{})
	configure(t, c, domain.InterviewConfig{Category: "clearance", QuestionCount: 2})
	require.NoError(t, db.Set(ctx, store.SessionKey(testSession, KeyProgress), []byte(`{"currentIndex":5}`)))

	st, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	assert.Nil(t, st.ResumeOffer)
	assert.Equal(t, domain.InterviewStateInProgress, st.State)
}

func TestExitChoices(t *testing.T) {
	ctx := context.Background()
	c, db := newTestController(t, Options{})
	configure(t, c, domain.InterviewConfig{Category: "technical", QuestionCount: 3})

	_, err := c.Start(ctx, testSession)
	require.NoError(t, err)

	summary, err := c.ExitPrompt(testSession)
	require.NoError(t, err)
	assert.Equal(t, domain.ExitSummary{CurrentQuestion: 1, TotalQuestions: 3, QuestionsLeft: 3}, summary)

	res, err := c.Exit(ctx, testSession, domain.ExitChoiceStay)
	require.NoError(t, err)
	assert.False(t, res.Exited)
	_, err = c.Skip(ctx, testSession)
	require.NoError(t, err, "staying keeps the interview running")

	res, err = c.Exit(ctx, testSession, domain.ExitChoiceSave)
	require.NoError(t, err)
	assert.True(t, res.Exited)
	assert.True(t, hasKey(t, db, KeyProgress))
	assert.True(t, hasKey(t, db, KeyConfig))

	st, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	require.NotNil(t, st.ResumeOffer)
	assert.Equal(t, 2, st.ResumeOffer.QuestionsLeft)
	_, err = c.Decide(ctx, testSession, domain.ResumeDecisionResume)
	require.NoError(t, err)

	res, err = c.Exit(ctx, testSession, domain.ExitChoiceDiscard)
	require.NoError(t, err)
	assert.True(t, res.Exited)
	assert.False(t, hasKey(t, db, KeyProgress))
	assert.False(t, hasKey(t, db, KeyConfig))

	_, err = c.Exit(ctx, testSession, domain.ExitChoiceStay)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTimedQuestionExpiresAsSkip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, Options{TimeLimit: 30 * time.Millisecond, Tick: 10 * time.Millisecond})
	configure(t, c, domain.InterviewConfig{Category: "technical", QuestionCount: 2, Mode: domain.InterviewModeTimed})

	st, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	assert.True(t, st.Timed)
	assert.Equal(t, 1, st.RemainingSeconds)

	require.Eventually(t, func() bool {
		st, err := c.View(testSession)
		return err == nil && st.State == domain.InterviewStateFinished
	}, 2*time.Second, 5*time.Millisecond)

	results, err := c.Results(ctx, testSession)
	require.NoError(t, err)
	require.Len(t, results.Answers, 2)
	for _, a := range results.Answers {
		assert.True(t, a.Skipped())
	}
}

func TestUntimedInterviewHasNoCountdown(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, Options{TimeLimit: 10 * time.Millisecond, Tick: time.Millisecond})
	configure(t, c, domain.InterviewConfig{Category: "technical", QuestionCount: 2})

	_, err := c.Start(ctx, testSession)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	st, err := c.View(testSession)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Question.Number)
	assert.Zero(t, st.RemainingSeconds)
}

func TestAnswerBeforeStart(t *testing.T) {
	c, _ := newTestController(t, Options{})

	_, err := c.Answer(context.Background(), testSession, "hi")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = c.Decide(context.Background(), testSession, domain.ResumeDecisionResume)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	st, err := c.View(testSession)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewStateAwaitingConfig, st.State)
}
