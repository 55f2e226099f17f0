package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/interview"
	"github.com/Terrence-morris-dev/cag-portal-astro/tests/helpers"
)

func newTestPage(t *testing.T) InterviewPage {
	t.Helper()
	ctl := interview.NewController(helpers.NewTestSQLiteStore(t), interview.Options{})
	t.Cleanup(ctl.Close)
	return InitialInterviewModel(context.Background(), ctl, "tui")
}

func step(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	next, cmd := m.Update(msg)
	// run controller commands synchronously
	if cmd != nil {
		if sm, ok := cmd().(statusMsg); ok {
			next, _ = next.Update(sm)
		}
	}
	return next
}

func TestPageAsksForConfigFirst(t *testing.T) {
	m := newTestPage(t)
	st, err := m.ctl.Start(m.ctx, m.sessionID)
	next, _ := m.Update(statusMsg{status: st, err: err})

	page := next.(InterviewPage)
	assert.Equal(t, phaseConfig, page.phase)
	assert.Contains(t, page.View(), "Configure your interview")
}

func TestPageRunsInterview(t *testing.T) {
	m := newTestPage(t)
	_, err := m.ctl.Configure(m.ctx, m.sessionID, domain.InterviewConfig{Category: "clearance", QuestionCount: 2})
	require.NoError(t, err)

	st, err := m.ctl.Start(m.ctx, m.sessionID)
	var model tea.Model
	model, _ = m.Update(statusMsg{status: st, err: err})
	require.Equal(t, phaseQuestion, model.(InterviewPage).phase)
	assert.Contains(t, model.View(), "Question 1 of 2")

	model = step(t, model, tea.KeyMsg{Type: tea.KeyCtrlK})
	assert.Contains(t, model.View(), "Question 2 of 2")

	model = step(t, model, tea.KeyMsg{Type: tea.KeyCtrlK})
	page := model.(InterviewPage)
	require.Equal(t, phaseResults, page.phase)
	require.NotNil(t, page.results)
	assert.Len(t, page.results.Answers, 2)
	assert.Contains(t, page.View(), "0 answered, 2 skipped")
}

func TestPageConfigDefaultsFromPlaceholders(t *testing.T) {
	m := newTestPage(t)
	cfg := m.config()

	assert.Equal(t, "technical", cfg.Category)
	assert.Equal(t, domain.DifficultyMixed, cfg.Difficulty)
	assert.Equal(t, 5, cfg.QuestionCount)
	assert.Equal(t, domain.InterviewModeUntimed, cfg.Mode)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", progressBar(50, 10))
	assert.Equal(t, "██████████", progressBar(120, 10))
}
