package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/interview"
)

type phase int

const (
	phaseConfig phase = iota
	phaseLoading
	phaseResume
	phaseQuestion
	phaseExit
	phaseResults
)

// statusMsg carries the result of a controller call made in a command.
type statusMsg struct {
	status *interview.Status
	err    error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type InterviewPage struct {
	ctx       context.Context
	ctl       *interview.Controller
	sessionID string

	phase   phase
	inputs  []textinput.Model // category, difficulty, count, mode
	focus   int
	answer  textarea.Model
	status  *interview.Status
	summary domain.ExitSummary
	results *domain.InterviewResults
	msg     string

	titleStyle lipgloss.Style
	focusStyle lipgloss.Style
	dimStyle   lipgloss.Style
	errStyle   lipgloss.Style
}

func InitialInterviewModel(ctx context.Context, ctl *interview.Controller, sessionID string) InterviewPage {
	m := InterviewPage{ctx: ctx, ctl: ctl, sessionID: sessionID, phase: phaseLoading}

	placeholders := []string{"technical", "mixed", "5", "untimed"}
	labels := []string{"Category", "Difficulty", "Questions", "Mode"}
	m.inputs = make([]textinput.Model, len(placeholders))
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = fmt.Sprintf("%-11s ", labels[i]+":")
		ti.CharLimit = 32
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()

	m.answer = textarea.New()
	m.answer.Placeholder = "Type your answer..."
	m.answer.Prompt = "┃ "
	m.answer.ShowLineNumbers = false
	m.answer.SetHeight(6)
	m.answer.SetWidth(80)
	m.answer.FocusedStyle.CursorLine = lipgloss.NewStyle()

	m.titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7dd3fc"))
	m.focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000")).Background(lipgloss.Color("#FFF"))
	m.dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	m.errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	return m
}

func (m InterviewPage) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startCmd(), tick())
}

func (m InterviewPage) startCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := m.ctl.Start(m.ctx, m.sessionID)
		return statusMsg{status: st, err: err}
	}
}

func (m InterviewPage) decideCmd(d domain.ResumeDecision) tea.Cmd {
	return func() tea.Msg {
		st, err := m.ctl.Decide(m.ctx, m.sessionID, d)
		return statusMsg{status: st, err: err}
	}
}

func (m InterviewPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case statusMsg:
		return m.apply(msg.status, msg.err)

	case tickMsg:
		// the countdown may have skipped a question in the background
		if m.phase == phaseQuestion {
			st, err := m.ctl.View(m.sessionID)
			if err == nil && (st.State == domain.InterviewStateFinished || questionChanged(m.status, st)) {
				mm, cmd := m.apply(st, nil)
				return mm, tea.Batch(cmd, tick())
			}
			if err == nil {
				m.status = st
			}
		}
		return m, tick()
	}

	var cmd tea.Cmd
	switch m.phase {
	case phaseConfig:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	case phaseQuestion:
		m.answer, cmd = m.answer.Update(msg)
	}
	return m, cmd
}

func questionChanged(prev, next *interview.Status) bool {
	if prev == nil || prev.Question == nil || next.Question == nil {
		return false
	}
	return prev.Question.Number != next.Question.Number
}

func (m InterviewPage) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseConfig:
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case "enter":
			if m.focus < len(m.inputs)-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			if _, err := m.ctl.Configure(m.ctx, m.sessionID, m.config()); err != nil {
				m.msg = err.Error()
				return m, nil
			}
			m.phase = phaseLoading
			m.msg = ""
			return m, m.startCmd()
		case "esc":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd

	case phaseResume:
		switch msg.String() {
		case "r":
			return m, m.decideCmd(domain.ResumeDecisionResume)
		case "d":
			return m, m.decideCmd(domain.ResumeDecisionDiscardAndRestart)
		case "c", "esc":
			m.ctl.Decide(m.ctx, m.sessionID, domain.ResumeDecisionCancel)
			return m, tea.Quit
		}
		return m, nil

	case phaseQuestion:
		switch msg.String() {
		case "ctrl+s":
			st, err := m.ctl.Answer(m.ctx, m.sessionID, m.answer.Value())
			return m.apply(st, err)
		case "ctrl+k":
			st, err := m.ctl.Skip(m.ctx, m.sessionID)
			return m.apply(st, err)
		case "esc":
			summary, err := m.ctl.ExitPrompt(m.sessionID)
			if err != nil {
				m.msg = err.Error()
				return m, nil
			}
			m.summary = summary
			m.phase = phaseExit
			return m, nil
		}
		var cmd tea.Cmd
		m.answer, cmd = m.answer.Update(msg)
		return m, cmd

	case phaseExit:
		var choice domain.ExitChoice
		switch msg.String() {
		case "s":
			choice = domain.ExitChoiceSave
		case "d":
			choice = domain.ExitChoiceDiscard
		case "c", "esc":
			choice = domain.ExitChoiceStay
		default:
			return m, nil
		}
		res, err := m.ctl.Exit(m.ctx, m.sessionID, choice)
		if err != nil {
			m.msg = err.Error()
			m.phase = phaseQuestion
			return m, nil
		}
		if !res.Exited {
			m.phase = phaseQuestion
			return m, nil
		}
		return m, tea.Quit

	case phaseResults:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "n":
			m.phase = phaseConfig
			m.results = nil
			m.setFocus(0)
		}
	}
	return m, nil
}

// apply moves the page to whatever the controller reports.
func (m InterviewPage) apply(st *interview.Status, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.msg = err.Error()
		switch {
		case errors.Is(err, domain.ErrConfigRequired):
			m.msg = ""
			m.phase = phaseConfig
		case errors.Is(err, domain.ErrNoQuestionsAvailable), errors.Is(err, domain.ErrFetch):
			m.phase = phaseConfig
		}
		return m, nil
	}

	changed := m.phase != phaseQuestion || m.status == nil || questionChanged(m.status, st)
	m.status = st
	m.msg = ""
	switch {
	case st.ResumeOffer != nil:
		m.phase = phaseResume
	case st.State == domain.InterviewStateFinished:
		m.results = st.Results
		if m.results == nil {
			m.results, _ = m.ctl.Results(m.ctx, m.sessionID)
		}
		m.phase = phaseResults
	case st.State == domain.InterviewStateInProgress:
		if changed {
			m.answer.Reset()
		}
		m.phase = phaseQuestion
		m.answer.Focus()
		return m, textarea.Blink
	default:
		// a cancelled offer leaves nothing to show
		return m, tea.Quit
	}
	return m, nil
}

func (m *InterviewPage) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m InterviewPage) config() domain.InterviewConfig {
	value := func(i int) string {
		if v := strings.TrimSpace(m.inputs[i].Value()); v != "" {
			return v
		}
		return m.inputs[i].Placeholder
	}
	count, err := strconv.Atoi(value(2))
	if err != nil {
		count = 0
	}
	return domain.InterviewConfig{
		Category:      strings.ToLower(value(0)),
		Difficulty:    strings.ToLower(value(1)),
		QuestionCount: count,
		Mode:          domain.InterviewMode(strings.ToLower(value(3))),
	}
}

func (m InterviewPage) View() string {
	var s strings.Builder
	s.WriteString(m.titleStyle.Render("Mock Interview") + "\n\n")

	switch m.phase {
	case phaseLoading:
		s.WriteString("Loading questions...\n")

	case phaseConfig:
		s.WriteString("Configure your interview:\n\n")
		for i, in := range m.inputs {
			line := in.View()
			if i == m.focus {
				line = m.focusStyle.Render(">") + " " + line
			} else {
				line = "  " + line
			}
			s.WriteString(line + "\n")
		}
		s.WriteString(m.dimStyle.Render("\ntab to move, enter to start, esc to quit") + "\n")

	case phaseResume:
		offer := m.status.ResumeOffer
		fmt.Fprintf(&s, "You have a saved %s interview with %d questions left (saved %s).\n\n",
			offer.Category, offer.QuestionsLeft, offer.SavedAt.Local().Format("Jan 2 3:04 PM"))
		s.WriteString("r resume   d discard and restart   c cancel\n")

	case phaseQuestion, phaseExit:
		q := m.status.Question
		if q == nil {
			break
		}
		header := fmt.Sprintf("Question %d of %d   [%s] [%s]", q.Number, q.Total, q.Category, q.Difficulty)
		if m.status.Timed {
			r := m.status.RemainingSeconds
			header += fmt.Sprintf("   ⏱ %d:%02d", r/60, r%60)
		}
		s.WriteString(header + "\n")
		s.WriteString(m.dimStyle.Render(progressBar(q.Progress, 40)) + "\n\n")
		s.WriteString(q.Question + "\n\n")
		s.WriteString(m.answer.View() + "\n")
		fmt.Fprintf(&s, "%s\n", m.dimStyle.Render(fmt.Sprintf("%d words", interview.WordCount(m.answer.Value()))))

		if m.phase == phaseExit {
			fmt.Fprintf(&s, "\nYou are on question %d of %d (%d left).\n",
				m.summary.CurrentQuestion, m.summary.TotalQuestions, m.summary.QuestionsLeft)
			s.WriteString("s save and exit   d discard and exit   c stay\n")
		} else {
			s.WriteString(m.dimStyle.Render("ctrl+s submit   ctrl+k skip   esc exit") + "\n")
		}

	case phaseResults:
		if m.results == nil {
			s.WriteString("No results.\n")
			break
		}
		answered := 0
		for _, a := range m.results.Answers {
			if !a.Skipped() {
				answered++
			}
		}
		elapsed := time.Duration(m.results.TotalTimeMs) * time.Millisecond
		fmt.Fprintf(&s, "Finished: %d answered, %d skipped in %s\n\n",
			answered, len(m.results.Answers)-answered, elapsed.Round(time.Second))
		for i, a := range m.results.Answers {
			fmt.Fprintf(&s, "%d. %s\n", i+1, a.Question)
			fmt.Fprintf(&s, "   you:   %s\n", a.UserAnswer)
			fmt.Fprintf(&s, "   model: %s\n\n", m.dimStyle.Render(a.ModelAnswer))
		}
		s.WriteString("n new interview   q quit\n")
	}

	if m.msg != "" {
		s.WriteString("\n" + m.errStyle.Render(m.msg) + "\n")
	}
	return s.String()
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
