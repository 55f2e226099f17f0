package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
)

// DecideRequest answers a resume offer.
type DecideRequest struct {
	Decision domain.ResumeDecision `json:"decision"`
}

// AnswerRequest carries the user's answer to the current question.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// ExitRequest answers the exit prompt.
type ExitRequest struct {
	Choice domain.ExitChoice `json:"choice"`
}

// ConfigureInterview stores the interview configuration.
// PUT /v1/interview/sessions/:session_id/config
func (h *Handler) ConfigureInterview(c echo.Context) error {
	var req domain.InterviewConfig
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	cfg, err := h.interview.Configure(c.Request().Context(), c.Param("session_id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// StartInterview opens the interview page: either a resume offer or the
// first question.
// POST /v1/interview/sessions/:session_id/start
func (h *Handler) StartInterview(c echo.Context) error {
	st, err := h.interview.Start(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// DecideResume answers a pending resume offer.
// POST /v1/interview/sessions/:session_id/decide
func (h *Handler) DecideResume(c echo.Context) error {
	var req DecideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Decision == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "decision is required"})
	}

	st, err := h.interview.Decide(c.Request().Context(), c.Param("session_id"), req.Decision)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// ViewInterview returns the current question and remaining time.
// GET /v1/interview/sessions/:session_id
func (h *Handler) ViewInterview(c echo.Context) error {
	st, err := h.interview.View(c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// AnswerQuestion records an answer and advances.
// POST /v1/interview/sessions/:session_id/answer
func (h *Handler) AnswerQuestion(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	st, err := h.interview.Answer(c.Request().Context(), c.Param("session_id"), req.Answer)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// SkipQuestion advances without an answer.
// POST /v1/interview/sessions/:session_id/skip
func (h *Handler) SkipQuestion(c echo.Context) error {
	st, err := h.interview.Skip(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// SaveProgress writes the in-progress snapshot.
// POST /v1/interview/sessions/:session_id/save
func (h *Handler) SaveProgress(c echo.Context) error {
	if err := h.interview.SaveProgress(c.Request().Context(), c.Param("session_id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ExitPrompt returns the summary shown before leaving.
// GET /v1/interview/sessions/:session_id/exit
func (h *Handler) ExitPrompt(c echo.Context) error {
	summary, err := h.interview.ExitPrompt(c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// ExitInterview applies the user's exit choice.
// POST /v1/interview/sessions/:session_id/exit
func (h *Handler) ExitInterview(c echo.Context) error {
	var req ExitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Choice == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "choice is required"})
	}

	res, err := h.interview.Exit(c.Request().Context(), c.Param("session_id"), req.Choice)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetResults returns the last finished interview of the session.
// GET /v1/interview/sessions/:session_id/results
func (h *Handler) GetResults(c echo.Context) error {
	results, err := h.interview.Results(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}
