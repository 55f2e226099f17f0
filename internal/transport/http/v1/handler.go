// Package v1 provides the HTTP handlers of the portal API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/interview"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/messaging"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/notify"
)

// ConfigPage is where clients are sent when an interview cannot start.
const ConfigPage = "/mock-interview"

// Handler handles HTTP requests.
type Handler struct {
	messaging *messaging.Controller
	interview *interview.Controller
	stream    *notify.Server
}

// NewHandler creates a new handler. stream may be nil to disable the
// websocket endpoint.
func NewHandler(m *messaging.Controller, i *interview.Controller, stream *notify.Server) *Handler {
	return &Handler{
		messaging: m,
		interview: i,
		stream:    stream,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Messaging
	e.GET("/v1/participants", h.ListParticipants)
	e.GET("/v1/viewer", h.GetCurrentViewer)
	e.PUT("/v1/viewer", h.SetCurrentViewer)
	e.GET("/v1/viewers/:id/conversations", h.ListConversations)
	e.POST("/v1/viewers/:id/conversations", h.CreateConversation)
	e.POST("/v1/viewers/:id/conversations/:conv_id/select", h.SelectConversation)
	e.POST("/v1/viewers/:id/conversations/:conv_id/messages", h.SendMessage)
	e.PUT("/v1/conversations/:conv_id/star", h.SetStarred)
	e.PUT("/v1/conversations/:conv_id/archive", h.SetArchived)
	if h.stream != nil {
		e.GET("/v1/viewers/:id/stream", h.stream.HandleStream)
	}

	// Mock interview
	e.PUT("/v1/interview/sessions/:session_id/config", h.ConfigureInterview)
	e.POST("/v1/interview/sessions/:session_id/start", h.StartInterview)
	e.POST("/v1/interview/sessions/:session_id/decide", h.DecideResume)
	e.GET("/v1/interview/sessions/:session_id", h.ViewInterview)
	e.POST("/v1/interview/sessions/:session_id/answer", h.AnswerQuestion)
	e.POST("/v1/interview/sessions/:session_id/skip", h.SkipQuestion)
	e.POST("/v1/interview/sessions/:session_id/save", h.SaveProgress)
	e.GET("/v1/interview/sessions/:session_id/exit", h.ExitPrompt)
	e.POST("/v1/interview/sessions/:session_id/exit", h.ExitInterview)
	e.GET("/v1/interview/sessions/:session_id/results", h.GetResults)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// writeError maps domain errors to status codes. Interview setup failures
// tell the client to go back to configuration.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrPolicyDenied):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNoQuestionsAvailable),
		errors.Is(err, domain.ErrFetch),
		errors.Is(err, domain.ErrConfigRequired):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error":    err.Error(),
			"redirect": ConfigPage,
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
