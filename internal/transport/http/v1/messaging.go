package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SetViewerRequest switches the current viewer.
type SetViewerRequest struct {
	ViewerID string `json:"viewer_id"`
}

// CreateConversationRequest opens a conversation with another participant.
type CreateConversationRequest struct {
	OtherID string `json:"other_id"`
}

// SendMessageRequest is the body of a send.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// FlagRequest sets a boolean conversation flag.
type FlagRequest struct {
	Value *bool `json:"value"`
}

// ListParticipants returns the roster.
// GET /v1/participants
func (h *Handler) ListParticipants(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"participants": h.messaging.Participants(),
	})
}

// GetCurrentViewer returns the persisted current viewer.
// GET /v1/viewer
func (h *Handler) GetCurrentViewer(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"viewer_id": h.messaging.CurrentViewer(c.Request().Context()),
	})
}

// SetCurrentViewer switches the current viewer.
// PUT /v1/viewer
func (h *Handler) SetCurrentViewer(c echo.Context) error {
	var req SetViewerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ViewerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "viewer_id is required"})
	}

	if err := h.messaging.SetCurrentViewer(c.Request().Context(), req.ViewerID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"viewer_id": req.ViewerID})
}

// ListConversations lists the viewer's conversations, filtered by ?q=.
// GET /v1/viewers/:id/conversations
func (h *Handler) ListConversations(c echo.Context) error {
	viewerID := c.Param("id")
	views, err := h.messaging.Search(viewerID, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversations": views,
	})
}

// CreateConversation finds or creates the conversation with other_id and
// opens it.
// POST /v1/viewers/:id/conversations
func (h *Handler) CreateConversation(c echo.Context) error {
	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.OtherID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "other_id is required"})
	}

	detail, created, err := h.messaging.CreateConversation(c.Request().Context(), c.Param("id"), req.OtherID)
	if err != nil {
		return writeError(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, detail)
}

// SelectConversation opens a conversation, marking it read for the viewer.
// POST /v1/viewers/:id/conversations/:conv_id/select
func (h *Handler) SelectConversation(c echo.Context) error {
	detail, err := h.messaging.SelectConversation(c.Request().Context(), c.Param("id"), c.Param("conv_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// SendMessage appends a message. Blank content is ignored with 204.
// POST /v1/viewers/:id/conversations/:conv_id/messages
func (h *Handler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	msg, err := h.messaging.SendMessage(c.Request().Context(), c.Param("id"), c.Param("conv_id"), req.Content)
	if err != nil {
		return writeError(c, err)
	}
	if msg == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, msg)
}

// SetStarred stars or unstars a conversation.
// PUT /v1/conversations/:conv_id/star
func (h *Handler) SetStarred(c echo.Context) error {
	var req FlagRequest
	if err := c.Bind(&req); err != nil || req.Value == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "value is required"})
	}
	if err := h.messaging.SetStarred(c.Request().Context(), c.Param("conv_id"), *req.Value); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true, "starred": *req.Value})
}

// SetArchived archives or unarchives a conversation.
// PUT /v1/conversations/:conv_id/archive
func (h *Handler) SetArchived(c echo.Context) error {
	var req FlagRequest
	if err := c.Bind(&req); err != nil || req.Value == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "value is required"})
	}
	if err := h.messaging.SetArchived(c.Request().Context(), c.Param("conv_id"), *req.Value); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true, "archived": *req.Value})
}
