package v1

import (
	"net/http"
	"testing"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
)

func TestListParticipants(t *testing.T) {
	h := newTestHandler(t)
	rec := call(t, h.ListParticipants, http.MethodGet, "")

	var resp struct {
		Participants []domain.Participant `json:"participants"`
	}
	decode(t, rec, &resp)
	if len(resp.Participants) != 5 {
		t.Fatalf("expected 5 participants, got %d", len(resp.Participants))
	}
}

func TestSetCurrentViewer(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h.SetCurrentViewer, http.MethodPut, `{"viewer_id":"user-3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = call(t, h.GetCurrentViewer, http.MethodGet, "")
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["viewer_id"] != "user-3" {
		t.Fatalf("expected user-3, got %q", resp["viewer_id"])
	}

	tests := []struct {
		name string
		body string
	}{
		{"missing", `{}`},
		{"unknown", `{"viewer_id":"user-77"}`},
		{"malformed", `{"viewer_id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, h.SetCurrentViewer, http.MethodPut, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestListConversationsUnknownViewer(t *testing.T) {
	h := newTestHandler(t)
	rec := call(t, h.ListConversations, http.MethodGet, "", "id", "user-0")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSelectConversation(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h.SelectConversation, http.MethodPost, "", "id", "user-1", "conv_id", "conv-1-2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var detail domain.ConversationDetail
	decode(t, rec, &detail)
	if detail.OtherUser.ID != "user-2" || len(detail.Messages) != 3 {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	rec = call(t, h.SelectConversation, http.MethodPost, "", "id", "user-3", "conv_id", "conv-1-2")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for outsider, got %d", rec.Code)
	}
}

func TestSendMessage(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h.SendMessage, http.MethodPost, `{"content":"Hello"}`, "id", "user-1", "conv_id", "conv-1-4")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var msg domain.Message
	decode(t, rec, &msg)
	if msg.Content != "Hello" || msg.SenderID != "user-1" || msg.IsRead {
		t.Fatalf("unexpected message: %+v", msg)
	}

	rec = call(t, h.SendMessage, http.MethodPost, `{"content":"   "}`, "id", "user-1", "conv_id", "conv-1-4")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for blank content, got %d", rec.Code)
	}

	rec = call(t, h.SendMessage, http.MethodPost, `{"content":"hi"}`, "id", "user-1", "conv_id", "conv-404")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateConversation(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h.CreateConversation, http.MethodPost, `{"other_id":"user-3"}`, "id", "user-1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var first domain.ConversationDetail
	decode(t, rec, &first)

	rec = call(t, h.CreateConversation, http.MethodPost, `{"other_id":"user-1"}`, "id", "user-3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing pair, got %d", rec.Code)
	}
	var second domain.ConversationDetail
	decode(t, rec, &second)
	if first.ID != second.ID {
		t.Fatalf("expected same conversation, got %s and %s", first.ID, second.ID)
	}

	rec = call(t, h.CreateConversation, http.MethodPost, `{"other_id":"user-1"}`, "id", "user-1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self conversation, got %d", rec.Code)
	}
}

func TestStarAndArchive(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h.SetStarred, http.MethodPut, `{"value":true}`, "conv_id", "conv-1-5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = call(t, h.SetArchived, http.MethodPut, `{}`, "conv_id", "conv-1-5")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without value, got %d", rec.Code)
	}
	rec = call(t, h.SetArchived, http.MethodPut, `{"value":true}`, "conv_id", "conv-x")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
