// Package messaging implements the peer-to-peer inbox: the conversation
// store, its per-viewer views and the controller that drives it.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/store"
)

// Storage keys.
const (
	KeyConversations   = "conversations"
	KeyCurrentViewerID = "current-viewer-id"
)

// Conversations owns the roster and the conversation set. All methods are
// safe for concurrent use; every mutation writes the full set back to the store.
type Conversations struct {
	mu            sync.Mutex
	store         store.Store
	log           *logger.Logger
	now           func() time.Time
	roster        map[string]domain.Participant
	rosterOrder   []string
	conversations map[string]*domain.Conversation
}

// NewConversations loads the conversation set from s. A missing or corrupt
// value is replaced by the seeded dataset; the failure is logged, never returned.
func NewConversations(ctx context.Context, s store.Store, log *logger.Logger) *Conversations {
	return newConversations(ctx, s, log, time.Now)
}

func newConversations(ctx context.Context, s store.Store, log *logger.Logger, now func() time.Time) *Conversations {
	if log == nil {
		log = logger.Discard()
	}
	c := &Conversations{
		store:  s,
		log:    log,
		now:    now,
		roster: make(map[string]domain.Participant),
	}
	for _, p := range Roster() {
		c.roster[p.ID] = p
		c.rosterOrder = append(c.rosterOrder, p.ID)
	}

	loaded, err := c.load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("conversation store unreadable, falling back to seed data", logger.Fields{"error": err.Error()})
		}
		c.conversations = SeedConversations(now())
		c.persist(ctx)
		return c
	}
	c.conversations = loaded
	return c
}

func (c *Conversations) load(ctx context.Context) (map[string]*domain.Conversation, error) {
	var raw map[string]*domain.Conversation
	if err := store.GetJSON(ctx, c.store, KeyConversations, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s is null", domain.ErrStorageRead, KeyConversations)
	}

	out := make(map[string]*domain.Conversation, len(raw))
	for id, conv := range raw {
		if conv == nil || len(conv.ParticipantIDs) != 2 {
			c.log.Warn("dropping malformed conversation", logger.Fields{"conversation_id": id})
			continue
		}
		conv.ID = id
		out[id] = conv
	}
	return out, nil
}

// persist writes the whole set. Durability is best effort: a failed write is
// logged and the in-memory state stays authoritative. Callers hold c.mu.
func (c *Conversations) persist(ctx context.Context) {
	if err := store.SetJSON(ctx, c.store, KeyConversations, c.conversations); err != nil {
		c.log.Error("failed to persist conversations", logger.Fields{"error": err.Error()})
	}
}

// Participants returns the roster in display order.
func (c *Conversations) Participants() []domain.Participant {
	out := make([]domain.Participant, 0, len(c.rosterOrder))
	for _, id := range c.rosterOrder {
		out = append(out, c.roster[id])
	}
	return out
}

// Participant looks up a roster entry.
func (c *Conversations) Participant(id string) (domain.Participant, bool) {
	p, ok := c.roster[id]
	return p, ok
}

func (c *Conversations) participantOrPlaceholder(id string) domain.Participant {
	if p, ok := c.roster[id]; ok {
		return p
	}
	return domain.Participant{ID: id, DisplayName: id}
}

// Get returns a copy of the conversation.
func (c *Conversations) Get(convID string) (domain.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.conversations[convID]
	if !ok {
		return domain.Conversation{}, fmt.Errorf("conversation %s: %w", convID, domain.ErrNotFound)
	}
	return cloneConversation(conv), nil
}

// ListForViewer returns the viewer's conversations, most recent first.
func (c *Conversations) ListForViewer(viewerID string) []domain.ConversationView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listForViewerLocked(viewerID)
}

func (c *Conversations) listForViewerLocked(viewerID string) []domain.ConversationView {
	ids := make([]string, 0, len(c.conversations))
	for id := range c.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	views := make([]domain.ConversationView, 0)
	for _, id := range ids {
		conv := c.conversations[id]
		if !conv.HasParticipant(viewerID) {
			continue
		}
		views = append(views, c.viewLocked(conv, viewerID))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].LastMessageTime.After(views[j].LastMessageTime)
	})
	return views
}

func (c *Conversations) viewLocked(conv *domain.Conversation, viewerID string) domain.ConversationView {
	v := domain.ConversationView{
		ID:              conv.ID,
		OtherUser:       c.participantOrPlaceholder(conv.OtherParticipant(viewerID)),
		LastMessageTime: conv.LastMessageTime,
		UnreadCount:     unreadCount(conv, viewerID),
		IsStarred:       conv.IsStarred,
		IsArchived:      conv.IsArchived,
	}
	if n := len(conv.Messages); n > 0 {
		last := conv.Messages[n-1]
		v.LastMessage = &last
	}
	return v
}

func unreadCount(conv *domain.Conversation, viewerID string) int {
	n := 0
	for _, m := range conv.Messages {
		if m.SenderID != viewerID && !m.IsRead {
			n++
		}
	}
	return n
}

// Search filters the viewer's list by a case-insensitive substring of the other
// participant's name, role or organization, or of any message. A blank query
// returns the whole list.
func (c *Conversations) Search(viewerID, query string) []domain.ConversationView {
	c.mu.Lock()
	defer c.mu.Unlock()

	views := c.listForViewerLocked(viewerID)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return views
	}

	filtered := make([]domain.ConversationView, 0, len(views))
	for _, v := range views {
		if c.matchesLocked(v, q) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

func (c *Conversations) matchesLocked(v domain.ConversationView, q string) bool {
	if strings.Contains(strings.ToLower(v.OtherUser.DisplayName), q) ||
		strings.Contains(strings.ToLower(v.OtherUser.RoleTitle), q) ||
		strings.Contains(strings.ToLower(v.OtherUser.Organization), q) {
		return true
	}
	for _, m := range c.conversations[v.ID].Messages {
		if strings.Contains(strings.ToLower(m.Content), q) {
			return true
		}
	}
	return false
}

// MarkConversationRead marks every message not sent by viewerID as read and
// returns how many messages changed.
func (c *Conversations) MarkConversationRead(ctx context.Context, convID, viewerID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.conversations[convID]
	if !ok {
		return 0, fmt.Errorf("conversation %s: %w", convID, domain.ErrNotFound)
	}

	changed := 0
	for i := range conv.Messages {
		if conv.Messages[i].SenderID != viewerID && !conv.Messages[i].IsRead {
			conv.Messages[i].IsRead = true
			changed++
		}
	}
	c.persist(ctx)
	return changed, nil
}

// AppendMessage adds an unread message from senderID. Blank content is
// rejected with domain.ErrInvalidInput. The sender is not checked against the
// participants; the messaging policy decides that.
func (c *Conversations) AppendMessage(ctx context.Context, convID, senderID, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, fmt.Errorf("message content is empty: %w", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.conversations[convID]
	if !ok {
		return domain.Message{}, fmt.Errorf("conversation %s: %w", convID, domain.ErrNotFound)
	}

	now := c.now().UTC()
	msg := domain.Message{
		ID:        newMessageID(now),
		SenderID:  senderID,
		Content:   content,
		Timestamp: now,
		IsRead:    false,
	}
	conv.Messages = append(conv.Messages, msg)
	conv.LastMessageTime = msg.Timestamp
	c.persist(ctx)
	return msg, nil
}

func newMessageID(now time.Time) string {
	return fmt.Sprintf("msg-%d-%s", now.UnixMilli(), uuid.New().String()[:8])
}

// FindOrCreateConversation returns the conversation between the two ids,
// creating an empty one when none exists. The bool reports creation.
func (c *Conversations) FindOrCreateConversation(ctx context.Context, viewerID, otherID string) (domain.Conversation, bool, error) {
	if _, ok := c.roster[viewerID]; !ok {
		return domain.Conversation{}, false, fmt.Errorf("unknown participant %s: %w", viewerID, domain.ErrInvalidInput)
	}
	if _, ok := c.roster[otherID]; !ok {
		return domain.Conversation{}, false, fmt.Errorf("unknown participant %s: %w", otherID, domain.ErrInvalidInput)
	}
	if viewerID == otherID {
		return domain.Conversation{}, false, fmt.Errorf("cannot start a conversation with yourself: %w", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, conv := range c.conversations {
		if conv.HasParticipant(viewerID) && conv.HasParticipant(otherID) {
			return cloneConversation(conv), false, nil
		}
	}

	id := "conv-" + viewerID + "-" + otherID
	conv := &domain.Conversation{
		ID:              id,
		ParticipantIDs:  []string{viewerID, otherID},
		Messages:        []domain.Message{},
		LastMessageTime: c.now().UTC(),
	}
	c.conversations[id] = conv
	c.persist(ctx)
	return cloneConversation(conv), true, nil
}

// SetStarred flags or unflags a conversation.
func (c *Conversations) SetStarred(ctx context.Context, convID string, starred bool) error {
	return c.update(ctx, convID, func(conv *domain.Conversation) { conv.IsStarred = starred })
}

// SetArchived archives or restores a conversation. Archived conversations stay
// in the set and in every listing.
func (c *Conversations) SetArchived(ctx context.Context, convID string, archived bool) error {
	return c.update(ctx, convID, func(conv *domain.Conversation) { conv.IsArchived = archived })
}

func (c *Conversations) update(ctx context.Context, convID string, fn func(*domain.Conversation)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.conversations[convID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", convID, domain.ErrNotFound)
	}
	fn(conv)
	c.persist(ctx)
	return nil
}

// MarkPeerRead simulates the other participant reading msgID: the message and
// every earlier unread message from the same sender are marked read. It
// reports false without error when the conversation or message is gone or
// already read.
func (c *Conversations) MarkPeerRead(ctx context.Context, convID, msgID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.conversations[convID]
	if !ok {
		return false, nil
	}

	idx := -1
	for i := range conv.Messages {
		if conv.Messages[i].ID == msgID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	sender := conv.Messages[idx].SenderID
	changed := false
	for i := 0; i <= idx; i++ {
		if conv.Messages[i].SenderID == sender && !conv.Messages[i].IsRead {
			conv.Messages[i].IsRead = true
			changed = true
		}
	}
	if changed {
		c.persist(ctx)
	}
	return changed, nil
}

func cloneConversation(conv *domain.Conversation) domain.Conversation {
	out := *conv
	out.ParticipantIDs = append([]string(nil), conv.ParticipantIDs...)
	out.Messages = append([]domain.Message{}, conv.Messages...)
	return out
}
