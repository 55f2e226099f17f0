package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/policy"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/store"
)

// Notifier receives render triggers for a viewer.
type Notifier interface {
	Notify(viewerID string, event domain.ChangeEvent)
}

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	Policy       *policy.Engine
	Notifier     Notifier
	Receipts     ReceiptScheduler // nil runs receipts on in-process timers
	ReceiptDelay time.Duration    // defaults to 2s
	Logger       *logger.Logger
}

// Controller turns host events into conversation store operations.
type Controller struct {
	conversations *Conversations
	store         store.Store
	policy        *policy.Engine
	notifier      Notifier
	receipts      ReceiptScheduler
	receiptDelay  time.Duration
	log           *logger.Logger
}

// NewController wires a controller around conversations, persisting the
// current viewer in s.
func NewController(conversations *Conversations, s store.Store, opts Options) *Controller {
	c := &Controller{
		conversations: conversations,
		store:         s,
		policy:        opts.Policy,
		notifier:      opts.Notifier,
		receipts:      opts.Receipts,
		receiptDelay:  opts.ReceiptDelay,
		log:           opts.Logger,
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	if c.receiptDelay <= 0 {
		c.receiptDelay = 2 * time.Second
	}
	if c.receipts == nil {
		c.receipts = NewTimerScheduler(func(convID, msgID string) {
			if err := c.ApplyPeerRead(context.Background(), convID, msgID); err != nil {
				c.log.Warn("failed to apply read receipt", logger.Fields{"conversation_id": convID, "message_id": msgID, "error": err.Error()})
			}
		})
	}
	return c
}

// Close cancels pending receipts.
func (c *Controller) Close() {
	c.receipts.Stop()
}

// Participants returns the roster.
func (c *Controller) Participants() []domain.Participant {
	return c.conversations.Participants()
}

func (c *Controller) requireViewer(viewerID string) error {
	if _, ok := c.conversations.Participant(viewerID); !ok {
		return fmt.Errorf("unknown viewer %q: %w", viewerID, domain.ErrInvalidInput)
	}
	return nil
}

// CurrentViewer returns the persisted viewer id, falling back to the first
// roster entry when none is stored or the stored id is unknown.
func (c *Controller) CurrentViewer(ctx context.Context) string {
	data, err := c.store.Get(ctx, KeyCurrentViewerID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Warn("failed to read current viewer", logger.Fields{"error": err.Error()})
		}
		return DefaultViewerID
	}
	id := strings.TrimSpace(string(data))
	if _, ok := c.conversations.Participant(id); !ok {
		return DefaultViewerID
	}
	return id
}

// SetCurrentViewer switches the simulated active user.
func (c *Controller) SetCurrentViewer(ctx context.Context, viewerID string) error {
	if err := c.requireViewer(viewerID); err != nil {
		return err
	}
	if err := c.store.Set(ctx, KeyCurrentViewerID, []byte(viewerID)); err != nil {
		return fmt.Errorf("failed to persist current viewer: %w", err)
	}
	c.notify(viewerID, domain.ChangeEvent{Type: domain.ChangeEventViewerChanged})
	return nil
}

// List returns the viewer's conversations, most recent first.
func (c *Controller) List(viewerID string) ([]domain.ConversationView, error) {
	if err := c.requireViewer(viewerID); err != nil {
		return nil, err
	}
	return c.conversations.ListForViewer(viewerID), nil
}

// Search filters the viewer's conversations.
func (c *Controller) Search(viewerID, query string) ([]domain.ConversationView, error) {
	if err := c.requireViewer(viewerID); err != nil {
		return nil, err
	}
	return c.conversations.Search(viewerID, query), nil
}

// SelectConversation opens a conversation for the viewer: incoming messages
// are marked read and the thread is returned.
func (c *Controller) SelectConversation(ctx context.Context, viewerID, convID string) (*domain.ConversationDetail, error) {
	conv, err := c.conversations.Get(convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(viewerID) {
		return nil, fmt.Errorf("conversation %s for viewer %s: %w", convID, viewerID, domain.ErrNotFound)
	}

	changed, err := c.conversations.MarkConversationRead(ctx, convID, viewerID)
	if err != nil {
		return nil, err
	}
	if changed > 0 {
		c.notifyParticipants(conv, domain.ChangeEvent{Type: domain.ChangeEventMessageRead, ConversationID: convID})
	}

	conv, err = c.conversations.Get(convID)
	if err != nil {
		return nil, err
	}
	return c.detail(conv, viewerID), nil
}

func (c *Controller) detail(conv domain.Conversation, viewerID string) *domain.ConversationDetail {
	d := &domain.ConversationDetail{
		ID:        conv.ID,
		OtherUser: c.conversations.participantOrPlaceholder(conv.OtherParticipant(viewerID)),
		Messages:  make([]domain.ThreadMessage, 0, len(conv.Messages)),
		IsStarred: conv.IsStarred,
	}
	for _, m := range conv.Messages {
		d.Messages = append(d.Messages, domain.ThreadMessage{
			Message: m,
			Sent:    m.SenderID == viewerID,
			Sender:  c.conversations.participantOrPlaceholder(m.SenderID),
		})
	}
	return d
}

// SendMessage posts content from viewerID into convID and schedules the
// simulated read receipt. Blank content is ignored: it returns nil, nil.
func (c *Controller) SendMessage(ctx context.Context, viewerID, convID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	conv, err := c.conversations.Get(convID)
	if err != nil {
		return nil, err
	}

	if c.policy != nil {
		decision, err := c.policy.Evaluate(ctx, policy.Input{
			Action:         "send_message",
			SenderID:       viewerID,
			ConversationID: convID,
			Participants:   conv.ParticipantIDs,
			IsParticipant:  conv.HasParticipant(viewerID),
		})
		if err != nil {
			return nil, err
		}
		if decision == policy.DecisionDeny {
			return nil, fmt.Errorf("send to %s by %s: %w", convID, viewerID, domain.ErrPolicyDenied)
		}
	}

	msg, err := c.conversations.AppendMessage(ctx, convID, viewerID, content)
	if err != nil {
		return nil, err
	}

	c.receipts.Schedule(convID, viewerID, msg.ID, c.receiptDelay)
	c.notifyParticipants(conv, domain.ChangeEvent{Type: domain.ChangeEventMessageSent, ConversationID: convID, MessageID: msg.ID})

	c.log.Debug("message sent", logger.Fields{"conversation_id": convID, "message_id": msg.ID, "sender_id": viewerID})
	return &msg, nil
}

// ApplyPeerRead marks msgID as read by the other participant. A conversation
// or message that no longer exists is not an error.
func (c *Controller) ApplyPeerRead(ctx context.Context, convID, msgID string) error {
	changed, err := c.conversations.MarkPeerRead(ctx, convID, msgID)
	if err != nil || !changed {
		return err
	}
	conv, err := c.conversations.Get(convID)
	if err != nil {
		return nil
	}
	c.notifyParticipants(conv, domain.ChangeEvent{Type: domain.ChangeEventMessageRead, ConversationID: convID, MessageID: msgID})
	return nil
}

// CreateConversation opens the conversation between viewerID and otherID,
// creating it when needed. The bool reports creation.
func (c *Controller) CreateConversation(ctx context.Context, viewerID, otherID string) (*domain.ConversationDetail, bool, error) {
	conv, created, err := c.conversations.FindOrCreateConversation(ctx, viewerID, otherID)
	if err != nil {
		return nil, false, err
	}
	if created {
		c.notifyParticipants(conv, domain.ChangeEvent{Type: domain.ChangeEventConversationUpdated, ConversationID: conv.ID})
	}
	detail, err := c.SelectConversation(ctx, viewerID, conv.ID)
	if err != nil {
		return nil, false, err
	}
	return detail, created, nil
}

// SetStarred flags a conversation.
func (c *Controller) SetStarred(ctx context.Context, convID string, starred bool) error {
	if err := c.conversations.SetStarred(ctx, convID, starred); err != nil {
		return err
	}
	c.notifyConversation(convID)
	return nil
}

// SetArchived archives or restores a conversation.
func (c *Controller) SetArchived(ctx context.Context, convID string, archived bool) error {
	if err := c.conversations.SetArchived(ctx, convID, archived); err != nil {
		return err
	}
	c.notifyConversation(convID)
	return nil
}

func (c *Controller) notifyConversation(convID string) {
	conv, err := c.conversations.Get(convID)
	if err != nil {
		return
	}
	c.notifyParticipants(conv, domain.ChangeEvent{Type: domain.ChangeEventConversationUpdated, ConversationID: convID})
}

func (c *Controller) notifyParticipants(conv domain.Conversation, ev domain.ChangeEvent) {
	for _, id := range conv.ParticipantIDs {
		c.notify(id, ev)
	}
}

func (c *Controller) notify(viewerID string, ev domain.ChangeEvent) {
	if c.notifier == nil {
		return
	}
	ev.ViewerID = viewerID
	ev.Ts = time.Now().UnixMilli()
	c.notifier.Notify(viewerID, ev)
}
