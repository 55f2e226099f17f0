package domain

import "time"

// Participant is a member of the fixed test roster.
type Participant struct {
	ID             string `json:"id"`
	DisplayName    string `json:"name"`
	RoleTitle      string `json:"role"`
	Organization   string `json:"company"`
	ClearanceLabel string `json:"clearance"`
	AvatarColor    string `json:"avatarColor"`
	Initials       string `json:"initials"`
	IsOnline       bool   `json:"isOnline"`
}

// Message is a single chat message inside a conversation.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"read"`
}

// Conversation is the message thread between exactly two participants.
type Conversation struct {
	ID              string    `json:"id"`
	ParticipantIDs  []string  `json:"participants"`
	Messages        []Message `json:"messages"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	IsStarred       bool      `json:"isStarred"`
	IsArchived      bool      `json:"isArchived"`
}

// HasParticipant reports whether id is one of the two participants.
func (c *Conversation) HasParticipant(id string) bool {
	for _, p := range c.ParticipantIDs {
		if p == id {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not viewerID.
func (c *Conversation) OtherParticipant(viewerID string) string {
	for _, p := range c.ParticipantIDs {
		if p != viewerID {
			return p
		}
	}
	return ""
}

// ConversationView is a conversation as seen by one viewer.
type ConversationView struct {
	ID              string      `json:"id"`
	OtherUser       Participant `json:"otherUser"`
	LastMessage     *Message    `json:"lastMessage,omitempty"`
	LastMessageTime time.Time   `json:"lastMessageTime"`
	UnreadCount     int         `json:"unreadCount"`
	IsStarred       bool        `json:"isStarred"`
	IsArchived      bool        `json:"isArchived"`
}

// ThreadMessage is a message annotated with its direction for the viewer.
type ThreadMessage struct {
	Message
	Sent   bool        `json:"sent"`
	Sender Participant `json:"sender"`
}

// ConversationDetail is the open conversation pane for one viewer.
type ConversationDetail struct {
	ID        string          `json:"id"`
	OtherUser Participant     `json:"otherUser"`
	Messages  []ThreadMessage `json:"messages"`
	IsStarred bool            `json:"isStarred"`
}

// ChangeEvent tells a viewer that one of their views changed.
type ChangeEvent struct {
	Type           ChangeEventType `json:"type"`
	ViewerID       string          `json:"viewer_id"`
	ConversationID string          `json:"conversation_id,omitempty"`
	MessageID      string          `json:"message_id,omitempty"`
	Ts             int64           `json:"ts"` // Unix milliseconds
}
