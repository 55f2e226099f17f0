package messaging

import (
	"time"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
)

// DefaultViewerID is used when no viewer has been persisted yet.
const DefaultViewerID = "user-1"

// Roster returns the five test accounts in display order.
func Roster() []domain.Participant {
	return []domain.Participant{
		{
			ID:             "user-1",
			DisplayName:    "John Smith",
			RoleTitle:      "Senior Security Engineer",
			Organization:   "Lockheed Martin",
			ClearanceLabel: "TS/SCI",
			AvatarColor:    "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
			Initials:       "JS",
			IsOnline:       true,
		},
		{
			ID:             "user-2",
			DisplayName:    "Sarah Johnson",
			RoleTitle:      "HR Manager",
			Organization:   "Northrop Grumman",
			ClearanceLabel: "Secret",
			AvatarColor:    "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
			Initials:       "SJ",
			IsOnline:       true,
		},
		{
			ID:             "user-3",
			DisplayName:    "Mike Davis",
			RoleTitle:      "Security Officer",
			Organization:   "Raytheon",
			ClearanceLabel: "Top Secret",
			AvatarColor:    "linear-gradient(135deg, #4facfe 0%, #00f2fe 100%)",
			Initials:       "MD",
			IsOnline:       false,
		},
		{
			ID:             "user-4",
			DisplayName:    "Lisa Chen",
			RoleTitle:      "Technical Recruiter",
			Organization:   "CAG Advisory",
			ClearanceLabel: "Secret",
			AvatarColor:    "linear-gradient(135deg, #fa709a 0%, #fee140 100%)",
			Initials:       "LC",
			IsOnline:       true,
		},
		{
			ID:             "user-5",
			DisplayName:    "Tom Wilson",
			RoleTitle:      "Hiring Manager",
			Organization:   "General Dynamics",
			ClearanceLabel: "TS/SCI",
			AvatarColor:    "linear-gradient(135deg, #30cfd0 0%, #330867 100%)",
			Initials:       "TW",
			IsOnline:       true,
		},
	}
}

// SeedConversations returns the first-run dataset, with timestamps relative to now.
func SeedConversations(now time.Time) map[string]*domain.Conversation {
	now = now.UTC()
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	return map[string]*domain.Conversation{
		"conv-1-2": {
			ID:             "conv-1-2",
			ParticipantIDs: []string{"user-1", "user-2"},
			Messages: []domain.Message{
				{
					ID:        "msg-1",
					SenderID:  "user-2",
					Content:   "Hi John! I saw your profile and think you'd be perfect for a Senior Security role we have open. Are you available for a quick call this week?",
					Timestamp: ago(2 * time.Hour),
					IsRead:    false,
				},
				{
					ID:        "msg-2",
					SenderID:  "user-1",
					Content:   "Hi Sarah! Yes, I'd be very interested. I have availability on Wednesday or Thursday afternoon. What times work best for you?",
					Timestamp: ago(90 * time.Minute),
					IsRead:    true,
				},
				{
					ID:        "msg-3",
					SenderID:  "user-2",
					Content:   "Perfect! How about Thursday at 2pm EST? I'll send you a calendar invite.",
					Timestamp: ago(30 * time.Minute),
					IsRead:    false,
				},
			},
			LastMessageTime: ago(30 * time.Minute),
		},
		"conv-1-4": {
			ID:             "conv-1-4",
			ParticipantIDs: []string{"user-1", "user-4"},
			Messages: []domain.Message{
				{
					ID:        "msg-4",
					SenderID:  "user-4",
					Content:   "John, great to connect! I have several DoD contractor positions that match your TS/SCI clearance. Would love to discuss your career goals.",
					Timestamp: ago(24 * time.Hour),
					IsRead:    true,
				},
			},
			LastMessageTime: ago(24 * time.Hour),
			IsStarred:       true,
		},
		"conv-1-5": {
			ID:             "conv-1-5",
			ParticipantIDs: []string{"user-1", "user-5"},
			Messages: []domain.Message{
				{
					ID:        "msg-5",
					SenderID:  "user-5",
					Content:   "Hi John, we reviewed your application for the Cybersecurity position. Very impressed! Can we schedule a technical interview?",
					Timestamp: ago(3 * 24 * time.Hour),
					IsRead:    true,
				},
			},
			LastMessageTime: ago(3 * 24 * time.Hour),
		},
	}
}
