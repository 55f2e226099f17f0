package messaging

import (
	"fmt"
	"time"
)

// FormatTimeAgo renders the conversation list timestamp.
func FormatTimeAgo(now, t time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	switch {
	case seconds < 60:
		return "Just now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	case seconds < 604800:
		return fmt.Sprintf("%dd ago", seconds/86400)
	}
	return t.Format("1/2/2006")
}

// FormatClock renders a message timestamp, e.g. "3:04 PM".
func FormatClock(t time.Time) string {
	return t.Format("3:04 PM")
}
