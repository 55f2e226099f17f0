package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "Just now", FormatTimeAgo(now, now.Add(-30*time.Second)))
	assert.Equal(t, "30m ago", FormatTimeAgo(now, now.Add(-30*time.Minute)))
	assert.Equal(t, "2h ago", FormatTimeAgo(now, now.Add(-2*time.Hour)))
	assert.Equal(t, "3d ago", FormatTimeAgo(now, now.Add(-72*time.Hour)))
	assert.Equal(t, "5/1/2024", FormatTimeAgo(now, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "2:05 PM", FormatClock(time.Date(2024, 6, 10, 14, 5, 0, 0, time.UTC)))
}
