package messaging

import (
	"sync"
	"time"
)

// ReceiptScheduler schedules the simulated "peer read" of a sent message.
// A newer receipt from the same sender in a conversation supersedes the one
// still pending for that sender; other senders' receipts are untouched.
type ReceiptScheduler interface {
	Schedule(conversationID, senderID, messageID string, delay time.Duration)
	Cancel(messageID string)
	Stop()
}

// ReceiptKey identifies the pending receipt slot of one sender in one
// conversation.
func ReceiptKey(conversationID, senderID string) string {
	return conversationID + "/" + senderID
}

// ReceiptFunc applies a receipt once its delay has elapsed.
type ReceiptFunc func(conversationID, messageID string)

type pendingReceipt struct {
	messageID string
	timer     *time.Timer
}

// TimerScheduler runs receipts on in-process timers.
type TimerScheduler struct {
	mu      sync.Mutex
	fire    ReceiptFunc
	pending map[string]*pendingReceipt // by ReceiptKey
	stopped bool
}

// NewTimerScheduler returns a scheduler that calls fire on its own goroutine.
func NewTimerScheduler(fire ReceiptFunc) *TimerScheduler {
	return &TimerScheduler{
		fire:    fire,
		pending: make(map[string]*pendingReceipt),
	}
}

func (s *TimerScheduler) Schedule(conversationID, senderID, messageID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	key := ReceiptKey(conversationID, senderID)
	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}

	p := &pendingReceipt{messageID: messageID}
	p.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		cur, ok := s.pending[key]
		if !ok || cur != p {
			s.mu.Unlock()
			return
		}
		delete(s.pending, key)
		s.mu.Unlock()

		s.fire(conversationID, messageID)
	})
	s.pending[key] = p
}

func (s *TimerScheduler) Cancel(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, p := range s.pending {
		if p.messageID == messageID {
			p.timer.Stop()
			delete(s.pending, key)
			return
		}
	}
}

// Pending returns the number of receipts waiting to fire.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending receipt and ignores later Schedule calls.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
	}
	s.stopped = true
}
