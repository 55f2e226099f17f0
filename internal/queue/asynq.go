// Package queue runs simulated read receipts on an asynq (Redis) queue so
// they survive a restart of the portal process.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/messaging"
)

// TypeReadReceipt is the asynq task type of a delayed peer read.
const TypeReadReceipt = "messaging:read_receipt"

// DefaultQueue is the asynq queue receipts are enqueued on.
const DefaultQueue = "receipts"

// ReceiptPayload is the task body.
type ReceiptPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// ApplyFunc marks a message as read by the peer.
type ApplyFunc func(ctx context.Context, conversationID, messageID string) error

// TaskID is the asynq task id of the receipt for messageID.
func TaskID(messageID string) string {
	return "receipt:" + messageID
}

// NewReceiptTask builds the task for one receipt.
func NewReceiptTask(conversationID, messageID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ReceiptPayload{ConversationID: conversationID, MessageID: messageID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt payload: %w", err)
	}
	return asynq.NewTask(TypeReadReceipt, payload), nil
}

// Scheduler enqueues receipts as delayed asynq tasks. A newer receipt from
// the same sender in a conversation deletes the one still pending.
type Scheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	log       *logger.Logger

	mu      sync.Mutex
	pending map[string]string // messaging.ReceiptKey -> task id
	stopped bool
}

var _ messaging.ReceiptScheduler = (*Scheduler)(nil)

// NewScheduler connects to the Redis instance at redisURL.
func NewScheduler(redisURL, queue string, log *logger.Logger) (*Scheduler, error) {
	if redisURL == "" {
		return nil, errors.New("asynq: REDIS_URL is not set")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse REDIS_URL: %w", err)
	}
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Scheduler{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     queue,
		log:       log,
		pending:   make(map[string]string),
	}, nil
}

func (s *Scheduler) Schedule(conversationID, senderID, messageID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	key := messaging.ReceiptKey(conversationID, senderID)
	if prev, ok := s.pending[key]; ok {
		s.deleteTask(prev)
	}

	task, err := NewReceiptTask(conversationID, messageID)
	if err != nil {
		s.log.Error("failed to build receipt task", logger.Fields{"error": err.Error()})
		return
	}
	id := TaskID(messageID)
	_, err = s.client.EnqueueContext(context.Background(), task,
		asynq.TaskID(id),
		asynq.Queue(s.queue),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(3),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		s.log.Error("failed to enqueue read receipt", logger.Fields{"message_id": messageID, "error": err.Error()})
		return
	}
	s.pending[key] = id
}

func (s *Scheduler) Cancel(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := TaskID(messageID)
	for key, pending := range s.pending {
		if pending == id {
			delete(s.pending, key)
		}
	}
	s.deleteTask(id)
}

// Stop closes the Redis connections. Tasks already enqueued still run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.client.Close()
	s.inspector.Close()
}

func (s *Scheduler) deleteTask(id string) {
	err := s.inspector.DeleteTask(s.queue, id)
	if err != nil && !errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
		s.log.Warn("failed to delete superseded receipt", logger.Fields{"task_id": id, "error": err.Error()})
	}
}

// Worker consumes receipt tasks and applies them.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	apply  ApplyFunc
	log    *logger.Logger
}

// NewWorker builds a worker for queue on the Redis instance at redisURL.
func NewWorker(redisURL, queue string, apply ApplyFunc, log *logger.Logger) (*Worker, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse REDIS_URL: %w", err)
	}
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = logger.Discard()
	}

	w := &Worker{apply: apply, log: log, mux: asynq.NewServeMux()}
	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Warn("receipt task failed", logger.Fields{"type": task.Type(), "error": err.Error()})
		}),
	})
	w.mux.HandleFunc(TypeReadReceipt, w.Handle)
	return w, nil
}

// Handle applies one receipt task.
func (w *Worker) Handle(ctx context.Context, t *asynq.Task) error {
	var p ReceiptPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid receipt payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.ConversationID == "" || p.MessageID == "" {
		return fmt.Errorf("incomplete receipt payload: %w", asynq.SkipRetry)
	}
	if err := w.apply(ctx, p.ConversationID, p.MessageID); err != nil {
		return fmt.Errorf("failed to apply read receipt: %w", err)
	}
	w.log.Debug("read receipt applied", logger.Fields{"conversation_id": p.ConversationID, "message_id": p.MessageID})
	return nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}
