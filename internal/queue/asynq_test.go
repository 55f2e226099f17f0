package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReceiptTask(t *testing.T) {
	task, err := NewReceiptTask("conv-1-2", "msg-1")
	require.NoError(t, err)
	assert.Equal(t, TypeReadReceipt, task.Type())

	var p ReceiptPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, ReceiptPayload{ConversationID: "conv-1-2", MessageID: "msg-1"}, p)
	assert.Equal(t, "receipt:msg-1", TaskID("msg-1"))
}

func TestWorkerHandle(t *testing.T) {
	var got []string
	w, err := workerWith(func(ctx context.Context, conv, msg string) error {
		got = append(got, conv+"/"+msg)
		return nil
	})
	require.NoError(t, err)

	task, err := NewReceiptTask("conv-1-4", "msg-9")
	require.NoError(t, err)
	require.NoError(t, w.Handle(context.Background(), task))
	assert.Equal(t, []string{"conv-1-4/msg-9"}, got)
}

func TestWorkerHandleRejectsBadPayload(t *testing.T) {
	w, err := workerWith(func(ctx context.Context, conv, msg string) error { return nil })
	require.NoError(t, err)

	err = w.Handle(context.Background(), asynq.NewTask(TypeReadReceipt, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	err = w.Handle(context.Background(), asynq.NewTask(TypeReadReceipt, []byte(`{"conversation_id":"conv-1-2"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWorkerHandlePropagatesApplyError(t *testing.T) {
	boom := errors.New("store unavailable")
	w, err := workerWith(func(ctx context.Context, conv, msg string) error { return boom })
	require.NoError(t, err)

	task, err := NewReceiptTask("conv-1-2", "msg-1")
	require.NoError(t, err)
	assert.ErrorIs(t, w.Handle(context.Background(), task), boom)
}

func TestNewSchedulerRequiresRedisURL(t *testing.T) {
	_, err := NewScheduler("", "", nil)
	assert.Error(t, err)
	_, err = NewScheduler("http://not-redis", "", nil)
	assert.Error(t, err)
}

// workerWith builds a worker without connecting; asynq dials lazily.
func workerWith(apply ApplyFunc) (*Worker, error) {
	return NewWorker("redis://127.0.0.1:6379/0", "", apply, nil)
}
