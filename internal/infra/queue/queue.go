// Package queue provides the asynchronous hand-off between the event
// receiver and the message dispatch loop.
package queue

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// Message represents one published queue message.
type Message struct {
	ID   string // Assigned at publish time
	Data string // Base64-encoded JSON payload
}

// Publisher publishes messages onto the queue.
type Publisher interface {
	// Publish enqueues data and returns the assigned message ID.
	Publish(ctx context.Context, data string) (string, error)
}

// Handler processes one consumed message.
type Handler func(ctx context.Context, msg Message) error

// Memory is an in-process queue backed by a buffered channel. Each
// message is delivered to exactly one consumer invocation.
type Memory struct {
	ch chan Message
}

// NewMemory creates an in-process queue with the given buffer size.
func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 64
	}
	return &Memory{ch: make(chan Message, buffer)}
}

// Publish enqueues a message and returns its ID.
func (m *Memory) Publish(ctx context.Context, data string) (string, error) {
	msg := Message{ID: uuid.NewString(), Data: data}

	select {
	case m.ch <- msg:
		return msg.ID, nil
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "failed to publish message")
	}
}

// Run consumes messages until ctx is cancelled, invoking handle for each.
// Messages already accepted at cancellation time are still delivered
// before Run returns. Handler errors are logged and do not stop
// consumption.
func (m *Memory) Run(ctx context.Context, handle Handler) {
	for {
		select {
		case <-ctx.Done():
			m.drain(context.WithoutCancel(ctx), handle)
			return
		case msg := <-m.ch:
			m.handleOne(ctx, handle, msg)
		}
	}
}

// drain delivers buffered messages left behind at shutdown.
func (m *Memory) drain(ctx context.Context, handle Handler) {
	for {
		select {
		case msg := <-m.ch:
			m.handleOne(ctx, handle, msg)
		default:
			return
		}
	}
}

func (m *Memory) handleOne(ctx context.Context, handle Handler, msg Message) {
	if err := handle(ctx, msg); err != nil {
		zlog.Error().Err(err).Str("message_id", msg.ID).Msg("failed to handle queue message")
	}
}
