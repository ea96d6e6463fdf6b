package messaging

import (
	"context"
	"errors"
)

var (
	// ErrQueueFull is returned by a non-blocking publish when the queue has no
	// free capacity.
	ErrQueueFull = errors.New("messaging: queue full")

	// ErrQueueClosed is returned once a queue has been closed and drained.
	ErrQueueClosed = errors.New("messaging: queue closed")
)

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue, waiting for capacity
	// until ctx is done.
	Publish(ctx context.Context, t *T) error

	// TryPublish adds a new message without waiting; it returns ErrQueueFull
	// when the queue is at capacity.
	TryPublish(t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)

	// Close stops accepting messages; pending messages can still be consumed.
	Close()
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
