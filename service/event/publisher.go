package event

import (
	"context"
	"errors"

	"github.com/viant/floor/internal/clock"
	"github.com/viant/floor/service/messaging"
)

type Publisher[T any] struct {
	queue    messaging.Queue[Event[T]]
	anyQueue messaging.Queue[Event[any]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

// Publish publishes the event, a copy goes to the catch-all queue when attached
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	if p.anyQueue != nil {
		if err := p.anyQueue.TryPublish(&Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		}); err != nil && !errors.Is(err, messaging.ErrQueueFull) {
			return err
		}
	}
	return p.queue.Publish(ctx, event)
}

// TryPublish publishes the event without waiting for queue capacity
func (p *Publisher[T]) TryPublish(event *Event[T]) error {
	event.CreatedAt = clock.Now()
	if p.anyQueue != nil {
		if err := p.anyQueue.TryPublish(&Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		}); err != nil && !errors.Is(err, messaging.ErrQueueFull) {
			return err
		}
	}
	return p.queue.TryPublish(event)
}

func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
