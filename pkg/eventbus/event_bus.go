// Package eventbus provides the messaging abstraction between the TMS,
// the API, and the execution worker.
package eventbus

import (
	"context"

	"github.com/loadsmith/cargoflow/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventHandler func(ctx context.Context, event any) error

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler)
	Subscribe(ctx context.Context, topic string) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
