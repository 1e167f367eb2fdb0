package providers

import (
	"context"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

// EventPublisher publishes committed domain events. Publication happens after
// the facade has released its locks; failures are logged, never returned to
// the caller of the mutating operation.
type EventPublisher interface {
	Publish(ctx context.Context, event *entities.DomainEvent) error
}

// EventBus is an EventPublisher that can also be subscribed to
type EventBus interface {
	EventPublisher

	// Subscribe streams events until ctx is cancelled
	Subscribe(ctx context.Context) (<-chan *entities.DomainEvent, error)

	// Close closes the bus and all subscriptions
	Close() error
}
