package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/providers"
)

// LocalEventBus delivers events to in-process subscribers only
type LocalEventBus struct {
	mu          sync.Mutex
	subscribers map[chan *entities.DomainEvent]struct{}
	closed      bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewLocalEventBus creates an in-process event bus
func NewLocalEventBus() *LocalEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalEventBus{
		subscribers: make(map[chan *entities.DomainEvent]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

var _ providers.EventBus = (*LocalEventBus)(nil)

func (b *LocalEventBus) Publish(ctx context.Context, event *entities.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("event bus closed")
	}
	for subscriber := range b.subscribers {
		select {
		case subscriber <- event:
		default:
			log.Warn().Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
		}
	}
	return nil
}

func (b *LocalEventBus) Subscribe(ctx context.Context) (<-chan *entities.DomainEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("event bus closed")
	}
	ch := make(chan *entities.DomainEvent, 100)
	b.subscribers[ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
	}()
	return ch, nil
}

func (b *LocalEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cancel()
	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
	return nil
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *entities.DomainEvent) error { return nil }
