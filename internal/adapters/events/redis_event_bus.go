package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/providers"
	redisclient "github.com/hbnb/lodging-core/internal/infrastructure/clients/redis"
)

// RedisEventBus implements the EventBus interface using Redis Pub/Sub on a single channel
type RedisEventBus struct {
	client  *redisclient.Client
	channel string

	mu          sync.Mutex
	subscribers map[chan *entities.DomainEvent]struct{}
	started     bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client, channel string) *RedisEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:      client,
		channel:     channel,
		subscribers: make(map[chan *entities.DomainEvent]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

var _ providers.EventBus = (*RedisEventBus)(nil)

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, event *entities.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", b.channel).Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("published event")
	return nil
}

// Subscribe subscribes to events until ctx is cancelled
func (b *RedisEventBus) Subscribe(ctx context.Context) (<-chan *entities.DomainEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx.Err() != nil {
		return nil, fmt.Errorf("event bus closed")
	}

	if !b.started {
		pubsub := b.client.Client().Subscribe(b.ctx, b.channel)
		// wait for the subscription confirmation so no publish is missed
		if _, err := pubsub.Receive(b.ctx); err != nil {
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
		}
		b.started = true
		go b.receiveMessages(pubsub.Channel(), pubsub.Close)
	}

	eventChan := make(chan *entities.DomainEvent, 100)
	b.subscribers[eventChan] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeSubscriber(eventChan)
	}()

	return eventChan, nil
}

// receiveMessages fans messages from Redis out to subscribers
func (b *RedisEventBus) receiveMessages(ch <-chan *redis.Message, closeFn func() error) {
	defer func() {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Str("channel", b.channel).Msg("failed to close subscription")
		}
	}()

	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.DomainEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", b.channel).Msg("failed to unmarshal event")
				continue
			}

			b.mu.Lock()
			for subscriber := range b.subscribers {
				select {
				case subscriber <- &event:
				default:
					log.Warn().Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
				}
			}
			b.mu.Unlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(eventChan chan *entities.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[eventChan]; !ok {
		return
	}
	delete(b.subscribers, eventChan)
	close(eventChan)
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	for subscriber := range b.subscribers {
		delete(b.subscribers, subscriber)
		close(subscriber)
	}
	return nil
}
