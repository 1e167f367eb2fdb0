package entities

import (
	"time"

	"github.com/google/uuid"
)

// DomainEventType names a committed state change
type DomainEventType string

const (
	EventUserCreated     DomainEventType = "user.created"
	EventUserUpdated     DomainEventType = "user.updated"
	EventUserDeleted     DomainEventType = "user.deleted"
	EventPlaceCreated    DomainEventType = "place.created"
	EventPlaceUpdated    DomainEventType = "place.updated"
	EventPlaceDeleted    DomainEventType = "place.deleted"
	EventPlaceRated      DomainEventType = "place.rating_changed"
	EventReviewCreated   DomainEventType = "review.created"
	EventReviewUpdated   DomainEventType = "review.updated"
	EventReviewDeleted   DomainEventType = "review.deleted"
	EventAmenityCreated  DomainEventType = "amenity.created"
	EventAmenityUpdated  DomainEventType = "amenity.updated"
	EventAmenityDeleted  DomainEventType = "amenity.deleted"
	EventAmenityLinked   DomainEventType = "amenity.linked"
	EventAmenityUnlinked DomainEventType = "amenity.unlinked"
)

// DomainEvent is published after a facade operation has committed
type DomainEvent struct {
	ID          string                 `json:"id"`
	Type        DomainEventType        `json:"type"`
	AggregateID string                 `json:"aggregate_id"`
	Data        map[string]interface{} `json:"data,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// NewDomainEvent creates an event for an aggregate
func NewDomainEvent(eventType DomainEventType, aggregateID string, data map[string]interface{}) *DomainEvent {
	return &DomainEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		Data:        data,
		OccurredAt:  time.Now().UTC(),
	}
}
