package repositories

import (
	"context"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

// PlaceRepository defines the interface for place data operations.
// Lookups return (nil, nil) when the place does not exist.
type PlaceRepository interface {
	// Create persists a new place and returns the stored record
	Create(ctx context.Context, place *entities.Place) (*entities.Place, error)

	// GetByID retrieves a place by ID
	GetByID(ctx context.Context, id string) (*entities.Place, error)

	// ListByOwner retrieves places owned by a user in insertion order
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error)

	// List returns all places in insertion order
	List(ctx context.Context) ([]*entities.Place, error)

	// Update applies a partial update and bumps the version; NotFoundError when absent
	Update(ctx context.Context, id string, patch entities.PlaceUpdate) (*entities.Place, error)

	// UpdateRating stores the derived rating if the stored version still equals
	// expectedVersion, otherwise it returns a ConcurrencyError
	UpdateRating(ctx context.Context, id string, average float64, count int, expectedVersion int64) (*entities.Place, error)

	// Delete deletes a place; NotFoundError when absent
	Delete(ctx context.Context, id string) error
}
