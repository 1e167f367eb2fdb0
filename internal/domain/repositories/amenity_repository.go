package repositories

import (
	"context"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

// AmenityRepository defines the interface for amenities and their place links.
// Lookups return (nil, nil) when the amenity does not exist.
type AmenityRepository interface {
	// Create persists a new amenity and returns the stored record
	Create(ctx context.Context, amenity *entities.Amenity) (*entities.Amenity, error)

	// GetByID retrieves an amenity by ID
	GetByID(ctx context.Context, id string) (*entities.Amenity, error)

	// GetByName retrieves an amenity by name, compared case-insensitively
	GetByName(ctx context.Context, name string) (*entities.Amenity, error)

	// List returns all amenities in insertion order
	List(ctx context.Context) ([]*entities.Amenity, error)

	// Update applies a partial update; NotFoundError when absent
	Update(ctx context.Context, id string, patch entities.AmenityUpdate) (*entities.Amenity, error)

	// Delete deletes an amenity; NotFoundError when absent
	Delete(ctx context.Context, id string) error

	// Link associates an amenity with a place. Linking twice is a no-op.
	Link(ctx context.Context, placeID, amenityID string) error

	// Unlink removes one association; NotFoundError when it does not exist
	Unlink(ctx context.Context, placeID, amenityID string) error

	// UnlinkAllForPlace removes every association of a place
	UnlinkAllForPlace(ctx context.Context, placeID string) error

	// UnlinkAllForAmenity removes every association of an amenity
	UnlinkAllForAmenity(ctx context.Context, amenityID string) error

	// ListByPlace returns the amenities linked to a place
	ListByPlace(ctx context.Context, placeID string) ([]*entities.Amenity, error)
}
