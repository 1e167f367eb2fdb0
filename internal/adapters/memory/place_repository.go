package memory

import (
	"context"
	"fmt"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// PlaceRepository stores places in process memory
type PlaceRepository struct {
	t *table[entities.Place]
}

// NewPlaceRepository creates an empty in-memory place repository
func NewPlaceRepository() *PlaceRepository {
	return &PlaceRepository{t: newTable[entities.Place]()}
}

var _ repositories.PlaceRepository = (*PlaceRepository)(nil)

func (r *PlaceRepository) Create(ctx context.Context, place *entities.Place) (*entities.Place, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if r.t.get(place.ID) != nil {
		return nil, apperrors.NewPersistenceError("duplicate place id "+place.ID, nil)
	}
	r.t.put(place.ID, place)
	return r.t.get(place.ID), nil
}

func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.get(id), nil
}

func (r *PlaceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.find(func(p *entities.Place) bool { return p.OwnerID == ownerID }), nil
}

func (r *PlaceRepository) List(ctx context.Context) ([]*entities.Place, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.find(nil), nil
}

func (r *PlaceRepository) Update(ctx context.Context, id string, patch entities.PlaceUpdate) (*entities.Place, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	place := r.t.get(id)
	if place == nil {
		return nil, apperrors.NewNotFoundError("place", id)
	}
	if patch.Title != nil {
		place.Title = *patch.Title
	}
	if patch.Description != nil {
		place.Description = *patch.Description
	}
	if patch.Price != nil {
		place.Price = *patch.Price
	}
	if patch.Latitude != nil {
		place.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		place.Longitude = *patch.Longitude
	}
	if !patch.UpdatedAt.IsZero() {
		place.UpdatedAt = patch.UpdatedAt
	}
	place.Version++
	r.t.put(id, place)
	return r.t.get(id), nil
}

func (r *PlaceRepository) UpdateRating(ctx context.Context, id string, average float64, count int, expectedVersion int64) (*entities.Place, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	place := r.t.get(id)
	if place == nil {
		return nil, apperrors.NewNotFoundError("place", id)
	}
	if place.Version != expectedVersion {
		return nil, apperrors.NewConcurrencyError(id,
			fmt.Sprintf("place version is %d, expected %d", place.Version, expectedVersion), nil)
	}
	place.AverageRating = average
	place.ReviewCount = count
	place.Version++
	r.t.put(id, place)
	return r.t.get(id), nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return apperrors.NewNotFoundError("place", id)
	}
	return nil
}
