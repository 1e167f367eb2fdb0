package memory

import (
	"context"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

type placeAmenity struct {
	placeID   string
	amenityID string
}

// AmenityRepository stores amenities and their place links in process memory
type AmenityRepository struct {
	t *table[entities.Amenity]
	// links is guarded by t.mu
	links map[placeAmenity]struct{}
}

// NewAmenityRepository creates an empty in-memory amenity repository
func NewAmenityRepository() *AmenityRepository {
	return &AmenityRepository{
		t:     newTable[entities.Amenity](),
		links: make(map[placeAmenity]struct{}),
	}
}

var _ repositories.AmenityRepository = (*AmenityRepository)(nil)

func (r *AmenityRepository) byName(name string) *entities.Amenity {
	name = entities.NormalizeAmenityName(name)
	return r.t.first(func(a *entities.Amenity) bool {
		return entities.NormalizeAmenityName(a.Name) == name
	})
}

func (r *AmenityRepository) Create(ctx context.Context, amenity *entities.Amenity) (*entities.Amenity, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if r.t.get(amenity.ID) != nil {
		return nil, apperrors.NewPersistenceError("duplicate amenity id "+amenity.ID, nil)
	}
	if r.byName(amenity.Name) != nil {
		return nil, apperrors.NewConflictError("name", "amenity name already exists")
	}
	r.t.put(amenity.ID, amenity)
	return r.t.get(amenity.ID), nil
}

func (r *AmenityRepository) GetByID(ctx context.Context, id string) (*entities.Amenity, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.get(id), nil
}

func (r *AmenityRepository) GetByName(ctx context.Context, name string) (*entities.Amenity, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.byName(name), nil
}

func (r *AmenityRepository) List(ctx context.Context) ([]*entities.Amenity, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.find(nil), nil
}

func (r *AmenityRepository) Update(ctx context.Context, id string, patch entities.AmenityUpdate) (*entities.Amenity, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	amenity := r.t.get(id)
	if amenity == nil {
		return nil, apperrors.NewNotFoundError("amenity", id)
	}
	if patch.Name != nil {
		if other := r.byName(*patch.Name); other != nil && other.ID != id {
			return nil, apperrors.NewConflictError("name", "amenity name already exists")
		}
		amenity.Name = *patch.Name
	}
	if patch.Description != nil {
		amenity.Description = *patch.Description
	}
	if !patch.UpdatedAt.IsZero() {
		amenity.UpdatedAt = patch.UpdatedAt
	}
	r.t.put(id, amenity)
	return r.t.get(id), nil
}

func (r *AmenityRepository) Delete(ctx context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(id) {
		return apperrors.NewNotFoundError("amenity", id)
	}
	return nil
}

func (r *AmenityRepository) Link(ctx context.Context, placeID, amenityID string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	r.links[placeAmenity{placeID: placeID, amenityID: amenityID}] = struct{}{}
	return nil
}

func (r *AmenityRepository) Unlink(ctx context.Context, placeID, amenityID string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	key := placeAmenity{placeID: placeID, amenityID: amenityID}
	if _, ok := r.links[key]; !ok {
		return apperrors.NewNotFoundError("amenity link", placeID+"/"+amenityID)
	}
	delete(r.links, key)
	return nil
}

func (r *AmenityRepository) UnlinkAllForPlace(ctx context.Context, placeID string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for key := range r.links {
		if key.placeID == placeID {
			delete(r.links, key)
		}
	}
	return nil
}

func (r *AmenityRepository) UnlinkAllForAmenity(ctx context.Context, amenityID string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for key := range r.links {
		if key.amenityID == amenityID {
			delete(r.links, key)
		}
	}
	return nil
}

// ListByPlace returns linked amenities in amenity insertion order
func (r *AmenityRepository) ListByPlace(ctx context.Context, placeID string) ([]*entities.Amenity, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.find(func(a *entities.Amenity) bool {
		_, ok := r.links[placeAmenity{placeID: placeID, amenityID: a.ID}]
		return ok
	}), nil
}
