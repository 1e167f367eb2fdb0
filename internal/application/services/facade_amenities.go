package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/providers"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// CreateAmenity creates an amenity with a unique, case-insensitive name
func (f *Facade) CreateAmenity(ctx context.Context, in entities.AmenityInput) (_ *entities.Amenity, err error) {
	ctx, done := f.begin(ctx, "CreateAmenity")
	defer func() { done(err) }()

	in, err = entities.ValidateAmenityInput(in)
	if err != nil {
		return nil, err
	}
	if err := f.rules.AssertUniqueAmenityName(ctx, in.Name, ""); err != nil {
		return nil, err
	}

	now := f.now()
	amenity := &entities.Amenity{
		ID:          f.newID(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var created *entities.Amenity
	key := providers.AmenityNameLockKey(entities.NormalizeAmenityName(in.Name))
	err = f.withLocks(ctx, []string{key}, func(ctx context.Context) error {
		if err := f.rules.AssertUniqueAmenityName(ctx, in.Name, ""); err != nil {
			return err
		}
		var err error
		created, err = f.amenities.Create(ctx, amenity)
		return apperrors.Persistence("failed to create amenity", err)
	})
	if err != nil {
		return nil, err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventAmenityCreated, created.ID, nil))
	return created, nil
}

// GetAmenity returns an amenity by id
func (f *Facade) GetAmenity(ctx context.Context, id string) (*entities.Amenity, error) {
	return f.rules.AssertAmenityExists(ctx, id)
}

// ListAmenities returns every amenity in insertion order
func (f *Facade) ListAmenities(ctx context.Context) ([]*entities.Amenity, error) {
	amenities, err := f.amenities.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("failed to list amenities", err)
	}
	return amenities, nil
}

// UpdateAmenity applies a partial update; a renamed amenity must keep a unique name
func (f *Facade) UpdateAmenity(ctx context.Context, id string, up entities.AmenityUpdate) (_ *entities.Amenity, err error) {
	ctx, done := f.begin(ctx, "UpdateAmenity", attribute.String("amenity_id", id))
	defer func() { done(err) }()

	up, err = entities.ValidateAmenityUpdate(up)
	if err != nil {
		return nil, err
	}
	up.UpdatedAt = f.now()

	keys := []string{providers.AmenityLockKey(id)}
	if up.Name != nil {
		keys = append([]string{providers.AmenityNameLockKey(entities.NormalizeAmenityName(*up.Name))}, keys...)
	}

	var updated *entities.Amenity
	err = f.withLocks(ctx, keys, func(ctx context.Context) error {
		if _, err := f.rules.AssertAmenityExists(ctx, id); err != nil {
			return err
		}
		if up.Name != nil {
			if err := f.rules.AssertUniqueAmenityName(ctx, *up.Name, id); err != nil {
				return err
			}
		}
		var err error
		updated, err = f.amenities.Update(ctx, id, up)
		return apperrors.Persistence("failed to update amenity", err)
	})
	if err != nil {
		return nil, err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventAmenityUpdated, id, nil))
	return updated, nil
}

// DeleteAmenity removes an amenity and unlinks it from every place
func (f *Facade) DeleteAmenity(ctx context.Context, id string) (err error) {
	ctx, done := f.begin(ctx, "DeleteAmenity", attribute.String("amenity_id", id))
	defer func() { done(err) }()

	err = f.withLocks(ctx, []string{providers.AmenityLockKey(id)}, func(ctx context.Context) error {
		if _, err := f.rules.AssertAmenityExists(ctx, id); err != nil {
			return err
		}
		if err := f.amenities.UnlinkAllForAmenity(ctx, id); err != nil {
			return apperrors.Persistence("failed to unlink amenity", err)
		}
		return apperrors.Persistence("failed to delete amenity", f.amenities.Delete(ctx, id))
	})
	if err != nil {
		return err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventAmenityDeleted, id, nil))
	return nil
}
