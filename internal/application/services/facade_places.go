package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/providers"
	"github.com/hbnb/lodging-core/internal/infrastructure/observability"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

// CreatePlace creates a place for an existing owner. The owner is locked so a
// concurrent cascade delete of that user cannot leave the place orphaned.
func (f *Facade) CreatePlace(ctx context.Context, in entities.PlaceInput) (_ *entities.Place, err error) {
	ctx, done := f.begin(ctx, "CreatePlace", attribute.String("owner_id", in.OwnerID))
	defer func() { done(err) }()

	in, err = entities.ValidatePlaceInput(in)
	if err != nil {
		return nil, err
	}
	if _, err := f.rules.AssertOwnerExists(ctx, in.OwnerID); err != nil {
		return nil, err
	}

	now := f.now()
	place := &entities.Place{
		ID:            f.newID(),
		Title:         in.Title,
		Description:   in.Description,
		Price:         in.Price,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		OwnerID:       in.OwnerID,
		AverageRating: 0,
		ReviewCount:   0,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var created *entities.Place
	err = f.withLocks(ctx, []string{providers.UserLockKey(in.OwnerID)}, func(ctx context.Context) error {
		if _, err := f.rules.AssertOwnerExists(ctx, in.OwnerID); err != nil {
			return err
		}
		var err error
		created, err = f.places.Create(ctx, place)
		return apperrors.Persistence("failed to create place", err)
	})
	if err != nil {
		return nil, err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventPlaceCreated, created.ID,
		map[string]interface{}{"owner_id": created.OwnerID}))
	return created, nil
}

// GetPlace returns a place with its current derived rating. The read runs in
// the place's shared section and never observes a half-applied recompute.
func (f *Facade) GetPlace(ctx context.Context, id string) (*entities.Place, error) {
	var place *entities.Place
	err := f.withShared(ctx, providers.PlaceLockKey(id), func(ctx context.Context) error {
		var err error
		place, err = f.rules.AssertPlaceExists(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return place, nil
}

// ListPlaces returns every place in insertion order
func (f *Facade) ListPlaces(ctx context.Context) ([]*entities.Place, error) {
	places, err := f.places.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("failed to list places", err)
	}
	return places, nil
}

// ListPlacesByUser returns the places owned by a user
func (f *Facade) ListPlacesByUser(ctx context.Context, ownerID string) ([]*entities.Place, error) {
	if _, err := f.rules.AssertUserExists(ctx, ownerID); err != nil {
		return nil, err
	}
	places, err := f.places.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Persistence("failed to list places by owner", err)
	}
	return places, nil
}

// UpdatePlace applies a partial update to a place's descriptive fields
func (f *Facade) UpdatePlace(ctx context.Context, id string, up entities.PlaceUpdate) (_ *entities.Place, err error) {
	ctx, done := f.begin(ctx, "UpdatePlace", attribute.String("place_id", id))
	defer func() { done(err) }()

	up, err = entities.ValidatePlaceUpdate(up)
	if err != nil {
		return nil, err
	}
	up.UpdatedAt = f.now()

	var updated *entities.Place
	err = f.withLocks(ctx, []string{providers.PlaceLockKey(id)}, func(ctx context.Context) error {
		if _, err := f.rules.AssertPlaceExists(ctx, id); err != nil {
			return err
		}
		var err error
		updated, err = f.places.Update(ctx, id, up)
		return apperrors.Persistence("failed to update place", err)
	})
	if err != nil {
		return nil, err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventPlaceUpdated, id, nil))
	return updated, nil
}

// DeletePlace removes a place along with its reviews and amenity links.
// The amenities themselves are kept.
func (f *Facade) DeletePlace(ctx context.Context, id string) (err error) {
	ctx, done := f.begin(ctx, "DeletePlace", attribute.String("place_id", id))
	defer func() { done(err) }()

	err = f.withLocks(ctx, []string{providers.PlaceLockKey(id)}, func(ctx context.Context) error {
		if _, err := f.rules.AssertPlaceExists(ctx, id); err != nil {
			return err
		}
		return f.deletePlaceLocked(ctx, id)
	})
	if err != nil {
		return err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventPlaceDeleted, id, nil))
	return nil
}

// deletePlaceLocked removes a place and everything that hangs off it.
// The caller holds the place's exclusive section.
func (f *Facade) deletePlaceLocked(ctx context.Context, id string) error {
	removed, err := f.reviews.DeleteByPlace(ctx, id)
	if err != nil {
		return apperrors.Persistence("failed to delete place reviews", err)
	}
	if err := f.amenities.UnlinkAllForPlace(ctx, id); err != nil {
		return apperrors.Persistence("failed to unlink place amenities", err)
	}
	if err := f.places.Delete(ctx, id); err != nil {
		return apperrors.Persistence("failed to delete place", err)
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("place_id", id).
		Int("reviews_removed", removed).
		Msg("place deleted with its reviews and amenity links")
	return nil
}

// AddAmenityToPlace links an amenity to a place. Linking twice is a no-op.
func (f *Facade) AddAmenityToPlace(ctx context.Context, placeID, amenityID string) (err error) {
	ctx, done := f.begin(ctx, "AddAmenityToPlace",
		attribute.String("place_id", placeID), attribute.String("amenity_id", amenityID))
	defer func() { done(err) }()

	keys := []string{providers.PlaceLockKey(placeID), providers.AmenityLockKey(amenityID)}
	err = f.withLocks(ctx, keys, func(ctx context.Context) error {
		if _, err := f.rules.AssertPlaceExists(ctx, placeID); err != nil {
			return err
		}
		if _, err := f.rules.AssertAmenityExists(ctx, amenityID); err != nil {
			return err
		}
		return apperrors.Persistence("failed to link amenity", f.amenities.Link(ctx, placeID, amenityID))
	})
	if err != nil {
		return err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventAmenityLinked, amenityID,
		map[string]interface{}{"place_id": placeID}))
	return nil
}

// RemoveAmenityFromPlace removes a link. A link that does not exist is a NotFoundError.
func (f *Facade) RemoveAmenityFromPlace(ctx context.Context, placeID, amenityID string) (err error) {
	ctx, done := f.begin(ctx, "RemoveAmenityFromPlace",
		attribute.String("place_id", placeID), attribute.String("amenity_id", amenityID))
	defer func() { done(err) }()

	keys := []string{providers.PlaceLockKey(placeID), providers.AmenityLockKey(amenityID)}
	err = f.withLocks(ctx, keys, func(ctx context.Context) error {
		if _, err := f.rules.AssertPlaceExists(ctx, placeID); err != nil {
			return err
		}
		if _, err := f.rules.AssertAmenityExists(ctx, amenityID); err != nil {
			return err
		}
		return apperrors.Persistence("failed to unlink amenity", f.amenities.Unlink(ctx, placeID, amenityID))
	})
	if err != nil {
		return err
	}

	f.publish(ctx, entities.NewDomainEvent(entities.EventAmenityUnlinked, amenityID,
		map[string]interface{}{"place_id": placeID}))
	return nil
}

// ListPlaceAmenities returns the amenities linked to a place
func (f *Facade) ListPlaceAmenities(ctx context.Context, placeID string) ([]*entities.Amenity, error) {
	var amenities []*entities.Amenity
	err := f.withShared(ctx, providers.PlaceLockKey(placeID), func(ctx context.Context) error {
		if _, err := f.rules.AssertPlaceExists(ctx, placeID); err != nil {
			return err
		}
		var err error
		amenities, err = f.amenities.ListByPlace(ctx, placeID)
		return apperrors.Persistence("failed to list place amenities", err)
	})
	if err != nil {
		return nil, err
	}
	return amenities, nil
}
