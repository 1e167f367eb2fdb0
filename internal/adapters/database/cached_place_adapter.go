package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/hbnb/lodging-core/internal/domain/entities"
	"github.com/hbnb/lodging-core/internal/domain/providers"
	"github.com/hbnb/lodging-core/internal/domain/repositories"
	"github.com/hbnb/lodging-core/internal/infrastructure/observability"
)

// DefaultPlaceCacheTTL is used when no positive TTL is configured (seconds)
const DefaultPlaceCacheTTL = 300

// CachedPlaceAdapter wraps a PlaceRepository with a read-through cache of
// single places.
//
// Writes go through to the cache with Set and deletions leave a tombstone,
// while reads only fill the cache with Add. A reader that loaded an older row
// can therefore never overwrite what a writer stored after it.
type CachedPlaceAdapter struct {
	adapter repositories.PlaceRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
	ttl     int
	loads   singleflight.Group
}

// NewCachedPlaceAdapter creates a new cached place adapter
func NewCachedPlaceAdapter(adapter repositories.PlaceRepository, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CachedPlaceAdapter {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultPlaceCacheTTL
	}
	return &CachedPlaceAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
		ttl:     ttlSeconds,
	}
}

var _ repositories.PlaceRepository = (*CachedPlaceAdapter)(nil)

func placeCacheKey(id string) string {
	return fmt.Sprintf("place:%s", id)
}

// GetByID retrieves a place by ID with caching
func (a *CachedPlaceAdapter) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	key := placeCacheKey(id)

	if cached, err := a.cache.Get(ctx, key); err == nil {
		var place *entities.Place
		if err := json.Unmarshal(cached, &place); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "place")
			return place, nil
		}
		log.Warn().Err(err).Str("place_id", id).Msg("failed to unmarshal cached place")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		log.Warn().Err(err).Str("place_id", id).Msg("place cache read failed")
	}
	observability.RecordCacheMiss(ctx, a.metrics, "place")

	v, err, _ := a.loads.Do(id, func() (interface{}, error) {
		place, err := a.adapter.GetByID(ctx, id)
		if err != nil || place == nil {
			return place, err
		}
		a.fill(ctx, key, place)
		return place, nil
	})
	if err != nil {
		return nil, err
	}
	place, _ := v.(*entities.Place)
	if place == nil {
		return nil, nil
	}
	clone := *place
	return &clone, nil
}

// ListByOwner is not cached
func (a *CachedPlaceAdapter) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Place, error) {
	return a.adapter.ListByOwner(ctx, ownerID)
}

// List is not cached
func (a *CachedPlaceAdapter) List(ctx context.Context) ([]*entities.Place, error) {
	return a.adapter.List(ctx)
}

// Create creates a place and caches it
func (a *CachedPlaceAdapter) Create(ctx context.Context, place *entities.Place) (*entities.Place, error) {
	created, err := a.adapter.Create(ctx, place)
	if err != nil {
		return nil, err
	}
	a.store(ctx, created.ID, created)
	return created, nil
}

// Update updates a place and refreshes its cache entry
func (a *CachedPlaceAdapter) Update(ctx context.Context, id string, patch entities.PlaceUpdate) (*entities.Place, error) {
	updated, err := a.adapter.Update(ctx, id, patch)
	if err != nil {
		a.refresh(ctx, id)
		return nil, err
	}
	a.store(ctx, id, updated)
	return updated, nil
}

// UpdateRating stores the derived rating and refreshes the cache entry. On a
// version conflict the entry is reloaded, so a retry sees the current version.
func (a *CachedPlaceAdapter) UpdateRating(ctx context.Context, id string, average float64, count int, expectedVersion int64) (*entities.Place, error) {
	updated, err := a.adapter.UpdateRating(ctx, id, average, count, expectedVersion)
	if err != nil {
		a.refresh(ctx, id)
		return nil, err
	}
	a.store(ctx, id, updated)
	return updated, nil
}

// Delete deletes a place and leaves a tombstone in its cache entry
func (a *CachedPlaceAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		a.refresh(ctx, id)
		return err
	}
	a.store(ctx, id, nil)
	return nil
}

// Warm fills the cache with up to limit places. Entries already present are
// left alone, so warming never overwrites a newer write.
func (a *CachedPlaceAdapter) Warm(ctx context.Context, limit int) (int, error) {
	places, err := a.adapter.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list places for warming: %w", err)
	}
	if limit > 0 && len(places) > limit {
		places = places[:limit]
	}
	for _, place := range places {
		a.fill(ctx, placeCacheKey(place.ID), place)
	}
	log.Info().Int("places", len(places)).Msg("warmed place cache")
	return len(places), nil
}

// store overwrites the cache entry; a nil place is a tombstone
func (a *CachedPlaceAdapter) store(ctx context.Context, id string, place *entities.Place) {
	data, err := json.Marshal(place)
	if err != nil {
		log.Warn().Err(err).Str("place_id", id).Msg("failed to marshal place for cache")
		return
	}
	if err := a.cache.Set(ctx, placeCacheKey(id), data, a.ttl); err != nil {
		log.Warn().Err(err).Str("place_id", id).Msg("failed to cache place, dropping entry")
		a.drop(ctx, id)
	}
}

// refresh replaces the cache entry with the stored row
func (a *CachedPlaceAdapter) refresh(ctx context.Context, id string) {
	place, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		a.drop(ctx, id)
		return
	}
	a.store(ctx, id, place)
}

func (a *CachedPlaceAdapter) fill(ctx context.Context, key string, place *entities.Place) {
	data, err := json.Marshal(place)
	if err != nil {
		return
	}
	if _, err := a.cache.Add(ctx, key, data, a.ttl); err != nil {
		log.Warn().Err(err).Str("place_id", place.ID).Msg("failed to fill place cache")
	}
}

func (a *CachedPlaceAdapter) drop(ctx context.Context, id string) {
	if err := a.cache.Delete(ctx, placeCacheKey(id)); err != nil {
		log.Error().Err(err).Str("place_id", id).Msg("failed to drop place cache entry")
	}
}
