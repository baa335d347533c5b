package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/providers"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
)

// A committed change replaces the cached place with a tombstone for
// tombstoneSeconds. Read-through fills use SetNX, so a read that loaded the
// place before the commit cannot write its stale copy back while the
// tombstone lives. Flushes of every place (amenity and user deletes) remove
// keys without tombstones; a stale fill racing one is bounded by the TTL.
const tombstoneSeconds = 5

var tombstone = []byte("\x00evicted")

// CachedStore decorates a Store with a read-through place cache.
// Writes go straight to the wrapped store; the keys a committed transaction
// touched are tombstoned before WithTx returns.
type CachedStore struct {
	store   repositories.Store
	cache   providers.CacheProvider
	ttl     int
	metrics *observability.Metrics
}

var _ repositories.Store = (*CachedStore)(nil)

// NewCachedStore wraps store. metrics may be nil.
func NewCachedStore(store repositories.Store, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedStore {
	return &CachedStore{
		store:   store,
		cache:   cache,
		ttl:     int(ttl.Seconds()),
		metrics: metrics,
	}
}

// Repositories returns the wrapped repositories with cached place reads
func (s *CachedStore) Repositories() repositories.Repositories {
	repos := s.store.Repositories()
	repos.Places = &cachedPlaces{PlaceRepository: repos.Places, store: s}
	return repos
}

// WithTx runs fn on the wrapped store and invalidates what it changed once committed
func (s *CachedStore) WithTx(ctx context.Context, fn func(ctx context.Context, repos repositories.Repositories) error) error {
	changes := &changeSet{places: map[string]struct{}{}}

	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		changes.reset()
		repos.Users = &trackedUsers{UserRepository: repos.Users, changes: changes}
		repos.Amenities = &trackedAmenities{AmenityRepository: repos.Amenities, changes: changes}
		repos.Places = &trackedPlaces{PlaceRepository: repos.Places, changes: changes}
		return fn(ctx, repos)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, changes)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, changes *changeSet) {
	logger := observability.LoggerFromContext(ctx)

	if changes.all {
		if err := s.cache.DeletePattern(ctx, providers.PlaceCachePattern); err != nil {
			logger.Warn().Err(err).Msg("failed to flush place cache")
		}
		return
	}
	for id := range changes.places {
		if err := s.cache.Set(ctx, providers.PlaceCacheKey(id), tombstone, tombstoneSeconds); err != nil {
			logger.Warn().Err(err).Str("place_id", id).Msg("failed to invalidate cached place")
		}
	}
}

// changeSet records which cached places a transaction made stale
type changeSet struct {
	mu     sync.Mutex
	all    bool
	places map[string]struct{}
}

func (c *changeSet) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = false
	clear(c.places)
}

func (c *changeSet) place(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.places[id] = struct{}{}
}

func (c *changeSet) everything() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = true
}

type cachedPlaces struct {
	repositories.PlaceRepository
	store *CachedStore
}

// GetByID serves a place from cache, falling back to the wrapped repository
func (p *cachedPlaces) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	s := p.store
	key := providers.PlaceCacheKey(id)
	logger := observability.LoggerFromContext(ctx)

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil && bytes.Equal(cached, tombstone):
		// recently changed; read through without caching
	case err == nil:
		var place entities.Place
		if err := json.Unmarshal(cached, &place); err == nil {
			s.recordHit(ctx, key)
			return &place, nil
		}
		logger.Warn().Str("place_id", id).Msg("discarding undecodable cached place")
	case !errors.Is(err, providers.ErrCacheMiss):
		logger.Warn().Err(err).Str("place_id", id).Msg("place cache read failed")
	}
	s.recordMiss(ctx, key)

	place, err := p.PlaceRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(place); err == nil {
		if _, err := s.cache.SetNX(ctx, key, data, s.ttl); err != nil {
			logger.Warn().Err(err).Str("place_id", id).Msg("failed to cache place")
		}
	}
	return place, nil
}

func (s *CachedStore) recordHit(ctx context.Context, key string) {
	if s.metrics != nil {
		observability.RecordCacheHit(ctx, s.metrics, key)
	}
}

func (s *CachedStore) recordMiss(ctx context.Context, key string) {
	if s.metrics != nil {
		observability.RecordCacheMiss(ctx, s.metrics, key)
	}
}

type trackedPlaces struct {
	repositories.PlaceRepository
	changes *changeSet
}

func (p *trackedPlaces) Update(ctx context.Context, place *entities.Place) error {
	p.changes.place(place.ID)
	return p.PlaceRepository.Update(ctx, place)
}

func (p *trackedPlaces) AddAmenity(ctx context.Context, placeID, amenityID string, updatedAt time.Time) error {
	p.changes.place(placeID)
	return p.PlaceRepository.AddAmenity(ctx, placeID, amenityID, updatedAt)
}

func (p *trackedPlaces) RemoveAmenity(ctx context.Context, placeID, amenityID string, updatedAt time.Time) error {
	p.changes.place(placeID)
	return p.PlaceRepository.RemoveAmenity(ctx, placeID, amenityID, updatedAt)
}

func (p *trackedPlaces) Delete(ctx context.Context, id string) error {
	p.changes.place(id)
	return p.PlaceRepository.Delete(ctx, id)
}

// Deleting an amenity unlinks it from places we cannot enumerate cheaply.
type trackedAmenities struct {
	repositories.AmenityRepository
	changes *changeSet
}

func (a *trackedAmenities) Delete(ctx context.Context, id string) error {
	a.changes.everything()
	return a.AmenityRepository.Delete(ctx, id)
}

// Deleting a user cascades to the places it owns.
type trackedUsers struct {
	repositories.UserRepository
	changes *changeSet
}

func (u *trackedUsers) Delete(ctx context.Context, id string) error {
	u.changes.everything()
	return u.UserRepository.Delete(ctx, id)
}
