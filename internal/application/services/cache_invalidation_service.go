package services

import (
	"context"
	"fmt"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/providers"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
)

// CacheInvalidationService evicts cached places when marketplace events arrive,
// so every instance sharing the cache sees committed changes
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelMarketplace)
	if err != nil {
		return fmt.Errorf("failed to subscribe to marketplace events: %w", err)
	}

	s.started = true
	go s.processEvents(eventChan)
	observability.GetLogger().Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if s.started {
		<-s.done
	}
	observability.GetLogger().Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.MarketplaceEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.HandleEvent(event)
		}
	}
}

// HandleEvent evicts the cache entries an event makes stale
func (s *CacheInvalidationService) HandleEvent(event *entities.MarketplaceEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := observability.GetLogger()

	// amenity deletes rewrite amenity_ids on many places; user deletes cascade
	if event.Type == entities.EventTypeDeleted && (event.Kind == entities.KindAmenity || event.Kind == entities.KindUser) {
		if err := s.InvalidatePlaces(ctx); err != nil {
			logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to invalidate place cache")
		}
		return
	}

	placeID := event.AffectedPlaceID()
	if placeID == "" {
		return
	}
	if err := s.cache.Delete(ctx, providers.PlaceCacheKey(placeID)); err != nil {
		logger.Warn().Err(err).Str("place_id", placeID).Msg("failed to invalidate place cache")
		return
	}
	logger.Debug().Str("place_id", placeID).Str("type", string(event.Type)).Msg("invalidated place cache")
}

// InvalidatePlaces evicts every cached place
func (s *CacheInvalidationService) InvalidatePlaces(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, providers.PlaceCachePattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", providers.PlaceCachePattern, err)
	}
	return nil
}
