package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/providers"
	redisclient "github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/redis"
)

func setupEventBus(t *testing.T) *RedisEventBus {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bus := NewRedisEventBus(redisclient.NewClientFromRedis(rdb))
	t.Cleanup(func() {
		_ = bus.Close()
		_ = rdb.Close()
	})
	return bus
}

func receive(t *testing.T, ch <-chan *entities.MarketplaceEvent) *entities.MarketplaceEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func waitClosed(t *testing.T, ch <-chan *entities.MarketplaceEvent) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel was not closed")
		}
	}
}

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	bus := setupEventBus(t)
	ctx := context.Background()

	ch, err := bus.Subscribe(ctx, providers.EventChannelMarketplace)
	require.NoError(t, err)

	event := entities.NewMarketplaceEvent(entities.KindReview, "r1", entities.EventTypeCreated)
	event.PlaceID = "p1"
	require.NoError(t, bus.Publish(ctx, providers.EventChannelMarketplace, event))

	got := receive(t, ch)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, entities.KindReview, got.Kind)
	assert.Equal(t, "p1", got.AffectedPlaceID())
}

func TestRedisEventBus_FansOutToEverySubscriber(t *testing.T) {
	bus := setupEventBus(t)
	ctx := context.Background()

	first, err := bus.Subscribe(ctx, providers.EventChannelPlaces)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, providers.EventChannelPlaces)
	require.NoError(t, err)

	event := entities.NewMarketplaceEvent(entities.KindPlace, "p1", entities.EventTypeUpdated)
	require.NoError(t, bus.Publish(ctx, providers.EventChannelPlaces, event))

	assert.Equal(t, "p1", receive(t, first).EntityID)
	assert.Equal(t, "p1", receive(t, second).EntityID)
}

func TestRedisEventBus_ContextCancelClosesSubscriber(t *testing.T) {
	bus := setupEventBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, providers.EventChannelMarketplace)
	require.NoError(t, err)

	cancel()
	waitClosed(t, ch)
}

func TestRedisEventBus_UnsubscribeAndClose(t *testing.T) {
	bus := setupEventBus(t)
	ctx := context.Background()

	events, err := bus.Subscribe(ctx, providers.EventChannelMarketplace)
	require.NoError(t, err)
	places, err := bus.Subscribe(ctx, providers.EventChannelPlaces)
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe(ctx, providers.EventChannelMarketplace))
	waitClosed(t, events)

	require.NoError(t, bus.Close())
	waitClosed(t, places)
}
