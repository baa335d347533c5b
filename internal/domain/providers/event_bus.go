package providers

import (
	"context"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.MarketplaceEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.MarketplaceEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelMarketplace carries every committed mutation
	EventChannelMarketplace = "marketplace:events"

	// EventChannelPlaces carries place mutations only
	EventChannelPlaces = "marketplace:places"
)

// ChannelsFor returns the channels an event is published on
func ChannelsFor(event *entities.MarketplaceEvent) []string {
	channels := []string{EventChannelMarketplace}
	if event.Kind == entities.KindPlace {
		channels = append(channels, EventChannelPlaces)
	}
	return channels
}
