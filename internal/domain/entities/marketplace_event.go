package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a committed marketplace mutation
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// Entity kinds used in events, errors and authorization targets
const (
	KindUser    = "user"
	KindAmenity = "amenity"
	KindPlace   = "place"
	KindReview  = "review"
)

// MarketplaceEvent is published after a mutation commits
type MarketplaceEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	EntityID   string    `json:"entity_id"`
	Type       EventType `json:"type"`
	PlaceID    string    `json:"place_id,omitempty"`
	Place      *Place    `json:"place,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AffectedPlaceID returns the place whose cached views the event invalidates, if any
func (e *MarketplaceEvent) AffectedPlaceID() string {
	if e.Kind == KindPlace {
		return e.EntityID
	}
	return e.PlaceID
}

// NewMarketplaceEvent creates a new event for an entity mutation
func NewMarketplaceEvent(kind, entityID string, eventType EventType) *MarketplaceEvent {
	return &MarketplaceEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		EntityID:   entityID,
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}
