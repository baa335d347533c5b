package repositories

import (
	"context"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// PlaceRepository defines the interface for place data operations.
// Amenity links are persisted together with the place.
type PlaceRepository interface {
	// Create creates a new place with its amenity links
	Create(ctx context.Context, place *entities.Place) error

	// GetByID retrieves a place by ID
	GetByID(ctx context.Context, id string) (*entities.Place, error)

	// List retrieves places with filters
	List(ctx context.Context, filter PlaceFilter) ([]*entities.Place, error)

	// Update updates a place and replaces its amenity links
	Update(ctx context.Context, place *entities.Place) error

	// AddAmenity links one amenity after the existing ones and sets
	// updated_at. Linking an amenity twice keeps the first link.
	AddAmenity(ctx context.Context, placeID, amenityID string, updatedAt time.Time) error

	// RemoveAmenity drops one amenity link, if present, and sets updated_at
	RemoveAmenity(ctx context.Context, placeID, amenityID string, updatedAt time.Time) error

	// Delete deletes a place
	Delete(ctx context.Context, id string) error
}

// PlaceSearchRepository defines the interface for place search operations (e.g. Typesense)
type PlaceSearchRepository interface {
	// Search searches places
	Search(ctx context.Context, filter PlaceFilter) ([]*entities.Place, error)

	// Index indexes a place
	Index(ctx context.Context, place *entities.Place) error

	// Delete removes a place from index
	Delete(ctx context.Context, id string) error
}

// PlaceFilter defines filters for listing and searching places
type PlaceFilter struct {
	OwnerID  string
	Query    string
	MinPrice *float64
	MaxPrice *float64
	Limit    int
	Offset   int
}
