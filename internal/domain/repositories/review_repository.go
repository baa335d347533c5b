package repositories

import (
	"context"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	// Create creates a new review; a second review by the same user for the
	// same place yields a CONFLICT error
	Create(ctx context.Context, review *entities.Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id string) (*entities.Review, error)

	// GetByUserAndPlace retrieves the review a user wrote for a place
	GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error)

	// List retrieves reviews with filters
	List(ctx context.Context, filter ReviewFilter) ([]*entities.Review, error)

	// Update updates a review
	Update(ctx context.Context, review *entities.Review) error

	// Delete deletes a review
	Delete(ctx context.Context, id string) error

	// DeleteByPlace deletes every review of a place
	DeleteByPlace(ctx context.Context, placeID string) error

	// DeleteByUser deletes every review written by a user
	DeleteByUser(ctx context.Context, userID string) error
}

// ReviewFilter defines filters for listing reviews
type ReviewFilter struct {
	PlaceID string
	UserID  string
	Limit   int
	Offset  int
}
