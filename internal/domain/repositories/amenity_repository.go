package repositories

import (
	"context"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// AmenityRepository defines the interface for amenity data operations
type AmenityRepository interface {
	// Create creates a new amenity; a duplicate name yields a CONFLICT error
	Create(ctx context.Context, amenity *entities.Amenity) error

	// GetByID retrieves an amenity by ID
	GetByID(ctx context.Context, id string) (*entities.Amenity, error)

	// GetByName retrieves an amenity by name, case-insensitively
	GetByName(ctx context.Context, name string) (*entities.Amenity, error)

	// GetByIDs retrieves the amenities that exist among ids
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Amenity, error)

	// List retrieves amenities ordered by name
	List(ctx context.Context, filter Page) ([]*entities.Amenity, error)

	// Update updates an amenity
	Update(ctx context.Context, amenity *entities.Amenity) error

	// Delete deletes an amenity and unlinks it from every place
	Delete(ctx context.Context, id string) error
}
