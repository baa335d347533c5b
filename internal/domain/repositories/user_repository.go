package repositories

import (
	"context"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user; a duplicate email yields a CONFLICT error
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by email, case-insensitively
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByIDs retrieves the users that exist among ids
	GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

	// List retrieves users ordered by creation time
	List(ctx context.Context, filter Page) ([]*entities.User, error)

	// Update updates a user
	Update(ctx context.Context, user *entities.User) error

	// Delete deletes a user
	Delete(ctx context.Context, id string) error
}

// Page is a limit/offset window; a zero Limit means no limit
type Page struct {
	Limit  int
	Offset int
}
