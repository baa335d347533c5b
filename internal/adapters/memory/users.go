package memory

import (
	"context"
	"strings"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// UserRepository implements repositories.UserRepository
type UserRepository struct {
	h handle
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func copyUser(u *entities.User) *entities.User {
	c := *u
	return &c
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	return r.h.write(ctx, func(s *state) error {
		key := strings.ToLower(user.Email)
		if _, taken := s.emails[key]; taken {
			return apperrors.NewConflictError("email", user.Email)
		}
		s.users[user.ID] = copyUser(user)
		s.emails[key] = user.ID
		return nil
	})
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	var out *entities.User
	err := r.h.read(ctx, func(s *state) error {
		u, ok := s.users[id]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindUser, id)
		}
		out = copyUser(u)
		return nil
	})
	return out, err
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var out *entities.User
	err := r.h.read(ctx, func(s *state) error {
		id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindUser, email)
		}
		out = copyUser(s.users[id])
		return nil
	})
	return out, err
}

// GetByIDs retrieves the users that exist among ids
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	var out []*entities.User
	err := r.h.read(ctx, func(s *state) error {
		for _, id := range ids {
			if u, ok := s.users[id]; ok {
				out = append(out, copyUser(u))
			}
		}
		return nil
	})
	return out, err
}

// List retrieves users ordered by creation time
func (r *UserRepository) List(ctx context.Context, page repositories.Page) ([]*entities.User, error) {
	var out []*entities.User
	err := r.h.read(ctx, func(s *state) error {
		out = make([]*entities.User, 0, len(s.users))
		for _, u := range s.users {
			out = append(out, copyUser(u))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByCreated(out, func(u *entities.User) time.Time { return u.CreatedAt }, func(u *entities.User) string { return u.ID })
	return paginate(out, page.Limit, page.Offset), nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	return r.h.write(ctx, func(s *state) error {
		current, ok := s.users[user.ID]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindUser, user.ID)
		}
		oldKey, newKey := strings.ToLower(current.Email), strings.ToLower(user.Email)
		if oldKey != newKey {
			if _, taken := s.emails[newKey]; taken {
				return apperrors.NewConflictError("email", user.Email)
			}
			delete(s.emails, oldKey)
			s.emails[newKey] = user.ID
		}
		s.users[user.ID] = copyUser(user)
		return nil
	})
}

// Delete deletes a user along with owned places and authored reviews
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.h.write(ctx, func(s *state) error {
		if _, ok := s.users[id]; !ok {
			return apperrors.NewNotFoundError(entities.KindUser, id)
		}
		s.deleteUser(id)
		return nil
	})
}
