package services

import (
	"context"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/policy"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/validation"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// UserService handles business logic for users
type UserService struct {
	*core
}

// Create registers a new user. Registration is open; only an admin may create another admin.
func (s *UserService) Create(ctx context.Context, p entities.Principal, in entities.UserInput) (*entities.User, error) {
	ctx, span := observability.StartSpan(ctx, "UserService.Create")
	defer span.End()

	if err := validation.User(&in, validation.Create); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(*in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := s.now()
	user := &entities.User{
		ID:           s.newID(),
		Email:        *in.Email,
		FirstName:    *in.FirstName,
		LastName:     *in.LastName,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin != nil && *in.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		if err := NewUniquenessIndex(repos).Check(ctx, UniqueEmail, user.Email, ""); err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionUserCreate, policy.Target{}); err != nil {
			return err
		}
		if user.IsAdmin {
			if err := s.authorize(ctx, p, policy.ActionGrantAdmin, policy.Target{}); err != nil {
				return err
			}
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, entities.NewMarketplaceEvent(entities.KindUser, user.ID, entities.EventTypeCreated))
	return user, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*entities.User, error) {
	return s.store.Repositories().Users.GetByID(ctx, id)
}

// List retrieves users ordered by creation time
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	return s.store.Repositories().Users.List(ctx, page(limit, offset))
}

// Update applies a partial update. Changing is_admin requires an admin.
func (s *UserService) Update(ctx context.Context, p entities.Principal, id string, in entities.UserInput) (*entities.User, error) {
	ctx, span := observability.StartSpan(ctx, "UserService.Update")
	defer span.End()

	if err := validation.User(&in, validation.Update); err != nil {
		return nil, err
	}

	var hash string
	if in.Password != nil {
		var err error
		if hash, err = s.hasher.Hash(*in.Password); err != nil {
			return nil, apperrors.NewInternalError("failed to hash password", err)
		}
	}

	var user *entities.User
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		var err error
		if user, err = repos.Users.GetByID(ctx, id); err != nil {
			return err
		}
		if in.Email != nil {
			if err := NewUniquenessIndex(repos).Check(ctx, UniqueEmail, *in.Email, id); err != nil {
				return err
			}
		}
		if err := s.authorize(ctx, p, policy.ActionUserUpdate, policy.Target{UserID: id}); err != nil {
			return err
		}
		if in.IsAdmin != nil && *in.IsAdmin != user.IsAdmin {
			if err := s.authorize(ctx, p, policy.ActionGrantAdmin, policy.Target{UserID: id}); err != nil {
				return err
			}
			user.IsAdmin = *in.IsAdmin
		}

		if in.Email != nil {
			user.Email = *in.Email
		}
		if in.FirstName != nil {
			user.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			user.LastName = *in.LastName
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		user.UpdatedAt = s.now()

		return repos.Users.Update(ctx, user)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, entities.NewMarketplaceEvent(entities.KindUser, user.ID, entities.EventTypeUpdated))
	return user, nil
}

// Delete removes a user with the places they own, the reviews on those
// places and the reviews they wrote
func (s *UserService) Delete(ctx context.Context, p entities.Principal, id string) error {
	ctx, span := observability.StartSpan(ctx, "UserService.Delete")
	defer span.End()

	var owned []*entities.Place
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionUserDelete, policy.Target{UserID: id}); err != nil {
			return err
		}

		var err error
		if owned, err = repos.Places.List(ctx, repositories.PlaceFilter{OwnerID: id}); err != nil {
			return err
		}
		for _, place := range owned {
			if err := deletePlace(ctx, repos, place.ID); err != nil {
				return err
			}
		}
		if err := repos.Reviews.DeleteByUser(ctx, id); err != nil {
			return err
		}
		return repos.Users.Delete(ctx, id)
	})
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	events := []*entities.MarketplaceEvent{entities.NewMarketplaceEvent(entities.KindUser, id, entities.EventTypeDeleted)}
	for _, place := range owned {
		s.unindexPlace(ctx, place.ID)
		events = append(events, entities.NewMarketplaceEvent(entities.KindPlace, place.ID, entities.EventTypeDeleted))
	}
	s.publish(ctx, events...)
	return nil
}
