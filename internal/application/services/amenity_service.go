package services

import (
	"context"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/policy"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/validation"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
)

// AmenityService handles business logic for amenities
type AmenityService struct {
	*core
}

// Create creates a new amenity
func (s *AmenityService) Create(ctx context.Context, p entities.Principal, in entities.AmenityInput) (*entities.Amenity, error) {
	ctx, span := observability.StartSpan(ctx, "AmenityService.Create")
	defer span.End()

	if err := validation.Amenity(&in, validation.Create); err != nil {
		return nil, err
	}

	now := s.now()
	amenity := &entities.Amenity{
		ID:        s.newID(),
		Name:      *in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		amenity.Description = *in.Description
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		if err := NewUniquenessIndex(repos).Check(ctx, UniqueAmenityName, amenity.Name, ""); err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionAmenityCreate, policy.Target{}); err != nil {
			return err
		}
		return repos.Amenities.Create(ctx, amenity)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, entities.NewMarketplaceEvent(entities.KindAmenity, amenity.ID, entities.EventTypeCreated))
	return amenity, nil
}

// Get retrieves an amenity by ID
func (s *AmenityService) Get(ctx context.Context, id string) (*entities.Amenity, error) {
	return s.store.Repositories().Amenities.GetByID(ctx, id)
}

// List retrieves amenities ordered by name
func (s *AmenityService) List(ctx context.Context, limit, offset int) ([]*entities.Amenity, error) {
	return s.store.Repositories().Amenities.List(ctx, page(limit, offset))
}

// Update applies a partial update to an amenity
func (s *AmenityService) Update(ctx context.Context, p entities.Principal, id string, in entities.AmenityInput) (*entities.Amenity, error) {
	ctx, span := observability.StartSpan(ctx, "AmenityService.Update")
	defer span.End()

	if err := validation.Amenity(&in, validation.Update); err != nil {
		return nil, err
	}

	var amenity *entities.Amenity
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		var err error
		if amenity, err = repos.Amenities.GetByID(ctx, id); err != nil {
			return err
		}
		if in.Name != nil {
			if err := NewUniquenessIndex(repos).Check(ctx, UniqueAmenityName, *in.Name, id); err != nil {
				return err
			}
		}
		if err := s.authorize(ctx, p, policy.ActionAmenityUpdate, policy.Target{}); err != nil {
			return err
		}

		if in.Name != nil {
			amenity.Name = *in.Name
		}
		if in.Description != nil {
			amenity.Description = *in.Description
		}
		amenity.UpdatedAt = s.now()

		return repos.Amenities.Update(ctx, amenity)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, entities.NewMarketplaceEvent(entities.KindAmenity, amenity.ID, entities.EventTypeUpdated))
	return amenity, nil
}

// Delete removes an amenity and unlinks it from every place offering it
func (s *AmenityService) Delete(ctx context.Context, p entities.Principal, id string) error {
	ctx, span := observability.StartSpan(ctx, "AmenityService.Delete")
	defer span.End()

	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		if _, err := repos.Amenities.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionAmenityDelete, policy.Target{}); err != nil {
			return err
		}
		return repos.Amenities.Delete(ctx, id)
	})
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	s.publish(ctx, entities.NewMarketplaceEvent(entities.KindAmenity, id, entities.EventTypeDeleted))
	return nil
}
