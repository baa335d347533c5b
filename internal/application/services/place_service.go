package services

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/application/loaders"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/policy"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/validation"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/observability"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// PlaceService handles business logic for places
type PlaceService struct {
	*core
}

// Create creates a place. owner_id defaults to the caller; naming another
// owner requires an admin.
func (s *PlaceService) Create(ctx context.Context, p entities.Principal, in entities.PlaceInput) (*entities.Place, error) {
	ctx, span := observability.StartSpan(ctx, "PlaceService.Create")
	defer span.End()

	values, err := validation.Place(&in, validation.Create)
	if err != nil {
		return nil, err
	}

	ownerID := p.UserID
	if values.OwnerID != nil {
		ownerID = *values.OwnerID
	}
	if ownerID == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	now := s.now()
	place := &entities.Place{
		ID:         s.newID(),
		Title:      *values.Title,
		Price:      *values.Price,
		Latitude:   *values.Latitude,
		Longitude:  *values.Longitude,
		OwnerID:    ownerID,
		AmenityIDs: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if values.Description != nil {
		place.Description = *values.Description
	}
	if values.AmenityIDs != nil {
		place.AmenityIDs = *values.AmenityIDs
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		resolver := NewRelationshipResolver(repos)
		if _, err := resolver.ResolveOwner(ctx, place.OwnerID); err != nil {
			return err
		}
		if _, err := resolver.ResolveAmenities(ctx, place.AmenityIDs); err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionPlaceCreate, policy.Target{OwnerID: place.OwnerID}); err != nil {
			return err
		}
		return repos.Places.Create(ctx, place)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.indexPlace(ctx, place)
	s.publish(ctx, placeEvent(place, entities.EventTypeCreated))
	return place, nil
}

// Get retrieves a place by ID
func (s *PlaceService) Get(ctx context.Context, id string) (*entities.Place, error) {
	return s.store.Repositories().Places.GetByID(ctx, id)
}

// List retrieves places with filters
func (s *PlaceService) List(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.Place, error) {
	return s.store.Repositories().Places.List(ctx, filter)
}

// Search finds places by text and price range. The search engine is used when
// configured; on error or without one the repository filter answers.
func (s *PlaceService) Search(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.Place, error) {
	ctx, span := observability.StartSpan(ctx, "PlaceService.Search")
	defer span.End()

	if s.search != nil {
		places, err := s.search.Search(ctx, filter)
		if err == nil {
			return places, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("place search failed, falling back to repository")
	}
	return s.store.Repositories().Places.List(ctx, filter)
}

// Details returns a place with its owner, amenities and reviews
func (s *PlaceService) Details(ctx context.Context, id string) (*entities.PlaceDetails, error) {
	repos := s.store.Repositories()
	place, err := repos.Places.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.expand(ctx, repos, []*entities.Place{place})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// ListDetails lists places and expands each one like Details
func (s *PlaceService) ListDetails(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.PlaceDetails, error) {
	repos := s.store.Repositories()
	places, err := repos.Places.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, repos, places)
}

// Reviews lists the reviews of a place
func (s *PlaceService) Reviews(ctx context.Context, placeID string) ([]*entities.Review, error) {
	repos := s.store.Repositories()
	if _, err := repos.Places.GetByID(ctx, placeID); err != nil {
		return nil, err
	}
	return repos.Reviews.List(ctx, repositories.ReviewFilter{PlaceID: placeID})
}

// Amenities lists the amenities a place offers
func (s *PlaceService) Amenities(ctx context.Context, placeID string) ([]*entities.Amenity, error) {
	repos := s.store.Repositories()
	place, err := repos.Places.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	amenities, err := NewRelationshipResolver(repos).ResolveAmenities(ctx, place.AmenityIDs)
	if err != nil {
		return nil, err
	}
	if amenities == nil {
		amenities = []*entities.Amenity{}
	}
	return amenities, nil
}

// Update applies a partial update. An empty patch only refreshes updated_at.
func (s *PlaceService) Update(ctx context.Context, p entities.Principal, id string, in entities.PlaceInput) (*entities.Place, error) {
	ctx, span := observability.StartSpan(ctx, "PlaceService.Update")
	defer span.End()

	values, err := validation.Place(&in, validation.Update)
	if err != nil {
		return nil, err
	}

	var place *entities.Place
	err = s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		var err error
		if place, err = repos.Places.GetByID(ctx, id); err != nil {
			return err
		}

		resolver := NewRelationshipResolver(repos)
		if values.OwnerID != nil {
			if _, err := resolver.ResolveOwner(ctx, *values.OwnerID); err != nil {
				return err
			}
		}
		if values.AmenityIDs != nil {
			if _, err := resolver.ResolveAmenities(ctx, *values.AmenityIDs); err != nil {
				return err
			}
		}

		if err := s.authorize(ctx, p, policy.ActionPlaceUpdate, policy.Target{OwnerID: place.OwnerID}); err != nil {
			return err
		}
		if values.OwnerID != nil && *values.OwnerID != place.OwnerID {
			if err := s.authorize(ctx, p, policy.ActionReassignOwner, policy.Target{OwnerID: place.OwnerID}); err != nil {
				return err
			}
			// an owner may not be the author of a review on their place
			_, err := repos.Reviews.GetByUserAndPlace(ctx, *values.OwnerID, place.ID)
			switch {
			case err == nil:
				return apperrors.NewInvariantError(RuleSelfReview, "the new owner has reviewed this place")
			case !apperrors.IsNotFound(err):
				return err
			}
			place.OwnerID = *values.OwnerID
		}

		if values.Title != nil {
			place.Title = *values.Title
		}
		if values.Description != nil {
			place.Description = *values.Description
		}
		if values.Price != nil {
			place.Price = *values.Price
		}
		if values.Latitude != nil {
			place.Latitude = *values.Latitude
		}
		if values.Longitude != nil {
			place.Longitude = *values.Longitude
		}
		if values.AmenityIDs != nil {
			place.AmenityIDs = *values.AmenityIDs
		}
		place.UpdatedAt = s.now()

		return repos.Places.Update(ctx, place)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.indexPlace(ctx, place)
	s.publish(ctx, placeEvent(place, entities.EventTypeUpdated))
	return place, nil
}

// AddAmenity links one amenity to a place. Linking an amenity the place
// already offers succeeds without changing the order.
func (s *PlaceService) AddAmenity(ctx context.Context, p entities.Principal, placeID string, in entities.PlaceAmenityInput) (*entities.Place, error) {
	ctx, span := observability.StartSpan(ctx, "PlaceService.AddAmenity")
	defer span.End()

	if err := validation.PlaceAmenity(&in); err != nil {
		return nil, err
	}
	return s.relink(ctx, p, placeID, *in.AmenityID, func(ctx context.Context, repos repositories.Repositories) error {
		return repos.Places.AddAmenity(ctx, placeID, *in.AmenityID, s.now())
	})
}

// RemoveAmenity unlinks one amenity from a place. The amenity must exist;
// removing one the place does not offer succeeds.
func (s *PlaceService) RemoveAmenity(ctx context.Context, p entities.Principal, placeID, amenityID string) (*entities.Place, error) {
	ctx, span := observability.StartSpan(ctx, "PlaceService.RemoveAmenity")
	defer span.End()

	return s.relink(ctx, p, placeID, amenityID, func(ctx context.Context, repos repositories.Repositories) error {
		return repos.Places.RemoveAmenity(ctx, placeID, amenityID, s.now())
	})
}

// relink resolves the place and amenity, checks the caller may update the
// place, then applies change in the same transaction
func (s *PlaceService) relink(ctx context.Context, p entities.Principal, placeID, amenityID string, change func(context.Context, repositories.Repositories) error) (*entities.Place, error) {
	var place *entities.Place
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		current, err := repos.Places.GetByID(ctx, placeID)
		if err != nil {
			return err
		}
		if _, err := NewRelationshipResolver(repos).ResolveAmenities(ctx, []string{amenityID}); err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionPlaceUpdate, policy.Target{OwnerID: current.OwnerID}); err != nil {
			return err
		}
		if err := change(ctx, repos); err != nil {
			return err
		}
		place, err = repos.Places.GetByID(ctx, placeID)
		return err
	})
	if err != nil {
		observability.RecordError(trace.SpanFromContext(ctx), err)
		return nil, err
	}

	s.indexPlace(ctx, place)
	s.publish(ctx, placeEvent(place, entities.EventTypeUpdated))
	return place, nil
}

// Delete removes a place and its reviews
func (s *PlaceService) Delete(ctx context.Context, p entities.Principal, id string) error {
	ctx, span := observability.StartSpan(ctx, "PlaceService.Delete")
	defer span.End()

	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		place, err := repos.Places.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionPlaceDelete, policy.Target{OwnerID: place.OwnerID}); err != nil {
			return err
		}
		return deletePlace(ctx, repos, id)
	})
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	s.unindexPlace(ctx, id)
	s.publish(ctx, entities.NewMarketplaceEvent(entities.KindPlace, id, entities.EventTypeDeleted))
	return nil
}

// deletePlace removes the reviews of a place, then the place
func deletePlace(ctx context.Context, repos repositories.Repositories, id string) error {
	if err := repos.Reviews.DeleteByPlace(ctx, id); err != nil {
		return err
	}
	return repos.Places.Delete(ctx, id)
}

func placeEvent(place *entities.Place, eventType entities.EventType) *entities.MarketplaceEvent {
	event := entities.NewMarketplaceEvent(entities.KindPlace, place.ID, eventType)
	event.Place = place.Clone()
	return event
}

// indexPlace updates the search index; the database stays the source of truth
func (c *core) indexPlace(ctx context.Context, place *entities.Place) {
	if c.search == nil {
		return
	}
	if err := c.search.Index(ctx, place); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("place_id", place.ID).Msg("failed to index place")
	}
}

func (c *core) unindexPlace(ctx context.Context, id string) {
	if c.search == nil {
		return
	}
	if err := c.search.Delete(ctx, id); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("place_id", id).Msg("failed to remove place from index")
	}
}

// expand resolves owners, amenities and review authors for places, batching
// the user and amenity lookups across all of them
func (s *PlaceService) expand(ctx context.Context, repos repositories.Repositories, places []*entities.Place) ([]*entities.PlaceDetails, error) {
	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(repos)
	}

	type pending struct {
		owner     func() (*entities.User, error)
		amenities func() ([]*entities.Amenity, []error)
		reviews   []*entities.Review
		authors   func() ([]*entities.User, []error)
	}

	queued := make([]pending, len(places))
	for i, place := range places {
		reviews, err := repos.Reviews.List(ctx, repositories.ReviewFilter{PlaceID: place.ID})
		if err != nil {
			return nil, err
		}
		authorIDs := make([]string, len(reviews))
		for j, r := range reviews {
			authorIDs[j] = r.UserID
		}
		queued[i] = pending{
			owner:     l.UserLoader.Load(ctx, place.OwnerID),
			amenities: l.AmenityLoader.LoadMany(ctx, place.AmenityIDs),
			reviews:   reviews,
			authors:   l.UserLoader.LoadMany(ctx, authorIDs),
		}
	}

	out := make([]*entities.PlaceDetails, len(places))
	for i, place := range places {
		q := queued[i]

		owner, err := q.owner()
		if err != nil {
			return nil, err
		}
		amenities, errs := q.amenities()
		if err := firstError(errs); err != nil {
			return nil, err
		}
		authors, errs := q.authors()
		if err := firstError(errs); err != nil {
			return nil, err
		}

		details := &entities.PlaceDetails{
			Place:     place,
			Owner:     owner.Summary(),
			Amenities: append([]*entities.Amenity{}, amenities...),
			Reviews:   make([]*entities.ReviewDetails, len(q.reviews)),
		}
		for j, r := range q.reviews {
			rd := &entities.ReviewDetails{Review: r}
			if j < len(authors) && authors[j] != nil {
				rd.UserName = authors[j].DisplayName()
			}
			details.Reviews[j] = rd
		}
		out[i] = details
	}
	return out, nil
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return apperrors.NewInternalError("failed to load place relations", err)
		}
	}
	return nil
}
