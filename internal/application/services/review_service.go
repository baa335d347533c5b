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

// RuleSelfReview is the invariant broken when a place owner reviews their own place
const RuleSelfReview = "self_review"

// ReviewService handles business logic for reviews
type ReviewService struct {
	*core
}

// Create posts a review. The checks run in a fixed order: references present,
// place and author exist, author is not the owner, no earlier review by the
// author, text and rating valid, caller may act as the author.
func (s *ReviewService) Create(ctx context.Context, p entities.Principal, in entities.ReviewInput) (*entities.Review, error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Create")
	defer span.End()

	if err := validation.ReviewRefs(&in); err != nil {
		return nil, err
	}
	if in.UserID == nil {
		if p.IsAnonymous() {
			return nil, apperrors.NewUnauthorizedError("authentication required")
		}
		userID := p.UserID
		in.UserID = &userID
	}

	var review *entities.Review
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		place, author, err := NewRelationshipResolver(repos).ResolveReviewRefs(ctx, *in.PlaceID, *in.UserID)
		if err != nil {
			return err
		}
		if author.ID == place.OwnerID {
			return apperrors.NewInvariantError(RuleSelfReview, "you cannot review your own place")
		}
		if err := NewUniquenessIndex(repos).CheckReview(ctx, author.ID, place.ID); err != nil {
			return err
		}

		values, err := validation.ReviewContent(&in, validation.Create)
		if err != nil {
			return err
		}

		target := policy.Target{OwnerID: place.OwnerID, AuthorID: author.ID}
		if err := s.authorize(ctx, p, policy.ActionReviewCreate, target); err != nil {
			return err
		}

		now := s.now()
		review = &entities.Review{
			ID:        s.newID(),
			Text:      *values.Text,
			Rating:    *values.Rating,
			PlaceID:   place.ID,
			UserID:    author.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return repos.Reviews.Create(ctx, review)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, reviewEvent(review, entities.EventTypeCreated))
	return review, nil
}

// Get retrieves a review by ID
func (s *ReviewService) Get(ctx context.Context, id string) (*entities.Review, error) {
	return s.store.Repositories().Reviews.GetByID(ctx, id)
}

// List retrieves reviews with filters
func (s *ReviewService) List(ctx context.Context, filter repositories.ReviewFilter) ([]*entities.Review, error) {
	return s.store.Repositories().Reviews.List(ctx, filter)
}

// Update changes the text or rating of a review
func (s *ReviewService) Update(ctx context.Context, p entities.Principal, id string, in entities.ReviewInput) (*entities.Review, error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Update")
	defer span.End()

	values, err := validation.ReviewUpdate(&in)
	if err != nil {
		return nil, err
	}

	var review *entities.Review
	err = s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		var err error
		if review, err = repos.Reviews.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionReviewUpdate, policy.Target{AuthorID: review.UserID}); err != nil {
			return err
		}

		if values.Text != nil {
			review.Text = *values.Text
		}
		if values.Rating != nil {
			review.Rating = *values.Rating
		}
		review.UpdatedAt = s.now()

		return repos.Reviews.Update(ctx, review)
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, reviewEvent(review, entities.EventTypeUpdated))
	return review, nil
}

// Delete removes a review
func (s *ReviewService) Delete(ctx context.Context, p entities.Principal, id string) error {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Delete")
	defer span.End()

	var review *entities.Review
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		var err error
		if review, err = repos.Reviews.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.authorize(ctx, p, policy.ActionReviewDelete, policy.Target{AuthorID: review.UserID}); err != nil {
			return err
		}
		return repos.Reviews.Delete(ctx, id)
	})
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	s.publish(ctx, reviewEvent(review, entities.EventTypeDeleted))
	return nil
}

func reviewEvent(review *entities.Review, eventType entities.EventType) *entities.MarketplaceEvent {
	event := entities.NewMarketplaceEvent(entities.KindReview, review.ID, eventType)
	event.PlaceID = review.PlaceID
	return event
}
