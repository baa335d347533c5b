package memory

import (
	"context"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// ReviewRepository implements repositories.ReviewRepository
type ReviewRepository struct {
	h handle
}

var _ repositories.ReviewRepository = (*ReviewRepository)(nil)

func copyReview(r *entities.Review) *entities.Review {
	c := *r
	return &c
}

// Create creates a new review
func (r *ReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	return r.h.write(ctx, func(s *state) error {
		if _, ok := s.places[review.PlaceID]; !ok {
			return apperrors.NewNotFoundError(entities.KindPlace, review.PlaceID)
		}
		if _, ok := s.users[review.UserID]; !ok {
			return apperrors.NewNotFoundError(entities.KindUser, review.UserID)
		}
		key := entities.ReviewKey(review.UserID, review.PlaceID)
		if _, taken := s.reviewKeys[key]; taken {
			return apperrors.NewConflictError(entities.KindReview, key)
		}
		s.reviews[review.ID] = copyReview(review)
		s.reviewKeys[key] = review.ID
		return nil
	})
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	var out *entities.Review
	err := r.h.read(ctx, func(s *state) error {
		rv, ok := s.reviews[id]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindReview, id)
		}
		out = copyReview(rv)
		return nil
	})
	return out, err
}

// GetByUserAndPlace retrieves the review a user wrote for a place
func (r *ReviewRepository) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	var out *entities.Review
	err := r.h.read(ctx, func(s *state) error {
		key := entities.ReviewKey(userID, placeID)
		id, ok := s.reviewKeys[key]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindReview, key)
		}
		out = copyReview(s.reviews[id])
		return nil
	})
	return out, err
}

// List retrieves reviews with filters
func (r *ReviewRepository) List(ctx context.Context, filter repositories.ReviewFilter) ([]*entities.Review, error) {
	var out []*entities.Review
	err := r.h.read(ctx, func(s *state) error {
		for _, rv := range s.reviews {
			if filter.PlaceID != "" && rv.PlaceID != filter.PlaceID {
				continue
			}
			if filter.UserID != "" && rv.UserID != filter.UserID {
				continue
			}
			out = append(out, copyReview(rv))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByCreated(out, func(rv *entities.Review) time.Time { return rv.CreatedAt }, func(rv *entities.Review) string { return rv.ID })
	return paginate(out, filter.Limit, filter.Offset), nil
}

// Update updates a review's text and rating
func (r *ReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	return r.h.write(ctx, func(s *state) error {
		current, ok := s.reviews[review.ID]
		if !ok {
			return apperrors.NewNotFoundError(entities.KindReview, review.ID)
		}
		updated := copyReview(current)
		updated.Text = review.Text
		updated.Rating = review.Rating
		updated.UpdatedAt = review.UpdatedAt
		s.reviews[review.ID] = updated
		return nil
	})
}

// Delete deletes a review
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	return r.h.write(ctx, func(s *state) error {
		if _, ok := s.reviews[id]; !ok {
			return apperrors.NewNotFoundError(entities.KindReview, id)
		}
		s.deleteReview(id)
		return nil
	})
}

// DeleteByPlace deletes every review of a place
func (r *ReviewRepository) DeleteByPlace(ctx context.Context, placeID string) error {
	return r.h.write(ctx, func(s *state) error {
		for id, rv := range s.reviews {
			if rv.PlaceID == placeID {
				s.deleteReview(id)
			}
		}
		return nil
	})
}

// DeleteByUser deletes every review written by a user
func (r *ReviewRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.h.write(ctx, func(s *state) error {
		for id, rv := range s.reviews {
			if rv.UserID == userID {
				s.deleteReview(id)
			}
		}
		return nil
	})
}
