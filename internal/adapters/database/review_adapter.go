package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

var reviewColumns = []interface{}{"id", "text", "rating", "place_id", "user_id", "created_at", "updated_at"}

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	q sqlx.ExtContext
}

var _ repositories.ReviewRepository = (*ReviewAdapter)(nil)

// Create creates a new review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	record := goqu.Record{
		"id":         review.ID,
		"text":       review.Text,
		"rating":     review.Rating,
		"place_id":   review.PlaceID,
		"user_id":    review.UserID,
		"created_at": review.CreatedAt,
		"updated_at": review.UpdatedAt,
	}

	query, args, err := dialect.Insert("reviews").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review insert query", err)
	}

	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		key := entities.ReviewKey(review.UserID, review.PlaceID)
		return storageError(err, "failed to create review", apperrors.NewConflictError(entities.KindReview, key))
	}
	return nil
}

func (a *ReviewAdapter) getOne(ctx context.Context, where exp.Expression, key string) (*entities.Review, error) {
	query, args, err := dialect.From("reviews").Select(reviewColumns...).Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build review query", err)
	}

	var review entities.Review
	if err := sqlx.GetContext(ctx, a.q, &review, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(entities.KindReview, key)
		}
		return nil, storageError(err, "failed to get review", nil)
	}
	return &review, nil
}

// GetByID retrieves a review by ID
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	return a.getOne(ctx, goqu.C("id").Eq(id), id)
}

// GetByUserAndPlace retrieves the review a user wrote for a place
func (a *ReviewAdapter) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	where := goqu.Ex{"user_id": userID, "place_id": placeID}
	return a.getOne(ctx, where, entities.ReviewKey(userID, placeID))
}

// List retrieves reviews with filters
func (a *ReviewAdapter) List(ctx context.Context, filter repositories.ReviewFilter) ([]*entities.Review, error) {
	ds := dialect.From("reviews").Select(reviewColumns...)
	if filter.PlaceID != "" {
		ds = ds.Where(goqu.C("place_id").Eq(filter.PlaceID))
	}
	if filter.UserID != "" {
		ds = ds.Where(goqu.C("user_id").Eq(filter.UserID))
	}
	ds = ds.Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())

	query, args, err := window(ds, filter.Limit, filter.Offset).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build reviews query", err)
	}

	reviews := []*entities.Review{}
	if err := sqlx.SelectContext(ctx, a.q, &reviews, query, args...); err != nil {
		return nil, storageError(err, "failed to list reviews", nil)
	}
	return reviews, nil
}

// Update updates a review's text and rating
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	record := goqu.Record{
		"text":       review.Text,
		"rating":     review.Rating,
		"updated_at": review.UpdatedAt,
	}

	query, args, err := dialect.Update("reviews").Set(record).Where(goqu.C("id").Eq(review.ID)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review update query", err)
	}

	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to update review", nil)
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindReview, review.ID)
	}
	return nil
}

// Delete deletes a review
func (a *ReviewAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := dialect.Delete("reviews").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review delete query", err)
	}

	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to delete review", nil)
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindReview, id)
	}
	return nil
}

// DeleteByPlace deletes every review of a place
func (a *ReviewAdapter) DeleteByPlace(ctx context.Context, placeID string) error {
	return a.deleteWhere(ctx, goqu.C("place_id").Eq(placeID))
}

// DeleteByUser deletes every review written by a user
func (a *ReviewAdapter) DeleteByUser(ctx context.Context, userID string) error {
	return a.deleteWhere(ctx, goqu.C("user_id").Eq(userID))
}

func (a *ReviewAdapter) deleteWhere(ctx context.Context, where exp.Expression) error {
	query, args, err := dialect.Delete("reviews").Where(where).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review delete query", err)
	}
	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		return storageError(err, "failed to delete reviews", nil)
	}
	return nil
}
