package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

var amenityColumns = []interface{}{"id", "name", "description", "created_at", "updated_at"}

// AmenityAdapter implements the AmenityRepository interface
type AmenityAdapter struct {
	q sqlx.ExtContext
}

var _ repositories.AmenityRepository = (*AmenityAdapter)(nil)

// Create creates a new amenity
func (a *AmenityAdapter) Create(ctx context.Context, amenity *entities.Amenity) error {
	record := goqu.Record{
		"id":          amenity.ID,
		"name":        amenity.Name,
		"description": amenity.Description,
		"created_at":  amenity.CreatedAt,
		"updated_at":  amenity.UpdatedAt,
	}

	query, args, err := dialect.Insert("amenities").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build amenity insert query", err)
	}

	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		return storageError(err, "failed to create amenity", apperrors.NewConflictError("name", amenity.Name))
	}
	return nil
}

func (a *AmenityAdapter) getOne(ctx context.Context, where exp.Expression, key string) (*entities.Amenity, error) {
	query, args, err := dialect.From("amenities").Select(amenityColumns...).Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build amenity query", err)
	}

	var amenity entities.Amenity
	if err := sqlx.GetContext(ctx, a.q, &amenity, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(entities.KindAmenity, key)
		}
		return nil, storageError(err, "failed to get amenity", nil)
	}
	return &amenity, nil
}

// GetByID retrieves an amenity by ID
func (a *AmenityAdapter) GetByID(ctx context.Context, id string) (*entities.Amenity, error) {
	return a.getOne(ctx, goqu.C("id").Eq(id), id)
}

// GetByName retrieves an amenity by name, case-insensitively
func (a *AmenityAdapter) GetByName(ctx context.Context, name string) (*entities.Amenity, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return a.getOne(ctx, goqu.Func("lower", goqu.C("name")).Eq(normalized), name)
}

// GetByIDs retrieves the amenities that exist among ids
func (a *AmenityAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Amenity, error) {
	if len(ids) == 0 {
		return []*entities.Amenity{}, nil
	}
	query, args, err := dialect.From("amenities").Select(amenityColumns...).Where(goqu.C("id").In(ids)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build amenities query", err)
	}

	amenities := []*entities.Amenity{}
	if err := sqlx.SelectContext(ctx, a.q, &amenities, query, args...); err != nil {
		return nil, storageError(err, "failed to get amenities", nil)
	}
	return amenities, nil
}

// List retrieves amenities ordered by name
func (a *AmenityAdapter) List(ctx context.Context, page repositories.Page) ([]*entities.Amenity, error) {
	ds := dialect.From("amenities").Select(amenityColumns...).Order(goqu.Func("lower", goqu.C("name")).Asc())
	query, args, err := window(ds, page.Limit, page.Offset).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build amenities query", err)
	}

	amenities := []*entities.Amenity{}
	if err := sqlx.SelectContext(ctx, a.q, &amenities, query, args...); err != nil {
		return nil, storageError(err, "failed to list amenities", nil)
	}
	return amenities, nil
}

// Update updates an amenity
func (a *AmenityAdapter) Update(ctx context.Context, amenity *entities.Amenity) error {
	record := goqu.Record{
		"name":        amenity.Name,
		"description": amenity.Description,
		"updated_at":  amenity.UpdatedAt,
	}

	query, args, err := dialect.Update("amenities").Set(record).Where(goqu.C("id").Eq(amenity.ID)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build amenity update query", err)
	}

	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to update amenity", apperrors.NewConflictError("name", amenity.Name))
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindAmenity, amenity.ID)
	}
	return nil
}

// Delete deletes an amenity; place_amenities links cascade
func (a *AmenityAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := dialect.Delete("amenities").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build amenity delete query", err)
	}

	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to delete amenity", nil)
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindAmenity, id)
	}
	return nil
}
