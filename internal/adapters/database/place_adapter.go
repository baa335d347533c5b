package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

var placeColumns = []interface{}{
	"id", "title", "description", "price", "latitude", "longitude", "owner_id", "created_at", "updated_at",
}

// PlaceAdapter implements the PlaceRepository interface.
// Amenity links live in place_amenities, ordered by position.
type PlaceAdapter struct {
	q sqlx.ExtContext
}

var _ repositories.PlaceRepository = (*PlaceAdapter)(nil)

// Create creates a new place with its amenity links
func (a *PlaceAdapter) Create(ctx context.Context, place *entities.Place) error {
	record := goqu.Record{
		"id":          place.ID,
		"title":       place.Title,
		"description": place.Description,
		"price":       place.Price,
		"latitude":    place.Latitude,
		"longitude":   place.Longitude,
		"owner_id":    place.OwnerID,
		"created_at":  place.CreatedAt,
		"updated_at":  place.UpdatedAt,
	}

	query, args, err := dialect.Insert("places").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place insert query", err)
	}
	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		return storageError(err, "failed to create place", nil)
	}

	return a.insertLinks(ctx, place)
}

func (a *PlaceAdapter) insertLinks(ctx context.Context, place *entities.Place) error {
	if len(place.AmenityIDs) == 0 {
		return nil
	}

	rows := make([]interface{}, len(place.AmenityIDs))
	for i, amenityID := range place.AmenityIDs {
		rows[i] = goqu.Record{"place_id": place.ID, "amenity_id": amenityID, "position": i}
	}

	query, args, err := dialect.Insert("place_amenities").Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place amenities insert query", err)
	}
	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		return storageError(err, "failed to link place amenities", nil)
	}
	return nil
}

// amenityIDs loads the ordered amenity links of every place in placeIDs
func (a *PlaceAdapter) amenityIDs(ctx context.Context, placeIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}

	query, args, err := dialect.From("place_amenities").
		Select("place_id", "amenity_id").
		Where(goqu.C("place_id").In(placeIDs)).
		Order(goqu.C("place_id").Asc(), goqu.C("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build place amenities query", err)
	}

	var links []struct {
		PlaceID   string `db:"place_id"`
		AmenityID string `db:"amenity_id"`
	}
	if err := sqlx.SelectContext(ctx, a.q, &links, query, args...); err != nil {
		return nil, storageError(err, "failed to load place amenities", nil)
	}
	for _, l := range links {
		out[l.PlaceID] = append(out[l.PlaceID], l.AmenityID)
	}
	return out, nil
}

func (a *PlaceAdapter) withAmenities(ctx context.Context, places []*entities.Place) error {
	ids := make([]string, len(places))
	for i, p := range places {
		ids[i] = p.ID
	}
	links, err := a.amenityIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range places {
		p.AmenityIDs = links[p.ID]
		if p.AmenityIDs == nil {
			p.AmenityIDs = []string{}
		}
	}
	return nil
}

// GetByID retrieves a place by ID
func (a *PlaceAdapter) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	query, args, err := dialect.From("places").Select(placeColumns...).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build place query", err)
	}

	var place entities.Place
	if err := sqlx.GetContext(ctx, a.q, &place, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(entities.KindPlace, id)
		}
		return nil, storageError(err, "failed to get place", nil)
	}

	if err := a.withAmenities(ctx, []*entities.Place{&place}); err != nil {
		return nil, err
	}
	return &place, nil
}

// List retrieves places with filters
func (a *PlaceAdapter) List(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.Place, error) {
	ds := dialect.From("places").Select(placeColumns...)

	if filter.OwnerID != "" {
		ds = ds.Where(goqu.C("owner_id").Eq(filter.OwnerID))
	}
	if filter.MinPrice != nil {
		ds = ds.Where(goqu.C("price").Gte(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		ds = ds.Where(goqu.C("price").Lte(*filter.MaxPrice))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("description").ILike(pattern),
		))
	}

	ds = ds.Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	query, args, err := window(ds, filter.Limit, filter.Offset).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build places query", err)
	}

	places := []*entities.Place{}
	if err := sqlx.SelectContext(ctx, a.q, &places, query, args...); err != nil {
		return nil, storageError(err, "failed to list places", nil)
	}
	if err := a.withAmenities(ctx, places); err != nil {
		return nil, err
	}
	return places, nil
}

// Update updates a place and replaces its amenity links
func (a *PlaceAdapter) Update(ctx context.Context, place *entities.Place) error {
	record := goqu.Record{
		"title":       place.Title,
		"description": place.Description,
		"price":       place.Price,
		"latitude":    place.Latitude,
		"longitude":   place.Longitude,
		"owner_id":    place.OwnerID,
		"updated_at":  place.UpdatedAt,
	}

	query, args, err := dialect.Update("places").Set(record).Where(goqu.C("id").Eq(place.ID)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place update query", err)
	}

	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to update place", nil)
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindPlace, place.ID)
	}

	query, args, err = dialect.Delete("place_amenities").Where(goqu.C("place_id").Eq(place.ID)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place amenities delete query", err)
	}
	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		return storageError(err, "failed to unlink place amenities", nil)
	}

	return a.insertLinks(ctx, place)
}

// AddAmenity appends one link in a single statement, so concurrent callers
// never overwrite each other's links
func (a *PlaceAdapter) AddAmenity(ctx context.Context, placeID, amenityID string, updatedAt time.Time) error {
	next := dialect.From("place_amenities").
		Select(goqu.V(placeID), goqu.V(amenityID), goqu.L(`COALESCE(MAX("position") + 1, 0)`)).
		Where(goqu.C("place_id").Eq(placeID))

	query, args, err := dialect.Insert("place_amenities").
		Cols("place_id", "amenity_id", "position").
		FromQuery(next).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place amenity insert query", err)
	}
	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		return storageError(err, "failed to link place amenity", nil)
	}
	return a.touch(ctx, placeID, updatedAt)
}

// RemoveAmenity deletes one link
func (a *PlaceAdapter) RemoveAmenity(ctx context.Context, placeID, amenityID string, updatedAt time.Time) error {
	query, args, err := dialect.Delete("place_amenities").
		Where(goqu.C("place_id").Eq(placeID), goqu.C("amenity_id").Eq(amenityID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place amenity delete query", err)
	}
	if _, err := a.q.ExecContext(ctx, query, args...); err != nil {
		return storageError(err, "failed to unlink place amenity", nil)
	}
	return a.touch(ctx, placeID, updatedAt)
}

func (a *PlaceAdapter) touch(ctx context.Context, placeID string, updatedAt time.Time) error {
	query, args, err := dialect.Update("places").
		Set(goqu.Record{"updated_at": updatedAt}).
		Where(goqu.C("id").Eq(placeID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place update query", err)
	}
	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to update place", nil)
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindPlace, placeID)
	}
	return nil
}

// Delete deletes a place; its reviews and links cascade
func (a *PlaceAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := dialect.Delete("places").Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place delete query", err)
	}

	found, err := exec(ctx, a.q, query, args)
	if err != nil {
		return storageError(err, "failed to delete place", nil)
	}
	if !found {
		return apperrors.NewNotFoundError(entities.KindPlace, id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
