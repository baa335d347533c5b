package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/infrastructure/clients/postgres"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(postgres.NewClientFromDB(db)), mock
}

func sqlFragment(s string) string {
	return regexp.QuoteMeta(s)
}

var userRowColumns = []string{"id", "email", "first_name", "last_name", "password_hash", "is_admin", "created_at", "updated_at"}

func TestUserAdapter_Create(t *testing.T) {
	ctx := context.Background()
	user := &entities.User{ID: "u1", Email: "alice@example.com", FirstName: "Alice", LastName: "L", CreatedAt: time.Now()}

	t.Run("inserts the row", func(t *testing.T) {
		store, mock := setupMockStore(t)
		mock.ExpectExec(sqlFragment(`INSERT INTO "users"`)).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.Repositories().Users.Create(ctx, user))
	})

	t.Run("unique violation is a conflict on email", func(t *testing.T) {
		store, mock := setupMockStore(t)
		mock.ExpectExec(sqlFragment(`INSERT INTO "users"`)).WillReturnError(&pq.Error{Code: "23505"})

		err := store.Repositories().Users.Create(ctx, user)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
		assert.Equal(t, "email", appErr.Field)
	})

	t.Run("other driver errors are internal", func(t *testing.T) {
		store, mock := setupMockStore(t)
		mock.ExpectExec(sqlFragment(`INSERT INTO "users"`)).WillReturnError(errors.New("connection reset"))

		err := store.Repositories().Users.Create(ctx, user)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})
}

func TestUserAdapter_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("matches lower-cased email", func(t *testing.T) {
		store, mock := setupMockStore(t)
		mock.ExpectQuery(sqlFragment(`lower("email") = 'alice@example.com'`)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow("u1", "alice@example.com", "Alice", "L", "hash", false, now, now))

		user, err := store.Repositories().Users.GetByEmail(ctx, " Alice@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		store, mock := setupMockStore(t)
		mock.ExpectQuery(sqlFragment(`FROM "users"`)).WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := store.Repositories().Users.GetByEmail(ctx, "nobody@example.com")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserAdapter_UpdateMissingRow(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectExec(sqlFragment(`UPDATE "users"`)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Repositories().Users.Update(context.Background(), &entities.User{ID: "u404"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, "u404", appErr.ID)
}

func TestPlaceAdapter_CreateWithUnknownOwner(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectExec(sqlFragment(`INSERT INTO "places"`)).WillReturnError(&pq.Error{
		Code:   "23503",
		Detail: `Key (owner_id)=(ghost) is not present in table "users".`,
	})

	err := store.Repositories().Places.Create(context.Background(), &entities.Place{ID: "p1", OwnerID: "ghost"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, entities.KindUser, appErr.Kind)
	assert.Equal(t, "ghost", appErr.ID)
}

func TestPlaceAdapter_CreateLinksAmenities(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectExec(sqlFragment(`INSERT INTO "places"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlFragment(`INSERT INTO "place_amenities"`)).WillReturnResult(sqlmock.NewResult(0, 2))

	err := store.Repositories().Places.Create(context.Background(), &entities.Place{
		ID: "p1", OwnerID: "u1", AmenityIDs: []string{"a1", "a2"},
	})
	assert.NoError(t, err)
}

func TestPlaceAdapter_GetByIDLoadsAmenities(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Now()

	mock.ExpectQuery(sqlFragment(`FROM "places" WHERE ("id" = 'p1')`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "price", "latitude", "longitude", "owner_id", "created_at", "updated_at"}).
			AddRow("p1", "Loft", "", 120.5, 10.0, 20.0, "u1", now, now))
	mock.ExpectQuery(sqlFragment(`FROM "place_amenities"`)).
		WillReturnRows(sqlmock.NewRows([]string{"place_id", "amenity_id"}).
			AddRow("p1", "a2").
			AddRow("p1", "a1"))

	place, err := store.Repositories().Places.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 120.5, place.Price)
	assert.Equal(t, []string{"a2", "a1"}, place.AmenityIDs)
}

func TestPlaceAdapter_ListBuildsFilters(t *testing.T) {
	store, mock := setupMockStore(t)
	minPrice := 50.0

	mock.ExpectQuery(`"owner_id" = 'u1'.*"price" >= .*"title" ILIKE '%100\\%%'`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	places, err := store.Repositories().Places.List(context.Background(), repositories.PlaceFilter{
		OwnerID:  "u1",
		MinPrice: &minPrice,
		Query:    "100%",
	})
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestReviewAdapter_DuplicateIsConflict(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectExec(sqlFragment(`INSERT INTO "reviews"`)).WillReturnError(&pq.Error{Code: "23505"})

	err := store.Repositories().Reviews.Create(context.Background(), &entities.Review{ID: "r1", UserID: "u1", PlaceID: "p1"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
	assert.Equal(t, entities.ReviewKey("u1", "p1"), appErr.Value)
}

func TestStore_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		store, mock := setupMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(sqlFragment(`DELETE FROM "reviews"`)).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		err := store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
			return repos.Reviews.DeleteByPlace(ctx, "p1")
		})
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		store, mock := setupMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(sqlFragment(`DELETE FROM "places"`)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
			return repos.Places.Delete(ctx, "p404")
		})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestPlaceAdapter_AddAmenityAppendsInOneStatement(t *testing.T) {
	ctx := context.Background()
	store, mock := setupMockStore(t)

	// the next position is computed by the insert itself
	mock.ExpectExec(`INSERT INTO "place_amenities" .*SELECT 'p1', 'a2', COALESCE\(MAX\("position"\) \+ 1, 0\) FROM "place_amenities" .*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlFragment(`UPDATE "places" SET "updated_at"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.Repositories().Places.AddAmenity(ctx, "p1", "a2", time.Now()))
}

func TestPlaceAdapter_RemoveAmenityMissingPlace(t *testing.T) {
	ctx := context.Background()
	store, mock := setupMockStore(t)

	mock.ExpectExec(sqlFragment(`DELETE FROM "place_amenities" WHERE (("place_id" = 'nope') AND ("amenity_id" = 'a1'))`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(sqlFragment(`UPDATE "places" SET "updated_at"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Repositories().Places.RemoveAmenity(ctx, "nope", "a1", time.Now())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, entities.KindPlace, appErr.Kind)
}
