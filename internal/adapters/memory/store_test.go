package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

func seedUser(t *testing.T, repos repositories.Repositories, id, email string) *entities.User {
	t.Helper()
	u := &entities.User{ID: id, Email: email, FirstName: "F", LastName: "L", CreatedAt: time.Now()}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func TestUserRepository_EmailIsUniqueCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	seedUser(t, repos, "u1", "alice@example.com")

	err := repos.Users.Create(ctx, &entities.User{ID: "u2", Email: "ALICE@example.com"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))

	got, err := repos.Users.GetByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	seedUser(t, repos, "u1", "a@x.com")

	got, err := repos.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	got.FirstName = "Mallory"

	again, err := repos.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "F", again.FirstName)
}

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		require.NoError(t, repos.Users.Create(ctx, &entities.User{ID: "u1", Email: "a@x.com"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Repositories().Users.GetByID(ctx, "u1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStore_WithTxHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewStore()

	err := store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
		if err := repos.Users.Create(ctx, &entities.User{ID: "u1", Email: "a@x.com"}); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Repositories().Users.GetByID(context.Background(), "u1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPlaceRepository_ForeignKeys(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	seedUser(t, repos, "owner", "o@x.com")

	err := repos.Places.Create(ctx, &entities.Place{ID: "p1", OwnerID: "ghost"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, entities.KindUser, appErr.Kind)
	assert.Equal(t, "ghost", appErr.ID)

	err = repos.Places.Create(ctx, &entities.Place{ID: "p1", OwnerID: "owner", AmenityIDs: []string{"a404"}})
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, entities.KindAmenity, appErr.Kind)
}

func TestPlaceRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	seedUser(t, repos, "o1", "o1@x.com")
	seedUser(t, repos, "o2", "o2@x.com")

	base := time.Now()
	for i, p := range []*entities.Place{
		{ID: "p1", Title: "Beach house", Price: 200, OwnerID: "o1"},
		{ID: "p2", Title: "City loft", Price: 80, OwnerID: "o1"},
		{ID: "p3", Title: "Cabin", Description: "near the beach", Price: 120, OwnerID: "o2"},
	} {
		p.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repos.Places.Create(ctx, p))
	}

	byOwner, err := repos.Places.List(ctx, repositories.PlaceFilter{OwnerID: "o1"})
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	maxPrice := 150.0
	matches, err := repos.Places.List(ctx, repositories.PlaceFilter{Query: "BEACH", MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p3", matches[0].ID)

	page, err := repos.Places.List(ctx, repositories.PlaceFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "p2", page[0].ID)
}

func TestReviewRepository_OnePerUserAndPlace(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	seedUser(t, repos, "host", "h@x.com")
	seedUser(t, repos, "guest", "g@x.com")
	require.NoError(t, repos.Places.Create(ctx, &entities.Place{ID: "p1", OwnerID: "host"}))

	require.NoError(t, repos.Reviews.Create(ctx, &entities.Review{ID: "r1", PlaceID: "p1", UserID: "guest", Rating: 4}))
	err := repos.Reviews.Create(ctx, &entities.Review{ID: "r2", PlaceID: "p1", UserID: "guest", Rating: 2})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))

	got, err := repos.Reviews.GetByUserAndPlace(ctx, "guest", "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
}

func TestCascades(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	seedUser(t, repos, "host", "h@x.com")
	seedUser(t, repos, "guest", "g@x.com")
	require.NoError(t, repos.Amenities.Create(ctx, &entities.Amenity{ID: "a1", Name: "WiFi"}))
	require.NoError(t, repos.Places.Create(ctx, &entities.Place{ID: "p1", OwnerID: "host", AmenityIDs: []string{"a1"}}))
	require.NoError(t, repos.Places.Create(ctx, &entities.Place{ID: "p2", OwnerID: "guest"}))
	require.NoError(t, repos.Reviews.Create(ctx, &entities.Review{ID: "r1", PlaceID: "p1", UserID: "guest"}))
	require.NoError(t, repos.Reviews.Create(ctx, &entities.Review{ID: "r2", PlaceID: "p2", UserID: "host"}))

	t.Run("amenity delete unlinks places", func(t *testing.T) {
		require.NoError(t, repos.Amenities.Delete(ctx, "a1"))
		p, err := repos.Places.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, p.AmenityIDs)
	})

	t.Run("user delete removes owned places and authored reviews", func(t *testing.T) {
		require.NoError(t, repos.Users.Delete(ctx, "host"))

		_, err := repos.Places.GetByID(ctx, "p1")
		assert.True(t, apperrors.IsNotFound(err))
		_, err = repos.Reviews.GetByID(ctx, "r1")
		assert.True(t, apperrors.IsNotFound(err))
		_, err = repos.Reviews.GetByID(ctx, "r2")
		assert.True(t, apperrors.IsNotFound(err))

		// the email is free again
		seedUser(t, repos, "host2", "h@x.com")
	})
}

func TestStore_ConcurrentUniqueWritesHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	const n = 50

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.WithTx(ctx, func(ctx context.Context, repos repositories.Repositories) error {
				if _, err := repos.Users.GetByEmail(ctx, "dup@x.com"); err == nil {
					return apperrors.NewConflictError("email", "dup@x.com")
				}
				return repos.Users.Create(ctx, &entities.User{ID: fmt.Sprintf("u%d", i), Email: "Dup@x.com"})
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict), err.Error())
	}
	assert.Equal(t, 1, wins)
}

func TestPlaceRepository_AmenityLinks(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	seedUser(t, repos, "host", "h@x.com")
	for _, id := range []string{"a1", "a2"} {
		require.NoError(t, repos.Amenities.Create(ctx, &entities.Amenity{ID: id, Name: id}))
	}
	require.NoError(t, repos.Places.Create(ctx, &entities.Place{ID: "p1", OwnerID: "host", AmenityIDs: []string{"a1"}}))

	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Places.AddAmenity(ctx, "p1", "a2", at))
	require.NoError(t, repos.Places.AddAmenity(ctx, "p1", "a1", at))

	got, err := repos.Places.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, got.AmenityIDs)
	assert.Equal(t, at, got.UpdatedAt)

	err = repos.Places.AddAmenity(ctx, "p1", "missing", at)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, repos.Places.RemoveAmenity(ctx, "p1", "a1", at))
	require.NoError(t, repos.Places.RemoveAmenity(ctx, "p1", "a1", at))
	got, err = repos.Places.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, got.AmenityIDs)

	err = repos.Places.RemoveAmenity(ctx, "nope", "a2", at)
	assert.True(t, apperrors.IsNotFound(err))
}
