package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/adapters/memory"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/application/services"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

func TestUniquenessIndex_Check(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Users.Create(ctx, &entities.User{ID: "u1", Email: "alice@example.com"}))
	require.NoError(t, repos.Amenities.Create(ctx, &entities.Amenity{ID: "a1", Name: "WiFi"}))

	index := services.NewUniquenessIndex(repos)

	tests := []struct {
		name      string
		field     services.UniqueField
		value     string
		excludeID string
		conflict  bool
	}{
		{"free email", services.UniqueEmail, "bob@example.com", "", false},
		{"taken email other case", services.UniqueEmail, "ALICE@example.com", "", true},
		{"own email", services.UniqueEmail, "alice@example.com", "u1", false},
		{"taken amenity name", services.UniqueAmenityName, "wifi", "", true},
		{"own amenity name", services.UniqueAmenityName, "WIFI", "a1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := index.Check(ctx, tt.field, tt.value, tt.excludeID)
			if !tt.conflict {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
			assert.Equal(t, string(tt.field), appErr.Field)
		})
	}
}

func TestRelationshipResolver(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Users.Create(ctx, &entities.User{ID: "u1", Email: "a@x.com"}))
	require.NoError(t, repos.Amenities.Create(ctx, &entities.Amenity{ID: "a1", Name: "WiFi"}))
	require.NoError(t, repos.Amenities.Create(ctx, &entities.Amenity{ID: "a2", Name: "Pool"}))
	require.NoError(t, repos.Places.Create(ctx, &entities.Place{ID: "p1", OwnerID: "u1"}))

	resolver := services.NewRelationshipResolver(repos)

	amenities, err := resolver.ResolveAmenities(ctx, []string{"a2", "a1"})
	require.NoError(t, err)
	require.Len(t, amenities, 2)
	assert.Equal(t, "Pool", amenities[0].Name)

	_, err = resolver.ResolveAmenities(ctx, []string{"a1", "a9"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, entities.KindAmenity, appErr.Kind)
	assert.Equal(t, "a9", appErr.ID)

	_, _, err = resolver.ResolveReviewRefs(ctx, "p1", "u404")
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, entities.KindUser, appErr.Kind)

	place, user, err := resolver.ResolveReviewRefs(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "p1", place.ID)
	assert.Equal(t, "u1", user.ID)
}
