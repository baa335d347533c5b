package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

func str(s string) *string { return &s }

func num(s string) *json.Number {
	n := json.Number(s)
	return &n
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	out := make(map[string]string, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestUser_Create(t *testing.T) {
	t.Run("valid input is normalized", func(t *testing.T) {
		in := entities.UserInput{
			Email:     str("  Alice@Example.COM "),
			FirstName: str(" Alice "),
			LastName:  str("Liddell"),
			Password:  str("secret"),
		}
		require.NoError(t, User(&in, Create))
		assert.Equal(t, "alice@example.com", *in.Email)
		assert.Equal(t, "Alice", *in.FirstName)
	})

	t.Run("collects every violation", func(t *testing.T) {
		in := entities.UserInput{
			Email:     str("not-an-email"),
			FirstName: str("   "),
			LastName:  str(strings.Repeat("x", MaxNameLength+1)),
		}
		fields := fieldsOf(t, User(&in, Create))
		assert.Len(t, fields, 4)
		assert.Contains(t, fields, "email")
		assert.Equal(t, "must not be empty", fields["first_name"])
		assert.Contains(t, fields, "last_name")
		assert.Equal(t, "is required", fields["password"])
	})

	t.Run("length counts code points", func(t *testing.T) {
		in := entities.UserInput{
			Email:     str("e@x.com"),
			FirstName: str(strings.Repeat("é", MaxNameLength)),
			LastName:  str("L"),
			Password:  str("p"),
		}
		assert.NoError(t, User(&in, Create))
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		in := entities.UserInput{
			Email:     str("e@x.com"),
			FirstName: str("F"),
			LastName:  str("L"),
			Password:  str(strings.Repeat("p", MaxPasswordBytes+1)),
		}
		assert.Contains(t, fieldsOf(t, User(&in, Create)), "password")
	})
}

func TestUser_UpdateOnlyChecksPresentFields(t *testing.T) {
	assert.NoError(t, User(&entities.UserInput{}, Update))

	in := entities.UserInput{LastName: str("")}
	fields := fieldsOf(t, User(&in, Update))
	assert.Len(t, fields, 1)
	assert.Contains(t, fields, "last_name")
}

func TestAmenity(t *testing.T) {
	in := entities.AmenityInput{Name: str(" WiFi "), Description: str("")}
	require.NoError(t, Amenity(&in, Create))
	assert.Equal(t, "WiFi", *in.Name)

	fields := fieldsOf(t, Amenity(&entities.AmenityInput{
		Description: str(strings.Repeat("d", MaxAmenityDescriptionLength+1)),
	}, Create))
	assert.Equal(t, "is required", fields["name"])
	assert.Contains(t, fields, "description")
}

func TestPlace(t *testing.T) {
	valid := func() entities.PlaceInput {
		return entities.PlaceInput{
			Title:     str("Cozy loft"),
			Price:     num("120.5"),
			Latitude:  num("90"),
			Longitude: num("-180"),
		}
	}

	t.Run("inclusive coordinate bounds", func(t *testing.T) {
		in := valid()
		v, err := Place(&in, Create)
		require.NoError(t, err)
		assert.Equal(t, 120.5, *v.Price)
		assert.Equal(t, 90.0, *v.Latitude)
		assert.Equal(t, -180.0, *v.Longitude)
	})

	t.Run("out of range and non numeric", func(t *testing.T) {
		in := valid()
		in.Price = num("0")
		in.Latitude = num("90.0001")
		in.Longitude = num("east")
		_, err := Place(&in, Create)
		fields := fieldsOf(t, err)
		assert.Equal(t, "must be greater than 0", fields["price"])
		assert.Contains(t, fields, "latitude")
		assert.Equal(t, "must be a number", fields["longitude"])
	})

	t.Run("amenity ids collapse duplicates", func(t *testing.T) {
		in := valid()
		in.AmenityIDs = &[]string{"a1", " a2 ", "a1"}
		v, err := Place(&in, Create)
		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "a2"}, *v.AmenityIDs)
	})

	t.Run("empty patch is valid", func(t *testing.T) {
		v, err := Place(&entities.PlaceInput{}, Update)
		require.NoError(t, err)
		assert.Nil(t, v.Title)
		assert.Nil(t, v.Price)
	})
}

func TestReviewContent_Rating(t *testing.T) {
	tests := []struct {
		rating  string
		wantErr string
	}{
		{"1", ""},
		{"5", ""},
		{"0", "must be between 1 and 5"},
		{"6", "must be between 1 and 5"},
		{"4.5", "must be an integer"},
		{"4.0", "must be an integer"},
		{"great", "must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			in := entities.ReviewInput{Text: str("ok"), Rating: num(tt.rating)}
			v, err := ReviewContent(&in, Create)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, v.Rating)
				return
			}
			assert.Equal(t, tt.wantErr, fieldsOf(t, err)["rating"])
		})
	}
}

func TestReviewRefs(t *testing.T) {
	fields := fieldsOf(t, ReviewRefs(&entities.ReviewInput{UserID: str(" ")}))
	assert.Equal(t, "is required", fields["place_id"])
	assert.Equal(t, "must not be empty", fields["user_id"])

	assert.NoError(t, ReviewRefs(&entities.ReviewInput{PlaceID: str("p1")}))
}

func TestReviewUpdate_ReferencesAreImmutable(t *testing.T) {
	_, err := ReviewUpdate(&entities.ReviewInput{PlaceID: str("p2"), Rating: num("9")})
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "place_id")
	assert.Contains(t, fields, "rating")
}

func TestCredentials(t *testing.T) {
	in := entities.Credentials{Email: " A@B.com "}
	fields := fieldsOf(t, Credentials(&in))
	assert.Equal(t, "a@b.com", in.Email)
	assert.Contains(t, fields, "password")
}
