package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	cases := map[apperrors.ErrorType]int{
		apperrors.ErrorTypeValidation:   http.StatusBadRequest,
		apperrors.ErrorTypeUnauthorized: http.StatusUnauthorized,
		apperrors.ErrorTypeForbidden:    http.StatusForbidden,
		apperrors.ErrorTypeNotFound:     http.StatusNotFound,
		apperrors.ErrorTypeConflict:     http.StatusConflict,
		apperrors.ErrorTypeInvariant:    http.StatusUnprocessableEntity,
		apperrors.ErrorTypeExternal:     http.StatusBadGateway,
		apperrors.ErrorTypeInternal:     http.StatusInternalServerError,
	}
	for errType, status := range cases {
		assert.Equal(t, status, StatusFor(errType), errType)
	}
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	respondWithError(w, r, fmt.Errorf("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestRespondWithError_NotFoundPayload(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	respondWithError(w, r, fmt.Errorf("loading: %w", apperrors.NewNotFoundError("place", "p-9")))

	require.Equal(t, http.StatusNotFound, w.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "place", body.Kind)
	assert.Equal(t, "p-9", body.ID)
}

func TestDecodeJSON(t *testing.T) {
	t.Run("keeps number literals", func(t *testing.T) {
		var dst struct {
			Rating json.Number `json:"rating"`
		}
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"rating":4.0}`))
		require.NoError(t, decodeJSON(httptest.NewRecorder(), r, &dst))
		assert.Equal(t, "4.0", dst.Rating.String())
	})

	t.Run("empty body", func(t *testing.T) {
		var dst map[string]interface{}
		r := httptest.NewRequest("POST", "/", strings.NewReader(""))
		assert.NoError(t, decodeJSON(httptest.NewRecorder(), r, &dst))
	})

	t.Run("malformed", func(t *testing.T) {
		var dst map[string]interface{}
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"a":`))
		err := decodeJSON(httptest.NewRecorder(), r, &dst)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestQueryParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=5&offset=x&min_price=NaN&details=yes", nil)

	_, _, err := pageParams(r)
	assert.Error(t, err)

	_, err = floatParam(r, "min_price")
	assert.Error(t, err)

	_, err = boolParam(r, "details")
	assert.Error(t, err)

	limit, err := intParam(r, "limit")
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
}
