package handlers

import (
	"context"
	"net/http"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/middleware"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
)

// PlaceService defines the place operations used by the handler
type PlaceService interface {
	Create(ctx context.Context, p entities.Principal, in entities.PlaceInput) (*entities.Place, error)
	List(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.Place, error)
	ListDetails(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.PlaceDetails, error)
	Search(ctx context.Context, filter repositories.PlaceFilter) ([]*entities.Place, error)
	Details(ctx context.Context, id string) (*entities.PlaceDetails, error)
	Reviews(ctx context.Context, placeID string) ([]*entities.Review, error)
	Amenities(ctx context.Context, placeID string) ([]*entities.Amenity, error)
	Update(ctx context.Context, p entities.Principal, id string, in entities.PlaceInput) (*entities.Place, error)
	AddAmenity(ctx context.Context, p entities.Principal, placeID string, in entities.PlaceAmenityInput) (*entities.Place, error)
	RemoveAmenity(ctx context.Context, p entities.Principal, placeID, amenityID string) (*entities.Place, error)
	Delete(ctx context.Context, p entities.Principal, id string) error
}

// PlaceHandler handles place-related HTTP requests
type PlaceHandler struct {
	service PlaceService
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(service PlaceService) *PlaceHandler {
	return &PlaceHandler{service: service}
}

// CreatePlace handles POST /api/v1/places
func (h *PlaceHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var in entities.PlaceInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	place, err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, place)
}

// ListPlaces handles GET /api/v1/places. ?details=true expands every place.
func (h *PlaceHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	filter, err := placeFilter(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	details, err := boolParam(r, "details")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if details {
		places, err := h.service.ListDetails(r.Context(), filter)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, places)
		return
	}

	places, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, places)
}

// SearchPlaces handles GET /api/v1/places/search
func (h *PlaceHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	filter, err := placeFilter(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	places, err := h.service.Search(r.Context(), filter)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"places": places,
		"count":  len(places),
	})
}

// GetPlace handles GET /api/v1/places/{id}
func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.Details(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, details)
}

// GetPlaceReviews handles GET /api/v1/places/{id}/reviews
func (h *PlaceHandler) GetPlaceReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.Reviews(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reviews)
}

// GetPlaceAmenities handles GET /api/v1/places/{id}/amenities
func (h *PlaceHandler) GetPlaceAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := h.service.Amenities(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, amenities)
}

// UpdatePlace handles PUT /api/v1/places/{id}
func (h *PlaceHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	var in entities.PlaceInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	place, err := h.service.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, place)
}

// AddPlaceAmenity handles POST /api/v1/places/{id}/amenities
func (h *PlaceHandler) AddPlaceAmenity(w http.ResponseWriter, r *http.Request) {
	var in entities.PlaceAmenityInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	place, err := h.service.AddAmenity(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, place)
}

// RemovePlaceAmenity handles DELETE /api/v1/places/{id}/amenities/{amenity_id}
func (h *PlaceHandler) RemovePlaceAmenity(w http.ResponseWriter, r *http.Request) {
	place, err := h.service.RemoveAmenity(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("id"), r.PathValue("amenity_id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, place)
}

// DeletePlace handles DELETE /api/v1/places/{id}
func (h *PlaceHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "place "+id+" deleted")
}

func placeFilter(r *http.Request) (repositories.PlaceFilter, error) {
	limit, offset, err := pageParams(r)
	if err != nil {
		return repositories.PlaceFilter{}, err
	}
	minPrice, err := floatParam(r, "min_price")
	if err != nil {
		return repositories.PlaceFilter{}, err
	}
	maxPrice, err := floatParam(r, "max_price")
	if err != nil {
		return repositories.PlaceFilter{}, err
	}

	q := r.URL.Query()
	return repositories.PlaceFilter{
		OwnerID:  q.Get("owner_id"),
		Query:    q.Get("q"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Limit:    limit,
		Offset:   offset,
	}, nil
}
