package handlers

import (
	"context"
	"net/http"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/middleware"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// AmenityService defines the amenity operations used by the handler
type AmenityService interface {
	Create(ctx context.Context, p entities.Principal, in entities.AmenityInput) (*entities.Amenity, error)
	Get(ctx context.Context, id string) (*entities.Amenity, error)
	List(ctx context.Context, limit, offset int) ([]*entities.Amenity, error)
	Update(ctx context.Context, p entities.Principal, id string, in entities.AmenityInput) (*entities.Amenity, error)
	Delete(ctx context.Context, p entities.Principal, id string) error
}

// AmenityHandler handles amenity-related HTTP requests
type AmenityHandler struct {
	service AmenityService
}

// NewAmenityHandler creates a new amenity handler
func NewAmenityHandler(service AmenityService) *AmenityHandler {
	return &AmenityHandler{service: service}
}

// CreateAmenity handles POST /api/v1/amenities
func (h *AmenityHandler) CreateAmenity(w http.ResponseWriter, r *http.Request) {
	var in entities.AmenityInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	amenity, err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, amenity)
}

// ListAmenities handles GET /api/v1/amenities
func (h *AmenityHandler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	amenities, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, amenities)
}

// GetAmenity handles GET /api/v1/amenities/{id}
func (h *AmenityHandler) GetAmenity(w http.ResponseWriter, r *http.Request) {
	amenity, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, amenity)
}

// UpdateAmenity handles PUT /api/v1/amenities/{id}
func (h *AmenityHandler) UpdateAmenity(w http.ResponseWriter, r *http.Request) {
	var in entities.AmenityInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	amenity, err := h.service.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, amenity)
}

// DeleteAmenity handles DELETE /api/v1/amenities/{id}
func (h *AmenityHandler) DeleteAmenity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "amenity "+id+" deleted")
}
