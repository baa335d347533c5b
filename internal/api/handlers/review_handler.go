package handlers

import (
	"context"
	"net/http"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/middleware"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/repositories"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// ReviewService defines the review operations used by the handler
type ReviewService interface {
	Create(ctx context.Context, p entities.Principal, in entities.ReviewInput) (*entities.Review, error)
	Get(ctx context.Context, id string) (*entities.Review, error)
	List(ctx context.Context, filter repositories.ReviewFilter) ([]*entities.Review, error)
	Update(ctx context.Context, p entities.Principal, id string, in entities.ReviewInput) (*entities.Review, error)
	Delete(ctx context.Context, p entities.Principal, id string) error
}

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	service ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var in entities.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}
	h.create(w, r, in)
}

// CreatePlaceReview handles POST /api/v1/places/{id}/reviews; the place comes from the path
func (h *ReviewHandler) CreatePlaceReview(w http.ResponseWriter, r *http.Request) {
	var in entities.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	placeID := r.PathValue("id")
	if in.PlaceID != nil && *in.PlaceID != placeID {
		respondWithError(w, r, apperrors.NewValidationError(apperrors.FieldError{
			Field: "place_id", Message: "does not match the place in the path",
		}))
		return
	}
	in.PlaceID = &placeID
	h.create(w, r, in)
}

func (h *ReviewHandler) create(w http.ResponseWriter, r *http.Request, in entities.ReviewInput) {
	review, err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, review)
}

// ListReviews handles GET /api/v1/reviews with optional place_id and user_id filters
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	q := r.URL.Query()
	reviews, err := h.service.List(r.Context(), repositories.ReviewFilter{
		PlaceID: q.Get("place_id"),
		UserID:  q.Get("user_id"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reviews)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, review)
}

// UpdateReview handles PUT /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var in entities.ReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	review, err := h.service.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "review "+id+" deleted")
}
