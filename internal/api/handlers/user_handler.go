package handlers

import (
	"context"
	"net/http"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/api/middleware"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// UserService defines the user operations used by the handler
type UserService interface {
	Create(ctx context.Context, p entities.Principal, in entities.UserInput) (*entities.User, error)
	Get(ctx context.Context, id string) (*entities.User, error)
	List(ctx context.Context, limit, offset int) ([]*entities.User, error)
	Update(ctx context.Context, p entities.Principal, id string, in entities.UserInput) (*entities.User, error)
	Delete(ctx context.Context, p entities.Principal, id string) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in entities.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	user, err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	users, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /api/v1/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in entities.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, r, err)
		return
	}

	user, err := h.service.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("id"), in)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "user "+id+" deleted")
}
