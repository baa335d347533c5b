package handlers

import (
	"context"
	"net/http"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/application/services"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// AuthService defines the login operation used by the handler
type AuthService interface {
	Login(ctx context.Context, creds entities.Credentials) (*services.Session, error)
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds entities.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		respondWithError(w, r, err)
		return
	}

	session, err := h.service.Login(r.Context(), creds)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}
