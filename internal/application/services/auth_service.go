package services

import (
	"context"
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/validation"
	apperrors "github.com/JCCallisto/holbertonschool-hbnb/pkg/errors"
)

// AuthService verifies credentials and issues access tokens
type AuthService struct {
	*core
}

// Session is the result of a successful login
type Session struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *entities.User `json:"user"`
}

// Login checks email and password. Unknown emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, creds entities.Credentials) (*Session, error) {
	if err := validation.Credentials(&creds); err != nil {
		return nil, err
	}

	user, err := s.store.Repositories().Users.GetByEmail(ctx, creds.Email)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, creds.Password); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}
	return &Session{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to a principal
func (s *AuthService) Authenticate(token string) (entities.Principal, error) {
	p, err := s.tokens.Parse(token)
	if err != nil {
		return entities.Anonymous(), apperrors.NewUnauthorizedError("invalid or expired token")
	}
	return p, nil
}
