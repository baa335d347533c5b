package providers

import (
	"time"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

// PasswordHasher hashes and verifies password credentials
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues and parses access tokens carrying a principal
type TokenIssuer interface {
	Issue(user *entities.User) (string, time.Time, error)
	Parse(token string) (entities.Principal, error)
}
