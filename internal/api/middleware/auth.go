package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JCCallisto/holbertonschool-hbnb/internal/domain/entities"
)

type principalKey struct{}

// Authenticator resolves a bearer token to a principal
type Authenticator interface {
	Authenticate(token string) (entities.Principal, error)
}

// WithPrincipal stores the request principal in ctx
func WithPrincipal(ctx context.Context, p entities.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the request principal, anonymous when none was set
func PrincipalFromContext(ctx context.Context) entities.Principal {
	if p, ok := ctx.Value(principalKey{}).(entities.Principal); ok {
		return p
	}
	return entities.Anonymous()
}

// AuthMiddleware reads an optional "Authorization: Bearer" token. Requests
// without one run as anonymous; a token that does not verify is rejected.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w, "malformed authorization header")
				return
			}

			principal, err := auth.Authenticate(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="hbnb"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":  message,
		"type":   "UNAUTHORIZED",
		"reason": "unauthenticated",
	})
}
