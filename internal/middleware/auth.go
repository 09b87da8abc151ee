package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"coursehub/internal/util"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Injected key type to avoid context collisions
type contextKey string

const identityContextKey = contextKey("identity")

// ErrUnauthenticated is returned when the request carries no bearer token.
var ErrUnauthenticated = errors.New("missing bearer token")

// Identity is the verified caller of an authenticated request.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrUnauthenticated
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrUnauthenticated
	}
	return strings.TrimSpace(parts[1]), nil
}

// Authenticate verifies the request's bearer token against keyMaterial and
// returns the caller identity. Errors are ErrUnauthenticated or wrap
// util.ErrInvalidToken.
func Authenticate(r *http.Request, keyMaterial string) (Identity, error) {
	token, err := BearerToken(r)
	if err != nil {
		return Identity{}, err
	}
	claims, err := util.ValidateJWT(token, keyMaterial)
	if err != nil {
		return Identity{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: userID, Email: claims.Email}, nil
}

func AuthMiddleware(jwtSecret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := Authenticate(r, jwtSecret)
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) {
					logger.Debug().Str("path", r.URL.Path).Msg("Authorization header missing")
					writeError(w, http.StatusUnauthorized, "Authorization header missing")
					return
				}
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid token")
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || identity.UserID == uuid.Nil {
		return Identity{}, false
	}
	return identity, true
}
