package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

// TokenVerifier resolves a bearer token to the user it was issued for
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and puts the resolved user in the context
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			user, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					logger.Debug("Token expired", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				case errors.Is(err, service.ErrInvalidToken):
					logger.Debug("Token validation failed", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, "invalid authentication")
				case errors.Is(err, database.ErrUnavailable):
					logger.Error("Store unavailable during authentication", zap.Error(err))
					RespondWithError(w, http.StatusServiceUnavailable, "service unavailable")
				default:
					logger.Error("Failed to authenticate request", zap.Error(err))
					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}

			logger.Debug("User authenticated", zap.String("username", user.Username))

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the authenticated user from request context
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}
