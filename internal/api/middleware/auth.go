package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/whats-cookin/internal/auth"
	"github.com/dom/whats-cookin/internal/domain"
	"github.com/dom/whats-cookin/internal/service"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

const bearerPrefix = "Bearer "

// Auth resolves the bearer token to a user and stores it in the request context.
// Every failure is answered with a generic 401.
func Auth(authService *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeDetail(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || strings.TrimSpace(token) == "" {
				writeDetail(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			user, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrUnauthenticated):
					logger.Debug("token rejected", zap.Error(err))
					writeDetail(w, http.StatusUnauthorized, "Invalid token")
				case errors.Is(err, domain.ErrUserNotFound):
					writeDetail(w, http.StatusUnauthorized, "User not found")
				default:
					logger.Error("failed to authenticate request", zap.Error(err))
					writeDetail(w, http.StatusInternalServerError, "Internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}
