package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/threadview-dev/threadview/internal/domain"
	"github.com/threadview-dev/threadview/internal/identity"
)

// Key to store the user id in the request context
type key int

const userIdKey key = 0

// Auth holds dependencies for the identity middleware.
type Auth struct {
	identity *identity.Service
}

func NewAuth(identity *identity.Service) *Auth {
	return &Auth{identity: identity}
}

// NeedAuth requires a valid bearer token. An unauthenticated mutating
// request answers 401, the login-prompt side channel; the action is
// deferred, never queued, and the user re-invokes it after signing in.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userId, err := a.extractUser(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userIdKey, userId)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth populates the user id when a valid token is present but
// lets anonymous reads through.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userId, err := a.extractUser(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIdKey, userId))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) extractUser(r *http.Request) (domain.UserId, error) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		// fall back to cookie for browser clients
		if cookie, err := r.Cookie("token"); err == nil {
			token = cookie.Value
		}
	}
	return a.identity.UserFromToken(token)
}

// GetUserFromContext returns the authenticated user id, or false for
// anonymous requests.
func GetUserFromContext(r *http.Request) (domain.UserId, bool) {
	userId, ok := r.Context().Value(userIdKey).(domain.UserId)
	return userId, ok
}
