package auth

import (
	"context"
	"net/http"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// ContextKeyAdmin is the context key for the signed-in admin
	ContextKeyAdmin ContextKey = "admin"
)

// Admin is the identity of a verified admin session.
type Admin struct {
	Username string
}

// WithAdmin returns a context carrying admin.
func WithAdmin(ctx context.Context, admin Admin) context.Context {
	return context.WithValue(ctx, ContextKeyAdmin, admin)
}

// AdminFromContext returns the admin of the request, if any.
func AdminFromContext(ctx context.Context) (Admin, bool) {
	admin, ok := ctx.Value(ContextKeyAdmin).(Admin)
	return admin, ok
}

// LoadAdmin attaches the admin of a valid session cookie to the request
// context. Requests without one pass through unchanged.
func LoadAdmin(sessions *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := sessions.FromRequest(r); err == nil {
				r = r.WithContext(WithAdmin(r.Context(), Admin{Username: claims.Username}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests without a verified admin session by calling
// deny. It reads the admin from the context when LoadAdmin already ran and
// from the cookie otherwise.
func RequireAdmin(sessions *SessionManager, deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := AdminFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sessions.FromRequest(r)
			if err != nil {
				deny(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), Admin{Username: claims.Username})))
		})
	}
}
