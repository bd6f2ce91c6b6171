package auth

import (
	"context"
	"net/http"
)

// contextKey is package-private so no other package can read or shadow
// the values stored under it.
type contextKey string

const userIDKey contextKey = "userID"

// SessionReader resolves the logged-in user from a request.
// *session.Store satisfies it.
type SessionReader interface {
	UserID(r *http.Request) (int64, bool)
}

// RequireAuth rejects requests without a valid session with 401 and puts
// the user ID in the context for everything downstream.
//
// Chi applies middleware outside-in: req → M1 → M2 → handler → M2 → M1.
func RequireAuth(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := sessions.UserID(r)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"Authentication required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user set by RequireAuth.
//
//	userID, ok := auth.UserIDFromContext(r.Context())
//	if !ok {
//	    // route is not behind RequireAuth
//	}
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}
