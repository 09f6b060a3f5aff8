package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/clinichq/admin-api/internal/pkg/httputil"
)

type contextKey string

const (
	roleKey    contextKey = "auth_role"
	sessionKey contextKey = "auth_session"
)

// RoleFromContext returns the role the middleware resolved for this request.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

// SessionFromContext returns the dashboard session, or nil for token callers.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// BearerToken extracts the bearer token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Require authenticates a request by session cookie or bearer service token
// and stores the resolved role in the request context. Unauthenticated
// requests get 401.
func (m *Manager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := m.GetSession(r); session != nil {
			ctx := context.WithValue(r.Context(), roleKey, session.Role)
			ctx = context.WithValue(ctx, sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if role, ok := m.ResolveToken(BearerToken(r)); ok {
			ctx := context.WithValue(r.Context(), roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		httputil.Unauthorized(w, "authentication required")
	})
}

// RequireRole gates a route on a specific role resolved by Require.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				httputil.Forbidden(w, "insufficient privileges")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
