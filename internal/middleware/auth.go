// Package middleware contains HTTP middleware for the portal.
//
// Middleware functions follow the standard Go pattern of wrapping
// http.Handler and are composed with Stack.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vasilisgee/api-doci/internal/domain"
	"github.com/vasilisgee/api-doci/internal/session"
)

// =============================================================================
// Context Keys
// =============================================================================

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// GetSession retrieves the active session from the request context.
// Returns (zero, false) when the request carries no valid, unexpired
// session (request passed through WithSession but nothing usable was found).
func GetSession(ctx context.Context) (domain.AuthSession, bool) {
	s, ok := ctx.Value(sessionContextKey).(domain.AuthSession)
	return s, ok
}

func setSession(ctx context.Context, s domain.AuthSession) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// =============================================================================
// Session Middleware
// =============================================================================

// SessionMiddleware loads and enforces the session cookie on page routes.
type SessionMiddleware struct {
	store  *session.Store
	logger *slog.Logger
}

// NewSessionMiddleware creates a SessionMiddleware backed by the store.
func NewSessionMiddleware(store *session.Store, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		store:  store,
		logger: logger,
	}
}

// WithSession attempts to load an active session from the cookie and put
// it in the request context, continuing regardless of the outcome.
//
// An invalid or expired cookie is cleared on the spot: tampered cookies
// are indistinguishable from absent ones from this point on, and expired
// ones would otherwise linger until the browser drops them.
func (m *SessionMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(m.store.CookieName()); err != nil {
			// No cookie - continue without a session
			next.ServeHTTP(w, r)
			return
		}

		s, ok := m.store.ReadActive(r, time.Now())
		if !ok {
			m.store.Clear(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(setSession(r.Context(), s)))
	})
}

// RequireSession requires an active session set by WithSession.
//
// Unauthenticated API requests get a JSON 401; page requests are
// redirected to the login surface with a reason code the login page
// turns into a toast.
//
// IMPORTANT: use AFTER WithSession in the middleware chain.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			if isAPIRequest(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"ok":false,"message":"Unauthorized."}`))
				return
			}
			http.Redirect(w, r, "/login?reason=unauthorized", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Request Helpers
// =============================================================================

// isAPIRequest determines if the request expects a JSON response.
// Used to decide between a redirect (pages) and a JSON 401 (API).
func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
// The first middleware in the list is the outermost (runs first on the
// request, last on the response).
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
