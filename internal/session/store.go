package session

import (
	"net/http"
	"time"

	"github.com/vasilisgee/api-doci/internal/domain"
)

// CookiePath ensures the session cookie is sent with all requests.
const CookiePath = "/"

// Store binds the session codec to the HTTP cookie protocol and derives
// expiry decisions from the decoded record.
//
// Store methods never return errors for malformed or tampered cookies;
// those degrade to "no session" so handlers treat them exactly like an
// absent cookie.
type Store struct {
	codec      *Codec
	cookieName string
	inactivity time.Duration
	isSecure   bool // Whether to set Secure flag on cookies (true in production)
}

// NewStore creates a session store.
//
// Parameters:
// - codec: the token codec
// - cookieName: session cookie name
// - inactivity: inactivity window after which an untouched session expires
// - isSecure: set to true in production to enable the Secure cookie flag
func NewStore(codec *Codec, cookieName string, inactivity time.Duration, isSecure bool) *Store {
	return &Store{
		codec:      codec,
		cookieName: cookieName,
		inactivity: inactivity,
		isSecure:   isSecure,
	}
}

// CookieName returns the configured session cookie name.
func (s *Store) CookieName() string {
	return s.cookieName
}

// InactivityWindow returns the configured inactivity window.
func (s *Store) InactivityWindow() time.Duration {
	return s.inactivity
}

// Read decodes the session cookie from the request.
// Returns (zero, false) when the cookie is absent, malformed, or tampered.
// Expiry is NOT checked here; use ReadActive for that.
func (s *Store) Read(r *http.Request) (domain.AuthSession, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return domain.AuthSession{}, false
	}
	return s.codec.Decode(cookie.Value)
}

// ReadActive decodes the session cookie and additionally rejects expired
// sessions. Returns (zero, false) for absent, invalid, or expired cookies.
func (s *Store) ReadActive(r *http.Request, now time.Time) (domain.AuthSession, bool) {
	session, ok := s.Read(r)
	if !ok || s.IsExpired(session, now) {
		return domain.AuthSession{}, false
	}
	return session, true
}

// IsExpired reports whether the session's inactivity window has elapsed.
// Pure function of the record and the supplied wall-clock time.
func (s *Store) IsExpired(session domain.AuthSession, now time.Time) bool {
	return now.Sub(session.LastActivity()) > s.inactivity
}

// Write encrypts the session and sets it as the response cookie.
//
// Cookie settings:
// - HttpOnly: true - not readable from page scripts
// - Secure: configurable - true in production (HTTPS only)
// - SameSite: Lax - blocks cross-site POSTs while allowing navigation
// - Path: / - sent with all requests
// - MaxAge: the inactivity window, so the browser drops the cookie no
//   later than the server would consider it expired
func (s *Store) Write(w http.ResponseWriter, session domain.AuthSession) error {
	value, err := s.codec.Encode(session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     CookiePath,
		MaxAge:   int((s.inactivity + time.Second - 1) / time.Second),
		HttpOnly: true,
		Secure:   s.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear removes the session cookie from the client by overwriting it with
// an empty value and an immediate expiry.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     CookiePath,
		MaxAge:   -1, // Delete immediately
		HttpOnly: true,
		Secure:   s.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Touch returns a copy of the session with its activity timestamp set to
// now. Callers are responsible for writing the refreshed record back via
// Write; the input record is never mutated.
func (s *Store) Touch(session domain.AuthSession, now time.Time) domain.AuthSession {
	return session.Touched(now)
}
