package domain

import "time"

// AuthenticatedUser holds the profile details shown in the portal top bar.
// It is derived once at login time from the identity provider's response
// (or synthesized locally when the profile lookup fails) and never changes
// for the life of the session.
type AuthenticatedUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// AuthSession is the complete server-side view of a logged-in browser.
//
// The portal keeps no session table: the encrypted cookie produced from
// this record is the only persisted form of session state, so everything
// needed to validate a request must be derivable from the record plus the
// current time.
//
// Invariants:
//   - Token is the opaque provider-issued credential; it is never parsed.
//   - SessionID is fixed at login and never regenerated.
//   - LastActivityAt only moves forward; it is the sole basis for expiry.
type AuthSession struct {
	Token           string            `json:"token"`
	SessionID       string            `json:"sessionId"`
	ApplicationName string            `json:"applicationName"`
	Username        string            `json:"username"`
	User            AuthenticatedUser `json:"user"`

	// LastActivityAt is Unix milliseconds, matching the cookie wire format.
	LastActivityAt int64 `json:"lastActivityAt"`
}

// Touched returns a copy of the session with LastActivityAt set to now.
// Sessions are immutable; refreshing activity always produces a new record.
func (s AuthSession) Touched(now time.Time) AuthSession {
	s.LastActivityAt = now.UnixMilli()
	return s
}

// LastActivity returns the last activity timestamp as a time.Time.
func (s AuthSession) LastActivity() time.Time {
	return time.UnixMilli(s.LastActivityAt)
}
