// Package handler contains the portal's HTTP handlers.
//
// This file implements the session protocol: login, logout, and the
// activity touch that keeps an active browser's session alive.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vasilisgee/api-doci/internal/authapi"
	"github.com/vasilisgee/api-doci/internal/domain"
	"github.com/vasilisgee/api-doci/internal/metrics"
	"github.com/vasilisgee/api-doci/internal/session"
)

// AuthGateway is the identity provider surface the handlers depend on.
// Satisfied by *authapi.Client; an interface so tests can stub upstream
// behavior without a network.
type AuthGateway interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
	LoadProfile(ctx context.Context, params authapi.ProfileParams) (domain.AuthenticatedUser, error)
	Revoke(ctx context.Context, params authapi.ProfileParams)
}

// AuthHandler handles the session protocol requests.
//
// Routes handled:
// - POST /api/auth/login    -> Login
// - POST /api/auth/logout   -> Logout
// - POST /api/auth/activity -> Activity
type AuthHandler struct {
	gateway         AuthGateway
	store           *session.Store
	logger          *slog.Logger
	applicationName string

	// demoSessionID, when configured, pins the session id for demo
	// deployments; otherwise each login generates a fresh one.
	demoSessionID string
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(gateway AuthGateway, store *session.Store, logger *slog.Logger, applicationName, demoSessionID string) *AuthHandler {
	return &AuthHandler{
		gateway:         gateway,
		store:           store,
		logger:          logger,
		applicationName: applicationName,
		demoSessionID:   demoSessionID,
	}
}

// RegisterRoutes registers the session protocol routes on the mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("POST /api/auth/activity", h.Activity)
}

// =============================================================================
// POST /api/auth/login
// =============================================================================

// loginRequest is the login form payload.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates against the identity provider and establishes the
// session cookie.
//
// Flow:
// 1. Validate the credentials payload; blank fields never reach upstream.
// 2. Authenticate against the provider's login endpoint.
// 3. Load the user profile, best-effort: a failure falls back to a
//    locally synthesized minimal profile so login never blocks on it.
// 4. Write the encrypted session cookie and return the profile.
//
// Upstream failures map to: 401 with a fixed message for rejected
// credentials (no hint which field was wrong), 502 for provider 5xx,
// 400 otherwise.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		metrics.LoginsTotal.WithLabelValues("bad_request").Inc()
		writeFail(w, http.StatusBadRequest, "Invalid login payload.")
		return
	}

	username := strings.TrimSpace(body.Username)
	password := body.Password
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("bad_request").Inc()
		writeFail(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	token, err := h.gateway.Authenticate(r.Context(), username, password)
	if err != nil {
		h.writeLoginError(w, err, username)
		return
	}

	sessionID := h.demoSessionID
	if sessionID == "" {
		sessionID = strings.ToUpper(uuid.NewString())
	}

	user, err := h.gateway.LoadProfile(r.Context(), authapi.ProfileParams{
		Token:           token,
		SessionID:       sessionID,
		ApplicationName: h.applicationName,
		Username:        username,
	})
	if err != nil {
		// Best-effort: the portal never blocks login on the profile call.
		h.logger.Info("profile lookup failed, using synthesized profile",
			"username", username, "error", err)
		user = synthesizedProfile(username)
	}

	authSession := domain.AuthSession{
		Token:           token,
		SessionID:       sessionID,
		ApplicationName: h.applicationName,
		Username:        username,
		User:            user,
	}.Touched(time.Now())

	if err := h.store.Write(w, authSession); err != nil {
		h.logger.Error("failed to encode session cookie", "error", err)
		metrics.LoginsTotal.WithLabelValues("internal_error").Inc()
		writeFail(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	h.logger.Info("user logged in", "username", username, "session_id", sessionID)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	writeOKUser(w, user)
}

// translateLoginError lifts an authentication failure into the domain
// error taxonomy. The upstream HTTP status collapses to a code here;
// everything downstream works off the code alone.
func translateLoginError(err error) *domain.Error {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Unauthorized():
			// Generic message: do not reveal which field was wrong.
			return domain.Unauthorized("auth.login", "Invalid username or password.")
		case apiErr.StatusCode >= 500:
			return domain.Upstream(err, "auth.login", apiErr.Message)
		default:
			return domain.Invalid("auth.login", apiErr.Message)
		}
	}
	return domain.Internal(err, "auth.login", "Login failed. Please try again.")
}

// writeLoginError maps an authentication failure to the response contract.
func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error, username string) {
	derr := translateLoginError(err)

	switch derr.Code {
	case domain.EUNAUTHORIZED:
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		writeFail(w, http.StatusUnauthorized, derr.Message)
	case domain.EUPSTREAM:
		h.logger.Warn("identity provider unavailable",
			"op", domain.ErrorOp(derr), "username", username, "error", err)
		metrics.LoginsTotal.WithLabelValues("upstream_error").Inc()
		writeFail(w, http.StatusBadGateway, derr.Message)
	case domain.EINVALID:
		metrics.LoginsTotal.WithLabelValues("upstream_error").Inc()
		writeFail(w, http.StatusBadRequest, derr.Message)
	default:
		h.logger.Error("login failed",
			"op", domain.ErrorOp(derr), "username", username, "error", err)
		metrics.LoginsTotal.WithLabelValues("internal_error").Inc()
		writeFail(w, http.StatusInternalServerError, derr.Message)
	}
}

// synthesizedProfile builds the minimal local profile used when the
// provider's profile endpoint is unreachable or returns garbage.
func synthesizedProfile(username string) domain.AuthenticatedUser {
	email := "No email provided"
	if strings.Contains(username, "@") {
		email = username
	}
	return domain.AuthenticatedUser{
		Name:     username,
		Email:    email,
		Username: username,
	}
}

// =============================================================================
// POST /api/auth/logout
// =============================================================================

// Logout tears down the session. The upstream revocation is best-effort;
// the local cookie is always cleared and the response is always 200, so
// logout is idempotent from the browser's point of view.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if s, ok := h.store.Read(r); ok && !h.store.IsExpired(s, now) {
		h.gateway.Revoke(r.Context(), authapi.ProfileParams{
			Token:           s.Token,
			SessionID:       s.SessionID,
			ApplicationName: s.ApplicationName,
		})
	}

	h.store.Clear(w)
	metrics.LogoutsTotal.Inc()
	writeOK(w)
}

// =============================================================================
// POST /api/auth/activity
// =============================================================================

// Activity is the touch ping. An active session gets a refreshed cookie;
// an absent, invalid, or expired one gets 401 with the cookie cleared so
// the client guard knows to force logout.
func (h *AuthHandler) Activity(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	s, ok := h.store.Read(r)
	if !ok || h.store.IsExpired(s, now) {
		if ok {
			metrics.SessionExpiriesTotal.Inc()
		}
		metrics.SessionTouchesTotal.WithLabelValues("expired").Inc()
		h.store.Clear(w)
		writeFail(w, http.StatusUnauthorized, "Session expired.")
		return
	}

	if err := h.store.Write(w, h.store.Touch(s, now)); err != nil {
		h.logger.Error("failed to refresh session cookie", "error", err)
		writeFail(w, http.StatusInternalServerError, "Could not refresh session.")
		return
	}

	metrics.SessionTouchesTotal.WithLabelValues("refreshed").Inc()
	writeOK(w)
}
