// Package authapi is the client for the remote identity provider the
// portal delegates credential verification to.
//
// The provider exposes three POST endpoints (login, GetLoggedUser,
// LogoutUser) whose response shapes vary between deployments; this
// package normalizes them into the portal's user model and a single
// typed error carrying the upstream HTTP status.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vasilisgee/api-doci/internal/domain"
)

// =============================================================================
// Error Type
// =============================================================================

// APIError is the single error type surfaced by the client. StatusCode is
// the upstream HTTP status; handlers map it to a response code exactly
// once at the protocol boundary.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return e.Message
}

// Unauthorized reports whether the upstream rejected the credentials.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// =============================================================================
// Client
// =============================================================================

// Client calls the identity provider's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a provider client for the given base URL.
// The base URL may be empty; calls then fail with a 500-status APIError,
// matching a misconfigured deployment rather than panicking at startup.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// ProfileParams identifies the logged-in user for profile and logout calls.
type ProfileParams struct {
	Token           string
	SessionID       string
	ApplicationName string
	Username        string
}

// Authenticate verifies credentials against the provider's login endpoint
// and returns the opaque provider token.
//
// A 2xx response without a usable token is treated as an upstream failure
// with status 502: the provider claimed success but the contract is broken.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	payload, err := c.post(ctx, "login", map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	token := extractToken(payload)
	if token == "" {
		return "", &APIError{
			Message:    "Login succeeded but no token was returned.",
			StatusCode: http.StatusBadGateway,
		}
	}
	return token, nil
}

// LoadProfile fetches the logged-in user's profile details.
//
// The caller treats this as best-effort: login must still succeed with a
// synthesized profile when this returns an error, so profile failures
// never block authentication.
func (c *Client) LoadProfile(ctx context.Context, params ProfileParams) (domain.AuthenticatedUser, error) {
	payload, err := c.post(ctx, "GetLoggedUser", map[string]any{
		"token":           params.Token,
		"sessionId":       params.SessionID,
		"applicationName": params.ApplicationName,
	})
	if err != nil {
		return domain.AuthenticatedUser{}, err
	}

	userPayload := extractUserPayload(payload)
	return domain.AuthenticatedUser{
		Name:     displayName(userPayload, params.Username),
		Email:    emailAddress(userPayload, params.Username),
		Username: params.Username,
	}, nil
}

// Revoke invalidates the provider-side session. All upstream failures are
// swallowed: the user-visible contract is "logged out of this browser",
// so the local cookie is always cleared regardless of this call's outcome.
func (c *Client) Revoke(ctx context.Context, params ProfileParams) {
	_, err := c.post(ctx, "LogoutUser", map[string]any{
		"token":           params.Token,
		"sessionId":       params.SessionID,
		"applicationName": params.ApplicationName,
	})
	if err != nil {
		c.logger.Debug("upstream logout failed", "error", err)
	}
}

// =============================================================================
// Transport
// =============================================================================

// post issues one JSON POST to the provider and decodes the response body.
//
// Bodies are decoded leniently: JSON when possible, the raw text
// otherwise, because error responses are not reliably JSON. Non-2xx
// responses become an APIError with the best available message.
func (c *Client) post(ctx context.Context, path string, body map[string]any) (any, error) {
	if c.baseURL == "" {
		return nil, &APIError{
			Message:    "Auth API base URL is not configured.",
			StatusCode: http.StatusInternalServerError,
		}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{
			Message:    "Failed to encode auth request.",
			StatusCode: http.StatusInternalServerError,
		}
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, &APIError{
			Message:    "Failed to build auth request.",
			StatusCode: http.StatusInternalServerError,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{
			Message:    "Could not reach the authentication service.",
			StatusCode: http.StatusBadGateway,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{
			Message:    "Failed to read auth response.",
			StatusCode: http.StatusBadGateway,
		}
	}

	var payload any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			payload = string(raw)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := extractMessage(payload)
		if message == "" {
			message = fmt.Sprintf("Auth API request failed with status %d.", resp.StatusCode)
		}
		return nil, &APIError{Message: message, StatusCode: resp.StatusCode}
	}

	return payload, nil
}
