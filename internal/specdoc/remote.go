package specdoc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteSource fetches the document from an http(s) URL on every load, so
// upstream edits show up without a portal restart.
type RemoteSource struct {
	url  string
	http *http.Client
}

// NewRemoteSource creates a RemoteSource for the given URL.
func NewRemoteSource(url string) (*RemoteSource, error) {
	if !remotePattern.MatchString(url) {
		return nil, ErrInvalidSource
	}
	return &RemoteSource{
		url: url,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Load fetches the document body.
func (s *RemoteSource) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("specdoc: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("specdoc: remote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("specdoc: remote request failed with %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
