package specdoc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRemoteSourceRejectsNonHTTP(t *testing.T) {
	for _, url := range []string{"", "ftp://x.example/spec.json", "spec.json"} {
		if _, err := NewRemoteSource(url); !errors.Is(err, ErrInvalidSource) {
			t.Errorf("NewRemoteSource(%q) err = %v, want ErrInvalidSource", url, err)
		}
	}
}

func TestRemoteSourceLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = w.Write([]byte(`{"openapi":"3.0.3"}`))
	}))
	t.Cleanup(srv.Close)

	source, err := NewRemoteSource(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	data, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != `{"openapi":"3.0.3"}` {
		t.Errorf("unexpected content: %s", data)
	}
}

func TestRemoteSourceStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		notFound bool
	}{
		{"404 maps to ErrNotFound", http.StatusNotFound, true},
		{"500 is a generic error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			t.Cleanup(srv.Close)

			source, err := NewRemoteSource(srv.URL)
			if err != nil {
				t.Fatal(err)
			}

			_, err = source.Load(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.Is(err, ErrNotFound) != tt.notFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v, want %v", !tt.notFound, tt.notFound)
			}
		})
	}
}
