package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/metrics", true},
		{"/static/css/portal.css", true},
		{"/static/js/activity-guard.js", true},
		{"/", false},
		{"/login", false},
		{"/api/spec", false},
		{"/api/auth/activity", false},
	}

	for _, tt := range tests {
		if got := shouldSkip(tt.path); got != tt.want {
			t.Errorf("shouldSkip(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNormalizePathCollapsesUUIDs(t *testing.T) {
	in := "/api/sessions/A1B2C3D4-E5F6-7890-ABCD-EF1234567890/touch"
	want := "/api/sessions/{id}/touch"
	if got := normalizePath(in); got != want {
		t.Errorf("normalizePath = %q, want %q", got, want)
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418 passed through", rec.Code)
	}
}
