package guard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransport counts calls and scripts the touch outcome.
type fakeTransport struct {
	mu         sync.Mutex
	touches    int
	logouts    int
	expired    bool
	touchError error
}

func (t *fakeTransport) Touch(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touches++
	return t.expired, t.touchError
}

func (t *fakeTransport) Logout(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logouts++
	return nil
}

func (t *fakeTransport) touchCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.touches
}

func (t *fakeTransport) logoutCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.logouts
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestGuardForcesLogoutAfterInactivity(t *testing.T) {
	transport := &fakeTransport{}
	var logoutCalls atomic.Int32
	var gotReason atomic.Value

	g := New(Config{
		InactivityWindow: 50 * time.Millisecond,
		TouchInterval:    time.Hour,
		CheckInterval:    time.Hour,
		OnLogout: func(reason string) {
			logoutCalls.Add(1)
			gotReason.Store(reason)
		},
	}, transport, testLogger())

	g.Start()
	defer g.Stop()

	if !waitFor(t, time.Second, func() bool { return logoutCalls.Load() == 1 }) {
		t.Fatal("guard never forced logout")
	}
	if reason := gotReason.Load(); reason != ReasonInactive {
		t.Errorf("reason = %v, want %q", reason, ReasonInactive)
	}
	if !waitFor(t, time.Second, func() bool { return transport.logoutCount() == 1 }) {
		t.Error("forced logout did not call the logout endpoint")
	}

	// No second logout even as more time passes.
	time.Sleep(120 * time.Millisecond)
	if calls := logoutCalls.Load(); calls != 1 {
		t.Errorf("OnLogout fired %d times, want exactly once", calls)
	}
}

func TestGuardActivityDefersLogout(t *testing.T) {
	transport := &fakeTransport{}
	var logoutCalls atomic.Int32

	g := New(Config{
		InactivityWindow: 80 * time.Millisecond,
		TouchInterval:    time.Hour,
		CheckInterval:    time.Hour,
		OnLogout:         func(string) { logoutCalls.Add(1) },
	}, transport, testLogger())

	g.Start()
	defer g.Stop()

	// Keep notifying well inside the window.
	for i := 0; i < 5; i++ {
		time.Sleep(30 * time.Millisecond)
		g.Notify()
	}
	if logoutCalls.Load() != 0 {
		t.Fatal("guard logged out despite continuous activity")
	}

	// Then go quiet and expect the forced logout.
	if !waitFor(t, time.Second, func() bool { return logoutCalls.Load() == 1 }) {
		t.Error("guard did not log out after activity stopped")
	}
}

func TestGuardThrottlesServerTouches(t *testing.T) {
	transport := &fakeTransport{}

	g := New(Config{
		InactivityWindow: time.Hour,
		TouchInterval:    time.Hour,
		CheckInterval:    time.Hour,
	}, transport, testLogger())

	g.Start()
	defer g.Stop()

	// Initial touch happens on start.
	if !waitFor(t, time.Second, func() bool { return transport.touchCount() == 1 }) {
		t.Fatal("no initial touch")
	}

	// A burst of activity inside the touch interval adds no calls.
	for i := 0; i < 20; i++ {
		g.Notify()
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	if got := transport.touchCount(); got != 1 {
		t.Errorf("touches = %d, want 1 within the throttle window", got)
	}
}

func TestGuardServerExpiryForcesLogout(t *testing.T) {
	transport := &fakeTransport{expired: true}
	var logoutCalls atomic.Int32

	g := New(Config{
		InactivityWindow: time.Hour,
		TouchInterval:    time.Hour,
		CheckInterval:    time.Hour,
		OnLogout:         func(string) { logoutCalls.Add(1) },
	}, transport, testLogger())

	g.Start()
	defer g.Stop()

	// The initial touch reports expiry; the guard must log out without
	// waiting for the local window.
	if !waitFor(t, time.Second, func() bool { return logoutCalls.Load() == 1 }) {
		t.Error("server-reported expiry did not force logout")
	}
}

func TestGuardTouchErrorsAreNonFatal(t *testing.T) {
	transport := &fakeTransport{touchError: errors.New("network down")}
	var logoutCalls atomic.Int32

	g := New(Config{
		InactivityWindow: time.Hour,
		TouchInterval:    time.Hour,
		CheckInterval:    time.Hour,
		OnLogout:         func(string) { logoutCalls.Add(1) },
	}, transport, testLogger())

	g.Start()
	defer g.Stop()

	time.Sleep(50 * time.Millisecond)
	if logoutCalls.Load() != 0 {
		t.Error("a failing touch call must not force logout")
	}
}

// Stop on a guard that was never started must return immediately.
func TestGuardStopWithoutStart(t *testing.T) {
	g := New(Config{InactivityWindow: time.Hour}, &fakeTransport{}, testLogger())

	released := make(chan struct{})
	go func() {
		g.Stop()
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running scheduler")
	}
}

func TestGuardStopReleases(t *testing.T) {
	g := New(Config{
		InactivityWindow: time.Hour,
	}, &fakeTransport{}, testLogger())

	g.Start()

	released := make(chan struct{})
	go func() {
		g.Stop()
		g.Stop() // second Stop must be a no-op, not a panic
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestPortalTransport(t *testing.T) {
	var activityStatus atomic.Int32
	activityStatus.Store(http.StatusOK)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/activity":
			w.WriteHeader(int(activityStatus.Load()))
		case "/api/auth/logout":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)

	transport := NewPortalTransport(srv.URL, nil)

	expired, err := transport.Touch(context.Background())
	if err != nil || expired {
		t.Errorf("Touch = (%v, %v), want (false, nil)", expired, err)
	}

	activityStatus.Store(http.StatusUnauthorized)
	expired, err = transport.Touch(context.Background())
	if err != nil || !expired {
		t.Errorf("Touch = (%v, %v), want (true, nil) on 401", expired, err)
	}

	if err := transport.Logout(context.Background()); err != nil {
		t.Errorf("Logout failed: %v", err)
	}
}
