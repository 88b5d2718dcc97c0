// Package guard implements the client-side inactivity watchdog for
// programmatic consumers of the portal API. It mirrors the browser guard
// shipped with the docs page: a deadline timer rearmed on activity, a
// periodic fallback check, throttled server touches, and a forced logout
// that always fires locally even when the network is down.
package guard

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Logout reasons passed to the OnLogout callback.
const (
	// ReasonInactive means the inactivity window elapsed, either locally
	// or as reported by the server.
	ReasonInactive = "inactive"
)

// Default intervals, matching the browser guard.
const (
	// DefaultTouchInterval is the minimum gap between server touch calls,
	// independent of how many activity events occur.
	DefaultTouchInterval = 30 * time.Second

	// DefaultCheckInterval is the periodic fallback check, a safety net in
	// case the deadline timer is delayed.
	DefaultCheckInterval = 5 * time.Second
)

// Transport performs the guard's outbound calls against the portal.
type Transport interface {
	// Touch refreshes the server-side activity timestamp. It returns
	// expired=true when the server reports the session as gone (401).
	// Transport errors are returned but callers treat them as non-fatal;
	// the local timers remain the fallback.
	Touch(ctx context.Context) (expired bool, err error)

	// Logout is the best-effort logout call made during forced logout.
	Logout(ctx context.Context) error
}

// Config parameterizes a Guard.
type Config struct {
	// InactivityWindow is the idle duration after which the guard forces
	// logout. Required.
	InactivityWindow time.Duration

	// TouchInterval throttles server touches. Defaults to DefaultTouchInterval.
	TouchInterval time.Duration

	// CheckInterval is the periodic fallback check. Defaults to DefaultCheckInterval.
	CheckInterval time.Duration

	// OnLogout is invoked exactly once when the guard forces logout.
	// It runs on the guard's scheduler goroutine.
	OnLogout func(reason string)
}

// Guard owns the two timers of the inactivity policy and a monotonic
// last-known-activity value. All state lives on a single scheduler
// goroutine; Notify and Stop are safe to call from any goroutine.
//
// Lifecycle: acquire with Start, release unconditionally with Stop.
// Responses from calls still in flight at Stop time are dropped.
type Guard struct {
	cfg       Config
	transport Transport
	logger    *slog.Logger

	activity     chan struct{}
	touchResults chan bool
	stop         chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
	started      atomic.Bool
}

// New creates a Guard. Call Start to begin monitoring.
func New(cfg Config, transport Transport, logger *slog.Logger) *Guard {
	if cfg.TouchInterval <= 0 {
		cfg.TouchInterval = DefaultTouchInterval
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}

	return &Guard{
		cfg:       cfg,
		transport: transport,
		logger:    logger,
		activity:  make(chan struct{}, 1),
		// Buffered so an in-flight touch never blocks on a busy scheduler.
		touchResults: make(chan bool, 4),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start launches the scheduler: arms the deadline timer, starts the
// periodic check, and issues an initial touch so the server-side
// timestamp is fresh from the first moment.
func (g *Guard) Start() {
	if !g.started.CompareAndSwap(false, true) {
		return
	}
	go g.run()
}

// Stop releases the timers and the scheduler goroutine. Safe to call more
// than once, before Start, and regardless of in-flight calls; it never
// waits for them.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() {
		close(g.stop)
	})
	if !g.started.Load() {
		return
	}
	<-g.done
}

// Notify records a qualifying activity event. It never blocks: multiple
// notifications between scheduler wake-ups coalesce into one.
func (g *Guard) Notify() {
	select {
	case g.activity <- struct{}{}:
	default:
	}
}

// run is the scheduler loop. It is the only goroutine that touches the
// timers and the activity bookkeeping.
func (g *Guard) run() {
	defer close(g.done)

	deadline := time.NewTimer(g.cfg.InactivityWindow)
	defer deadline.Stop()

	checker := time.NewTicker(g.cfg.CheckInterval)
	defer checker.Stop()

	lastInteraction := time.Now()
	lastServerTouch := time.Time{}
	loggedOut := false

	forceLogout := func() {
		if loggedOut {
			return
		}
		loggedOut = true

		// Best-effort: the callback must run even when this call fails,
		// since the point is to stop showing protected content.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := g.transport.Logout(ctx); err != nil {
				g.logger.Debug("logout call failed during forced logout", "error", err)
			}
		}()

		if g.cfg.OnLogout != nil {
			g.cfg.OnLogout(ReasonInactive)
		}
	}

	// Initial touch so the server-side timestamp is fresh from the start;
	// it counts against the throttle like any other touch.
	lastServerTouch = time.Now()
	g.touchServer()

	for {
		select {
		case <-g.stop:
			return

		case <-deadline.C:
			forceLogout()

		case <-checker.C:
			// Fallback in case the deadline timer was delayed.
			if time.Since(lastInteraction) >= g.cfg.InactivityWindow {
				forceLogout()
			}

		case <-g.activity:
			if loggedOut {
				continue
			}
			lastInteraction = time.Now()
			if !deadline.Stop() {
				select {
				case <-deadline.C:
				default:
				}
			}
			deadline.Reset(g.cfg.InactivityWindow)

			if lastInteraction.Sub(lastServerTouch) >= g.cfg.TouchInterval {
				lastServerTouch = lastInteraction
				g.touchServer()
			}

		case expired := <-g.touchResults:
			// The server's clock is authoritative when reachable.
			if expired {
				forceLogout()
			}
		}
	}
}

// touchServer fires one touch call without blocking the scheduler. The
// result is delivered back to the loop; a response that arrives after
// Stop is dropped.
func (g *Guard) touchServer() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		expired, err := g.transport.Touch(ctx)
		if err != nil {
			// Network failure: keep the local timers running.
			g.logger.Debug("touch call failed", "error", err)
			return
		}

		select {
		case g.touchResults <- expired:
		case <-g.stop:
		}
	}()
}

// =============================================================================
// HTTP Transport
// =============================================================================

// PortalTransport is the Transport implementation that talks to the
// portal's protocol handlers over HTTP. The supplied client must carry
// the session cookie (a cookie-jar client from the login flow).
type PortalTransport struct {
	baseURL string
	http    *http.Client
}

// NewPortalTransport creates a transport for the portal at baseURL.
func NewPortalTransport(baseURL string, client *http.Client) *PortalTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &PortalTransport{baseURL: baseURL, http: client}
}

// Touch calls the activity endpoint. A 401 means the session expired.
func (t *PortalTransport) Touch(ctx context.Context) (bool, error) {
	resp, err := t.post(ctx, "/api/auth/activity")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusUnauthorized, nil
}

// Logout calls the logout endpoint.
func (t *PortalTransport) Logout(ctx context.Context) error {
	resp, err := t.post(ctx, "/api/auth/logout")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (t *PortalTransport) post(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	return t.http.Do(req)
}
