package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vasilisgee/api-doci/internal/domain"
	"github.com/vasilisgee/api-doci/internal/middleware"
	"github.com/vasilisgee/api-doci/internal/session"
)

// honeypotField is the hidden form field name used to catch naive bots.
const honeypotField = "website"

// PageHandler renders the portal's HTML pages.
type PageHandler struct {
	renderer    *Renderer
	store       *session.Store
	logger      *slog.Logger
	minSubmitMs int
}

// NewPageHandler creates a PageHandler. minSubmitMs is the minimum time
// the login form must be on screen before a submit is accepted client-side.
func NewPageHandler(renderer *Renderer, store *session.Store, logger *slog.Logger, minSubmitMs int) *PageHandler {
	return &PageHandler{
		renderer:    renderer,
		store:       store,
		logger:      logger,
		minSubmitMs: minSubmitMs,
	}
}

// loginPageData feeds the login template.
type loginPageData struct {
	MinSubmitMs   int
	HoneypotField string
	Reason        string
}

// ShowLogin renders the login page. A browser that already holds an
// active session is sent straight to the docs.
func (h *PageHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.store.ReadActive(r, time.Now()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := loginPageData{
		MinSubmitMs:   h.minSubmitMs,
		HoneypotField: honeypotField,
		Reason:        r.URL.Query().Get("reason"),
	}

	if err := h.renderer.Render(w, http.StatusOK, "login", data); err != nil {
		h.logger.Error("failed to render login page", "error", err)
		http.Error(w, domain.ErrorMessage(err), http.StatusInternalServerError)
	}
}

// docsPageData feeds the docs template.
type docsPageData struct {
	User              domain.AuthenticatedUser
	InactivityMinutes int
}

// ShowDocs renders the documentation viewer. The session requirement is
// enforced by middleware; an unauthenticated browser never reaches here.
func (h *PageHandler) ShowDocs(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := docsPageData{
		User:              s.User,
		InactivityMinutes: int(h.store.InactivityWindow() / time.Minute),
	}

	if err := h.renderer.Render(w, http.StatusOK, "docs", data); err != nil {
		h.logger.Error("failed to render docs page", "error", err)
		http.Error(w, domain.ErrorMessage(err), http.StatusInternalServerError)
	}
}
