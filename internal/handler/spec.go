package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vasilisgee/api-doci/internal/domain"
	"github.com/vasilisgee/api-doci/internal/metrics"
	"github.com/vasilisgee/api-doci/internal/specdoc"
)

// SpecHandler serves the OpenAPI document to the authenticated viewer.
//
// The session requirement is enforced by middleware, not here; this
// handler only loads and relays the document.
type SpecHandler struct {
	source     specdoc.Source
	sourceName string
	logger     *slog.Logger
}

// NewSpecHandler creates a SpecHandler. sourceName labels the configured
// provider in metrics ("local", "remote", "r2").
func NewSpecHandler(source specdoc.Source, sourceName string, logger *slog.Logger) *SpecHandler {
	return &SpecHandler{
		source:     source,
		sourceName: sourceName,
		logger:     logger,
	}
}

// Show loads the configured document and relays it verbatim.
//
// The document can carry internal endpoint details, so the response is
// marked uncacheable for shared caches. Every failure collapses to a
// single generic 500; the viewer does not need to know whether the
// source was missing, unreachable, or serving garbage.
func (h *SpecHandler) Show(w http.ResponseWriter, r *http.Request) {
	body, err := h.source.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load spec document",
			"source", h.sourceName, "code", domain.ErrorCode(err), "error", err)
		metrics.SpecFetchesTotal.WithLabelValues(h.sourceName, "error").Inc()
		writeFail(w, http.StatusInternalServerError, "Unable to load OpenAPI specification.")
		return
	}

	if !json.Valid(body) {
		h.logger.Error("spec document is not valid JSON", "source", h.sourceName)
		metrics.SpecFetchesTotal.WithLabelValues(h.sourceName, "error").Inc()
		writeFail(w, http.StatusInternalServerError, "Unable to load OpenAPI specification.")
		return
	}

	metrics.SpecFetchesTotal.WithLabelValues(h.sourceName, "success").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "private, no-store, max-age=0")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
