package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vasilisgee/api-doci/internal"
	"github.com/vasilisgee/api-doci/internal/authapi"
	"github.com/vasilisgee/api-doci/internal/handler"
	"github.com/vasilisgee/api-doci/internal/metrics"
	"github.com/vasilisgee/api-doci/internal/middleware"
	"github.com/vasilisgee/api-doci/internal/session"
	"github.com/vasilisgee/api-doci/internal/specdoc"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	isSecure := cfg.IsProduction()

	// Session store: the encrypted cookie is the only session state
	codec := session.NewCodec(cfg.SessionSecret)
	store := session.NewStore(codec, cfg.SessionCookieName, cfg.SessionInactivity, isSecure)

	// Identity provider client
	authClient := authapi.NewClient(cfg.AuthAPIBaseURL, logger)

	// OpenAPI document source
	specCfg := specdoc.Config{
		Provider: cfg.SpecProvider,
		Location: cfg.SpecSource,
		RootDir:  ".",
		R2: specdoc.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		},
	}
	specSource, err := specdoc.New(specCfg)
	if err != nil {
		return fmt.Errorf("spec source initialization failed: %w", err)
	}
	logger.Info("Spec source ready", "provider", specCfg.ResolveProvider())

	// Initialize template renderer
	renderer, err := handler.NewRenderer("web/templates", cfg.Env == "development")
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}

	// Initialize middleware
	sessionMw := middleware.NewSessionMiddleware(store, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authClient, store, logger, cfg.AuthApplicationName, cfg.AuthDemoSessionID)
	specHandler := handler.NewSpecHandler(specSource, specCfg.ResolveProvider(), logger)
	pageHandler := handler.NewPageHandler(renderer, store, logger, cfg.LoginMinSubmitMs)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	staticFS := http.FileServer(http.Dir("web/static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Session protocol routes (public)
	authHandler.RegisterRoutes(mux)

	requireSession := middleware.Stack(sessionMw.WithSession, sessionMw.RequireSession)

	// OpenAPI document, only for authenticated browsers
	mux.Handle("GET /api/spec", requireSession(http.HandlerFunc(specHandler.Show)))

	// Pages
	mux.HandleFunc("GET /login", pageHandler.ShowLogin)
	mux.Handle("GET /{$}", requireSession(http.HandlerFunc(pageHandler.ShowDocs)))

	// Global middleware: security headers outermost, then logging, then metrics
	root := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
