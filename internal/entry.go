// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unixdj/dynqr/internal/api"
	"github.com/unixdj/dynqr/internal/logger"
	"github.com/unixdj/dynqr/internal/service"
	"github.com/unixdj/dynqr/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	log := app.logger
	if log == nil {
		var err error
		if log, err = logger.New(cfg.App.LogEnv, cfg.App.LogLevel); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = log.Sync() }()
	}
	zap.ReplaceGlobals(log)

	log.Info("Configuration loaded",
		zap.String("http_address", cfg.App.HTTP.Address()),
		zap.String("public_url", cfg.App.PublicURL),
		zap.String("log_level", cfg.App.LogLevel),
		zap.String("default_level", cfg.QR.Level),
		zap.Int("cache_size", cfg.Cache.Size))

	defaults, err := cfg.QR.Options()
	if err != nil {
		return fmt.Errorf("qr defaults: %w", err)
	}

	st := app.store
	if st == nil {
		st = store.New()
	}

	svc := service.New(st, service.Config{
		Defaults:  service.ParamsFromOptions(defaults),
		PublicURL: cfg.App.PublicURL,
		CacheSize: cfg.Cache.Size,
		CacheTTL:  cfg.Cache.TTL,
	}, log)
	apiRouter := api.NewRouter(svc, log, cfg.App.HTTP.MaxUploadBytes)

	httpServer := &http.Server{
		Addr:         cfg.App.HTTP.Address(),
		Handler:      newRouter(apiRouter),
		ReadTimeout:  cfg.App.HTTP.ReadTimeout,
		WriteTimeout: cfg.App.HTTP.WriteTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		log.Info("Starting HTTP server", zap.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			log.Info("Received shutdown signal", zap.String("signal", sig.String()))
		case <-gCtx.Done():
			log.Info("Context cancelled, initiating shutdown")
		}

		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Application error", zap.Error(err))
		return err
	}

	log.Info("Server stopped successfully", zap.Int("records", st.Len()))
	return nil
}

// newRouter wraps the API routes with the common middleware and the
// health and metrics endpoints.
func newRouter(apiRouter http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/", apiRouter)
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
