// Package api exposes a tape over a small REST API.
//
// All program routes live under /api/v1 and are guarded by the X-API-Key
// header when a key is configured. Prometheus metrics are served
// unauthenticated at /metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	metricsRefreshInterval = 30 * time.Second
	shutdownTimeout        = 5 * time.Second
)

// NewRouter builds the HTTP routes for server. Metrics are gathered from reg.
func NewRouter(server *Server, reg prometheus.Gatherer) chi.Router {
	metrics := server.metrics
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Programs
		r.Get("/programs", metrics.InstrumentHandler("GET", "/api/v1/programs", server.handleList))
		r.Put("/programs/{name}", metrics.InstrumentHandler("PUT", "/api/v1/programs/{name}", server.handleSave))
		r.Get("/programs/{name}", metrics.InstrumentHandler("GET", "/api/v1/programs/{name}", server.handleLoad))
		r.Delete("/programs/{name}", metrics.InstrumentHandler("DELETE", "/api/v1/programs/{name}", server.handleRemove))
		r.Post("/programs/{name}/recover", metrics.InstrumentHandler("POST", "/api/v1/programs/{name}/recover", server.handleRecover))

		// Diagnostics
		r.Get("/debug", metrics.InstrumentHandler("GET", "/api/v1/debug", server.handleDebug))
		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	return r
}

// StartServer serves the API for store until ctx is cancelled
func StartServer(ctx context.Context, store TapeStore, config ServerConfig) error {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	server := NewServer(store, config, metrics)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go server.refreshTapeStats(ctx, metricsRefreshInterval)

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":    addr,
			"auth":    config.APIKey != "",
			"metrics": fmt.Sprintf("http://%s/metrics", addr),
		}).Info("starting TapeBox REST API server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down TapeBox REST API server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
