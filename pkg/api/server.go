// Package api serves the frugy REST API.
//
// Routes live under /api/v1 and are protected by the X-API-Key header when
// the server has a key configured. /metrics is always unprotected for
// scraping.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/frugy/pkg/registry"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP handler for server. Metrics are served from
// gatherer.
func NewRouter(server *Server, gatherer prometheus.Gatherer) http.Handler {
	metrics := server.metrics
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(server.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Area types
		r.Get("/schemas", metrics.InstrumentHandler("GET", "/api/v1/schemas", server.handleListSchemas))
		r.Get("/schemas/{type}", metrics.InstrumentHandler("GET", "/api/v1/schemas/{type}", server.handleGetSchema))

		// Stateless codec
		r.Post("/areas/{type}/encode", metrics.InstrumentHandler("POST", "/api/v1/areas/{type}/encode", server.handleEncode))
		r.Post("/areas/{type}/decode", metrics.InstrumentHandler("POST", "/api/v1/areas/{type}/decode", server.handleDecode))

		// Image catalog
		r.Post("/images/{type}", metrics.InstrumentHandler("POST", "/api/v1/images/{type}", server.handlePutImage))
		r.Get("/images", metrics.InstrumentHandler("GET", "/api/v1/images", server.handleListImages))
		r.Get("/images/{id}", metrics.InstrumentHandler("GET", "/api/v1/images/{id}", server.handleGetImage))
		r.Delete("/images/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/images/{id}", server.handleDeleteImage))
	})

	return r
}

// StartServer serves the API on config.Addr() until ctx is cancelled, then
// shuts down gracefully.
func StartServer(ctx context.Context, reg *registry.Registry, store IImageStore, config ServerConfig, logger log.Logger) error {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	server := NewServer(reg, store, config, NewMetrics(promReg), logger)

	srv := &http.Server{
		Addr:              config.Addr(),
		Handler:           NewRouter(server, promReg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	level.Info(logger).Log("msg", "starting frugy REST API", "addr", srv.Addr, "auth", config.APIKey != "")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
		level.Info(logger).Log("msg", "shutting down REST API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	}
}
