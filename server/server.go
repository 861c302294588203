// Package server exposes the resolve pipeline over HTTP: one JSON
// query endpoint plus, optionally, a Prometheus scrape endpoint.
//
// Adapted from blocky's server package (server/server.go): chi router
// with a cors and recoverer middleware chain, a graceful
// Start/Stop pair around http.Server, narrowed to the single REST
// operation SPEC_FULL.md names (no DoH, no blocking/lists admin API).
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/namecoin/bcresolve/api"
	"github.com/namecoin/bcresolve/config"
	"github.com/namecoin/bcresolve/log"
	"github.com/namecoin/bcresolve/metrics"
	"github.com/namecoin/bcresolve/resolve"
)

const shutdownTimeout = 5 * time.Second

// Server wraps an http.Server bound to the resolve pipeline.
type Server struct {
	httpServer *http.Server
}

func logger() *logrus.Entry {
	return log.PrefixedLog("server")
}

// NewServer builds a Server. cfg.HTTP.Listen is the bind address;
// cfg.Metrics controls whether the Prometheus handler is mounted.
func NewServer(cfg *config.Config, resolver *resolve.Resolver) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	router.Post(api.PathResolvePath, newResolveHandler(resolver))

	if cfg.Metrics.Enable {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Listen,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving in the background. Bind failures are fatal.
func (s *Server) Start() {
	go func() {
		logger().Infof("http server listening on %s", s.httpServer.Addr)

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger().Fatalf("http server failed: %s", err)
		}
	}()
}

// Stop gracefully shuts the server down, bounded by shutdownTimeout.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger().Warnf("http server shutdown: %s", err)
	}
}
