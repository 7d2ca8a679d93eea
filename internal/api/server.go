// SPDX-License-Identifier: MIT

// Package api wires the medsight HTTP surface onto the middleware stack.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Symbiot01/medsight/internal/config"
	"github.com/Symbiot01/medsight/internal/control/http/problem"
	"github.com/Symbiot01/medsight/internal/control/middleware"
	"github.com/Symbiot01/medsight/internal/health"
	"github.com/Symbiot01/medsight/internal/storage"
)

const storagePingTimeout = 3 * time.Second

// Config holds the API server settings.
type Config struct {
	Version    string
	Stack      middleware.StackConfig
	PresignTTL time.Duration
}

// PresignerFunc returns the storage client, constructing it on first use.
type PresignerFunc func() (storage.Presigner, error)

// Server represents the HTTP API server.
type Server struct {
	cfg       Config
	buckets   *config.Provider
	presigner PresignerFunc
	health    *health.Manager
	router    chi.Router
}

// ServerOption allows functional configuration of the Server.
type ServerOption func(*Server)

// WithPresigner overrides the storage client source (for tests).
func WithPresigner(fn PresignerFunc) ServerOption {
	return func(s *Server) {
		s.presigner = fn
	}
}

// New creates a Server reading bucket settings from buckets.
func New(cfg Config, buckets *config.Provider, opts ...ServerOption) *Server {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = config.DefaultPresignTTL
	}
	s := &Server{
		cfg:       cfg,
		buckets:   buckets,
		presigner: storage.NewLazy(buckets).Presigner,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.health = health.NewManager(cfg.Version)
	s.health.RegisterChecker(health.NewConfigChecker(buckets))
	s.health.RegisterChecker(health.NewStorageChecker(s.presigner, storagePingTimeout))

	s.router = s.routes()
	return s
}

// Handler returns the root handler including the middleware stack.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(s.cfg.Stack)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	if s.cfg.Stack.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/storage", problem.Handle(s.handleStorage))
		r.Post("/dicom/download-url", problem.Handle(s.handleDownloadURL))
	})
	return r
}
