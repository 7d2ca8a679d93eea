// SPDX-License-Identifier: MIT

// Package daemon runs the HTTP server and owns its shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Symbiot01/medsight/internal/log"
	"github.com/Symbiot01/medsight/internal/telemetry"
)

// Config holds daemon configuration.
type Config struct {
	// Version is the build version
	Version string

	// ListenAddr is the HTTP server listen address
	ListenAddr string

	// Server timeouts
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// ShutdownTimeout bounds the graceful shutdown
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the production server timeouts for addr.
func DefaultConfig(version, addr string) Config {
	return Config{
		Version:           version,
		ListenAddr:        addr,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ShutdownTimeout:   15 * time.Second,
	}
}

// Daemon represents the medsight server process.
type Daemon struct {
	config    Config
	logger    zerolog.Logger
	telemetry *telemetry.Provider
}

// New creates a daemon. tp may be nil; when set it is flushed on shutdown.
func New(cfg Config, tp *telemetry.Provider) *Daemon {
	return &Daemon{
		config:    cfg,
		logger:    log.WithComponent("daemon"),
		telemetry: tp,
	}
}

// Run listens on the configured address and serves handler until ctx is
// cancelled or the server fails.
func (d *Daemon) Run(ctx context.Context, handler http.Handler) error {
	ln, err := net.Listen("tcp", d.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.config.ListenAddr, err)
	}
	return d.Serve(ctx, ln, handler)
}

// Serve serves handler on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (d *Daemon) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: d.config.ReadHeaderTimeout,
		ReadTimeout:       d.config.ReadTimeout,
		WriteTimeout:      d.config.WriteTimeout,
		IdleTimeout:       d.config.IdleTimeout,
		MaxHeaderBytes:    d.config.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.logger.Info().
			Str(log.FieldEvent, "server.listening").
			Str("addr", ln.Addr().String()).
			Str(log.FieldVersion, d.config.Version).
			Msg("HTTP server listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return d.shutdown(server)
	})

	return g.Wait()
}

func (d *Daemon) shutdown(server *http.Server) error {
	d.logger.Info().Str(log.FieldEvent, "server.shutdown").Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		d.logger.Error().Err(err).Msg("HTTP server shutdown error")
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if d.telemetry != nil {
		if err := d.telemetry.Shutdown(shutdownCtx); err != nil {
			d.logger.Error().Err(err).Msg("telemetry shutdown error")
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}

	d.logger.Info().Str(log.FieldEvent, "server.stopped").Msg("daemon stopped")
	return errors.Join(errs...)
}
