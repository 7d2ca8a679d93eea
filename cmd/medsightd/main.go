// SPDX-License-Identifier: MIT

// Command medsightd serves the medsight HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Symbiot01/medsight/internal/api"
	"github.com/Symbiot01/medsight/internal/config"
	"github.com/Symbiot01/medsight/internal/control/middleware"
	"github.com/Symbiot01/medsight/internal/daemon"
	"github.com/Symbiot01/medsight/internal/log"
	"github.com/Symbiot01/medsight/internal/telemetry"
	"github.com/Symbiot01/medsight/internal/version"
)

const serviceName = "medsight.api"

type options struct {
	showVersion bool
	listen      string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("medsightd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	fs.StringVar(&opts.listen, "listen", "", "listen address (overrides "+config.EnvListenAddr+")")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println(version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logger := log.WithComponent("daemon")
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.failed").Msg("medsightd exited with error")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	dotenvPath, dotenvErr := loadDotEnv()

	serverCfg := config.ReadServerEnv(config.OSLookup())
	if opts.listen != "" {
		serverCfg.ListenAddr = opts.listen
	}

	log.Configure(log.Config{
		Level:   serverCfg.LogLevel,
		Service: serviceName,
		Version: version.Version,
	})
	logger := log.WithComponent("daemon")

	if dotenvErr != nil {
		logger.Warn().Err(dotenvErr).Str(log.FieldEvent, "config.dotenv_failed").Msg("could not load .env file")
	} else if dotenvPath != "" {
		logger.Info().Str(log.FieldEvent, "config.dotenv_loaded").Str("path", dotenvPath).Msg("loaded environment file")
	}

	logStartup(logger, serverCfg)

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		ExporterType:   serverCfg.Tracing.Exporter,
		Endpoint:       serverCfg.Tracing.Endpoint,
		SamplingRate:   serverCfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Str(log.FieldEvent, "telemetry.init_failed").Msg("telemetry initialization failed, continuing without tracing")
		tp = nil
	}

	tracingService := ""
	if tp != nil && serverCfg.Tracing.Exporter != "" {
		tracingService = serviceName
	}

	buckets := config.NewProvider(config.OSLookup())
	// Resolve eagerly so a bad configuration is reported at boot. Requests
	// needing storage keep failing with 503 until the process is restarted.
	if _, err := buckets.Get(); err != nil {
		logger.Warn().Err(err).Str(log.FieldEvent, "config.bucket_unavailable").Msg("storage routes disabled")
	}

	server := api.New(api.Config{
		Version:    version.Version,
		PresignTTL: serverCfg.PresignTTL,
		Stack: middleware.StackConfig{
			AllowedOrigins: serverCfg.AllowedOrigins,
			EnableMetrics:  true,
			TracingService: tracingService,
			RateLimitRPM:   serverCfg.RateLimitRPM,
		},
	}, buckets)

	d := daemon.New(daemon.DefaultConfig(version.Version, serverCfg.ListenAddr), tp)
	return d.Run(ctx, server.Handler())
}

func loadDotEnv() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return config.LoadDotEnv(wd)
}

func logStartup(logger zerolog.Logger, cfg config.ServerConfig) {
	logger.Info().
		Str(log.FieldEvent, "startup").
		Str(log.FieldVersion, version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.ListenAddr).
		Msg("starting medsightd")
	logger.Info().
		Str(log.FieldEvent, "startup.log_level").
		Str("log_level", strings.ToUpper(cfg.LogLevel)).
		Msgf("startup log_level=%s", strings.ToUpper(cfg.LogLevel))
	logger.Info().
		Str(log.FieldEvent, "startup.cors").
		Strs("allow_origins", cfg.AllowedOrigins).
		Bool("allow_credentials", true).
		Strs("allow_methods", []string{"*"}).
		Strs("allow_headers", []string{"*"}).
		Msg("CORS configured")
	logger.Info().
		Str(log.FieldEvent, "startup.limits").
		Int("rate_limit_rpm", cfg.RateLimitRPM).
		Dur("presign_ttl", cfg.PresignTTL).
		Str("tracing_exporter", cfg.Tracing.Exporter).
		Msg("request limits configured")
}
