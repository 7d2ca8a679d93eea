// SPDX-License-Identifier: MIT

package config

import (
	"time"

	"github.com/Symbiot01/medsight/internal/log"
)

// DefaultAllowedOrigins are the browser origins of the local frontends.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:5173",
	"http://localhost:8080",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:3001",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:8080",
	"http://frontend:80",
}

const (
	DefaultListenAddr   = ":8000"
	DefaultRateLimitRPM = 600
	DefaultPresignTTL   = 15 * time.Minute
)

// TracingConfig selects the OTLP exporter. An empty Exporter disables tracing.
type TracingConfig struct {
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// ServerConfig holds the HTTP server settings. Unlike the bucket settings
// these never fail: invalid values fall back to defaults with a warning.
type ServerConfig struct {
	ListenAddr     string
	LogLevel       string
	AllowedOrigins []string
	RateLimitRPM   int
	PresignTTL     time.Duration
	Tracing        TracingConfig
}

// ReadServerEnv reads the server settings through lookup.
func ReadServerEnv(lookup LookupFunc) ServerConfig {
	cfg := ServerConfig{
		ListenAddr:     getString(lookup, EnvListenAddr, DefaultListenAddr),
		LogLevel:       getString(lookup, EnvLogLevel, log.DefaultLevel),
		AllowedOrigins: getList(lookup, EnvCORSAllowedOrigins, DefaultAllowedOrigins),
		RateLimitRPM:   getInt(lookup, EnvRateLimitRPM, DefaultRateLimitRPM),
		PresignTTL:     getDuration(lookup, EnvPresignTTL, DefaultPresignTTL),
		Tracing: TracingConfig{
			Exporter:     getString(lookup, EnvTracingExporter, ""),
			Endpoint:     getString(lookup, EnvTracingEndpoint, ""),
			SamplingRate: getFloat(lookup, EnvTracingSamplingRate, 1.0),
		},
	}
	if cfg.RateLimitRPM < 0 {
		cfg.RateLimitRPM = 0
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = DefaultPresignTTL
	}
	return cfg
}
