// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Symbiot01/medsight/internal/log"
)

// Recognised environment variables. Names are matched case-insensitively.
const (
	EnvBucketURL       = "BUCKET_URL"
	EnvBucketAccessKey = "BUCKET_ACCESS_KEY"
	EnvBucketSecretKey = "BUCKET_SECRET_KEY"
	EnvBucketName      = "BUCKET_NAME"
	EnvBucketRegion    = "BUCKET_REGION"
	EnvLogLevel        = "LOG_LEVEL"

	EnvListenAddr          = "LISTEN_ADDR"
	EnvCORSAllowedOrigins  = "CORS_ALLOWED_ORIGINS"
	EnvRateLimitRPM        = "RATE_LIMIT_RPM"
	EnvPresignTTL          = "PRESIGN_TTL"
	EnvTracingExporter     = "TRACING_EXPORTER"
	EnvTracingEndpoint     = "TRACING_ENDPOINT"
	EnvTracingSamplingRate = "TRACING_SAMPLING_RATE"
)

// LookupFunc resolves an environment variable by its canonical upper-case name.
type LookupFunc func(key string) (string, bool)

// OSLookup snapshots the process environment into a case-insensitive
// LookupFunc. When a name is present in several spellings the upper-case one
// wins.
func OSLookup() LookupFunc {
	return MapLookup(environMap(os.Environ()))
}

// MapLookup returns a case-insensitive LookupFunc over m. Among several
// spellings of one name the upper-case one wins, then the lexically smallest.
func MapLookup(m map[string]string) LookupFunc {
	chosen := make(map[string]string, len(m))
	for k := range m {
		upper := strings.ToUpper(k)
		if prev, seen := chosen[upper]; seen && !preferKey(k, prev, upper) {
			continue
		}
		chosen[upper] = k
	}
	folded := make(map[string]string, len(chosen))
	for upper, k := range chosen {
		folded[upper] = m[k]
	}
	return func(key string) (string, bool) {
		v, ok := folded[strings.ToUpper(key)]
		return v, ok
	}
}

func preferKey(candidate, current, upper string) bool {
	switch {
	case current == upper:
		return false
	case candidate == upper:
		return true
	default:
		return candidate < current
	}
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}

// ReadBucketEnv collects the raw bucket settings. Validation happens in Resolve.
func ReadBucketEnv(lookup LookupFunc) RawBucketConfig {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return RawBucketConfig{
		BucketURL:    get(EnvBucketURL),
		AccessKey:    get(EnvBucketAccessKey),
		SecretKey:    get(EnvBucketSecretKey),
		BucketName:   get(EnvBucketName),
		BucketRegion: get(EnvBucketRegion),
	}
}

func getString(lookup LookupFunc, key, defaultValue string) string {
	logger := log.WithComponent("config")
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Msg("using environment variable")
		return strings.TrimSpace(v)
	}
	logger.Debug().
		Str("key", key).
		Str("default", defaultValue).
		Str("source", "default").
		Msg("using default value")
	return defaultValue
}

func getInt(lookup LookupFunc, key string, defaultValue int) int {
	return getParsed(lookup, key, defaultValue, strconv.Atoi, func(e *zerolog.Event, v int) *zerolog.Event {
		return e.Int("default", v)
	})
}

func getFloat(lookup LookupFunc, key string, defaultValue float64) float64 {
	parse := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	return getParsed(lookup, key, defaultValue, parse, func(e *zerolog.Event, v float64) *zerolog.Event {
		return e.Float64("default", v)
	})
}

func getDuration(lookup LookupFunc, key string, defaultValue time.Duration) time.Duration {
	return getParsed(lookup, key, defaultValue, time.ParseDuration, func(e *zerolog.Event, v time.Duration) *zerolog.Event {
		return e.Dur("default", v)
	})
}

// getParsed falls back to defaultValue on empty or unparsable input and warns
// about the latter.
func getParsed[T any](lookup LookupFunc, key string, defaultValue T, parse func(string) (T, error), withDefault func(*zerolog.Event, T) *zerolog.Event) T {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return defaultValue
	}
	parsed, err := parse(v)
	if err != nil {
		logger := log.WithComponent("config")
		withDefault(logger.Warn().Str("key", key).Str("value", v), defaultValue).
			Msg("invalid value in environment variable, using default")
		return defaultValue
	}
	return parsed
}

func getList(lookup LookupFunc, key string, defaultValue []string) []string {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
