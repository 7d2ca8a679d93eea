// SPDX-License-Identifier: MIT

package config

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Symbiot01/medsight/internal/log"
)

var configResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "medsight_config_resolutions_total",
	Help: "Bucket configuration resolutions by result",
}, []string{"result"})

// Provider hands out the process-wide BucketConfig. The first Get performs
// the resolution; concurrent first callers block on that single attempt and
// every caller observes its result, including a failure.
type Provider struct {
	get func() (BucketConfig, error)
}

// NewProvider returns a Provider that resolves the bucket settings found
// through lookup.
func NewProvider(lookup LookupFunc) *Provider {
	return NewProviderFunc(func() (BucketConfig, error) {
		return Resolve(ReadBucketEnv(lookup))
	})
}

// NewProviderFunc returns a Provider backed by an arbitrary resolve function.
func NewProviderFunc(resolve func() (BucketConfig, error)) *Provider {
	return &Provider{get: sync.OnceValues(func() (BucketConfig, error) {
		logger := log.WithComponent("config")
		cfg, err := resolve()
		if err != nil {
			configResolutions.WithLabelValues("error").Inc()
			logger.Error().Err(err).Str(log.FieldEvent, "config.resolve_failed").Msg("bucket configuration is invalid")
			return BucketConfig{}, err
		}
		configResolutions.WithLabelValues("ok").Inc()
		logger.Info().Str(log.FieldEvent, "config.resolved").Object("bucket", cfg).Msg("bucket configuration resolved")
		return cfg, nil
	})}
}

// Get returns the resolved configuration.
func (p *Provider) Get() (BucketConfig, error) {
	return p.get()
}
