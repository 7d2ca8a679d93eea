// SPDX-License-Identifier: MIT

package storage

import (
	"context"
	"sync"

	"github.com/Symbiot01/medsight/internal/config"
	"github.com/Symbiot01/medsight/internal/log"
)

// Lazy builds the Client on first use from a config.Provider. Like the
// provider, a failed construction is final.
type Lazy struct {
	get func() (*Client, error)
}

// NewLazy returns a Lazy bound to p.
func NewLazy(p *config.Provider) *Lazy {
	return &Lazy{get: sync.OnceValues(func() (*Client, error) {
		cfg, err := p.Get()
		if err != nil {
			return nil, err
		}
		c, err := New(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		logger := log.WithComponent("storage")
		logger.Info().
			Str(log.FieldBucket, c.Bucket()).
			Str(log.FieldRegion, cfg.BucketRegion).
			Str(log.FieldEndpoint, c.EndpointURL()).
			Msg("storage client ready")
		return c, nil
	})}
}

// Client returns the shared client.
func (l *Lazy) Client() (*Client, error) {
	return l.get()
}

// Presigner returns the shared client as a Presigner.
func (l *Lazy) Presigner() (Presigner, error) {
	c, err := l.get()
	if err != nil {
		return nil, err
	}
	return c, nil
}
