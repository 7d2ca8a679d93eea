// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"time"

	"github.com/Symbiot01/medsight/internal/config"
	"github.com/Symbiot01/medsight/internal/storage"
)

// ConfigChecker reports whether the bucket configuration resolved.
type ConfigChecker struct {
	provider *config.Provider
}

// NewConfigChecker creates a checker for the bucket configuration.
func NewConfigChecker(p *config.Provider) *ConfigChecker {
	return &ConfigChecker{provider: p}
}

func (c *ConfigChecker) Name() string { return "bucket_config" }

func (c *ConfigChecker) Check(context.Context) CheckResult {
	cfg, err := c.provider.Get()
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: cfg.BucketName + " (" + cfg.BucketRegion + ")"}
}

// StorageChecker pings the bucket. An unreachable bucket only degrades the
// service; configuration errors are ConfigChecker's concern.
type StorageChecker struct {
	client  func() (storage.Presigner, error)
	timeout time.Duration
}

// NewStorageChecker creates a checker that pings the client returned by client.
func NewStorageChecker(client func() (storage.Presigner, error), timeout time.Duration) *StorageChecker {
	return &StorageChecker{client: client, timeout: timeout}
}

func (c *StorageChecker) Name() string { return "bucket_reachable" }

func (c *StorageChecker) Check(ctx context.Context) CheckResult {
	p, err := c.client()
	if err != nil {
		return CheckResult{Status: StatusDegraded, Message: "storage client unavailable", Error: err.Error()}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return CheckResult{Status: StatusDegraded, Message: "bucket unreachable", Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}
