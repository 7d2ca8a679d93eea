// SPDX-License-Identifier: MIT

package config

import "errors"

var (
	// ErrInvalidConfig classifies every failure to build a configuration value
	// from environment input. Use errors.Is(err, ErrInvalidConfig) instead of
	// string matching.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigError reports which environment-derived field could not be
// validated and why.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is makes every ConfigError match ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
