// SPDX-License-Identifier: MIT

// Package config resolves the object storage bucket coordinates and the HTTP
// server settings from the process environment.
//
// Bucket settings are strict: Resolve either returns a fully populated
// BucketConfig or a *ConfigError. Server settings are lenient and fall back
// to defaults.
package config
