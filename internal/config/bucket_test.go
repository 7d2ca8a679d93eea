// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_VirtualHostedURL(t *testing.T) {
	cfg, err := Resolve(RawBucketConfig{
		BucketURL: "https://medsight.atl1.digitaloceanspaces.com",
		AccessKey: "  AK  ",
		SecretKey: "SK",
	})
	require.NoError(t, err)
	assert.Equal(t, BucketConfig{
		BucketURL:    "https://medsight.atl1.digitaloceanspaces.com",
		AccessKey:    "AK",
		SecretKey:    "SK",
		BucketName:   "medsight",
		BucketRegion: "atl1",
	}, cfg)
}

func TestResolve_PathStyleRootDomain(t *testing.T) {
	cfg, err := Resolve(RawBucketConfig{
		BucketURL: "https://digitaloceanspaces.com/mybucket",
		AccessKey: "AK",
		SecretKey: "SK",
	})
	require.NoError(t, err)
	assert.Equal(t, "mybucket", cfg.BucketName)
	assert.Equal(t, DefaultRegion, cfg.BucketRegion)
}

func TestResolve_Derivation(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantName   string
		wantRegion string
	}{
		{"subdomain form", "https://bucket.fra1.digitaloceanspaces.com", "bucket", "fra1"},
		{"subdomain with path", "https://bucket.sgp1.digitaloceanspaces.com/some/prefix/", "bucket", "sgp1"},
		{"region endpoint path style", "https://nyc3.digitaloceanspaces.com/b", "nyc3", DefaultRegion},
		{"provider label second", "https://bucket.digitaloceanspaces.com", "bucket", DefaultRegion},
		{"two labels with path", "http://minio.local/data/x", "data", "local"},
		{"uppercase host", "https://Media.AMS3.DigitalOceanSpaces.com", "media", "ams3"},
		{"port is ignored", "http://bucket.region.example.com:9000", "bucket", "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(RawBucketConfig{BucketURL: tt.url, AccessKey: "a", SecretKey: "s"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, cfg.BucketName)
			assert.Equal(t, tt.wantRegion, cfg.BucketRegion)
		})
	}
}

func TestResolve_ExplicitNameAndRegionWin(t *testing.T) {
	cfg, err := Resolve(RawBucketConfig{
		BucketURL:    "https://localhost",
		AccessKey:    "a",
		SecretKey:    "s",
		BucketName:   "explicit",
		BucketRegion: "eu-west-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.BucketName)
	assert.Equal(t, "eu-west-1", cfg.BucketRegion)
}

func TestResolve_ExplicitNameOnly(t *testing.T) {
	cfg, err := Resolve(RawBucketConfig{
		BucketURL:  "https://localhost:9000",
		AccessKey:  "a",
		SecretKey:  "s",
		BucketName: "dicom",
	})
	require.NoError(t, err)
	assert.Equal(t, "dicom", cfg.BucketName)
	assert.Equal(t, DefaultRegion, cfg.BucketRegion)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name       string
		raw        RawBucketConfig
		wantField  string
		wantReason string
	}{
		{"empty url", RawBucketConfig{AccessKey: "a", SecretKey: "s"}, EnvBucketURL, ReasonInvalidURL},
		{"no scheme", RawBucketConfig{BucketURL: "medsight.atl1.digitaloceanspaces.com", AccessKey: "a", SecretKey: "s"}, EnvBucketURL, ReasonInvalidURL},
		{"no host", RawBucketConfig{BucketURL: "https://", AccessKey: "a", SecretKey: "s"}, EnvBucketURL, ReasonInvalidURL},
		{"ftp scheme", RawBucketConfig{BucketURL: "ftp://a.b.c", AccessKey: "a", SecretKey: "s"}, EnvBucketURL, ReasonInvalidURL},
		{"unparsable", RawBucketConfig{BucketURL: "https://bad host/%zz", AccessKey: "a", SecretKey: "s"}, EnvBucketURL, ReasonInvalidURL},
		{"blank access key", RawBucketConfig{BucketURL: "https://a.b.c", AccessKey: "   ", SecretKey: "s"}, EnvBucketAccessKey, ReasonMissingKey},
		{"missing secret key", RawBucketConfig{BucketURL: "https://a.b.c", AccessKey: "a"}, EnvBucketSecretKey, ReasonMissingKey},
		{"no dot no path", RawBucketConfig{BucketURL: "http://localhost", AccessKey: "a", SecretKey: "s"}, EnvBucketName, ReasonNoBucketName},
		{"no dot with path", RawBucketConfig{BucketURL: "http://localhost/bucket", AccessKey: "a", SecretKey: "s"}, EnvBucketName, ReasonNoBucketName},
		{"two labels no path", RawBucketConfig{BucketURL: "https://digitaloceanspaces.com/", AccessKey: "a", SecretKey: "s"}, EnvBucketName, ReasonNoBucketName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.wantField, cerr.Field)
			assert.Equal(t, tt.wantReason, cerr.Reason)
		})
	}
}

func TestResolve_URLCheckedBeforeKeys(t *testing.T) {
	_, err := Resolve(RawBucketConfig{})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, EnvBucketURL, cerr.Field)
}

func TestResolve_Idempotent(t *testing.T) {
	raw := RawBucketConfig{
		BucketURL: "https://medsight.atl1.digitaloceanspaces.com",
		AccessKey: " AK",
		SecretKey: "SK ",
	}
	first, err := Resolve(raw)
	require.NoError(t, err)
	second, err := Resolve(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Field: EnvBucketURL, Reason: ReasonInvalidURL}
	assert.Equal(t, "BUCKET_URL: invalid bucket URL", err.Error())
	assert.Equal(t, "x", (&ConfigError{Reason: "x"}).Error())
}

func TestBucketConfig_LogsWithoutSecret(t *testing.T) {
	var buf = newLogBuffer(t)
	cfg := BucketConfig{BucketURL: "https://b.r.host", AccessKey: "AKIAEXAMPLE", SecretKey: "topsecret", BucketName: "b", BucketRegion: "r"}
	buf.logger.Info().Object("bucket", cfg).Msg("x")

	out := buf.String()
	assert.NotContains(t, out, "topsecret")
	assert.NotContains(t, out, "AKIAEXAMPLE")
	assert.Contains(t, out, `"bucket_name":"b"`)
}

func TestBucketConfig_LogsWithoutSecrets(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	l.Info().Object("bucket", BucketConfig{
		BucketURL:    "https://medsight.atl1.digitaloceanspaces.com",
		AccessKey:    "DO00EXAMPLEKEY",
		SecretKey:    "topsecretvalue",
		BucketName:   "medsight",
		BucketRegion: "atl1",
	}).Msg("x")

	out := buf.String()
	assert.Contains(t, out, `"bucket_name":"medsight"`)
	assert.Contains(t, out, `"access_key":"DO00***"`)
	assert.NotContains(t, out, "EXAMPLEKEY")
	assert.NotContains(t, out, "topsecretvalue")
}
