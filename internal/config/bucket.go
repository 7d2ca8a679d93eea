// SPDX-License-Identifier: MIT

package config

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultRegion is used when the region can neither be read from the
	// environment nor from the bucket URL. It is not checked against the
	// provider's region list.
	DefaultRegion = "nyc3"

	// providerRootDomain is the Spaces root domain. A hostname equal to it,
	// or whose second label is providerRootLabel, carries no region.
	providerRootDomain = "digitaloceanspaces.com"
	providerRootLabel  = "digitaloceanspaces"
)

// Error reasons surfaced through ConfigError.
const (
	ReasonInvalidURL   = "invalid bucket URL"
	ReasonNoBucketName = "could not extract bucket name from URL"
	ReasonMissingKey   = "must be provided and non-empty"
)

// RawBucketConfig is the unvalidated bucket input as read from the environment.
// Empty BucketName/BucketRegion mean "derive from BucketURL".
type RawBucketConfig struct {
	BucketURL    string
	AccessKey    string
	SecretKey    string
	BucketName   string
	BucketRegion string
}

// BucketConfig holds resolved object storage coordinates. A value returned by
// Resolve without error has all fields set.
type BucketConfig struct {
	BucketURL    string
	AccessKey    string
	SecretKey    string
	BucketName   string
	BucketRegion string
}

// MarshalZerologObject logs the coordinates without the secret key.
func (c BucketConfig) MarshalZerologObject(e *zerolog.Event) {
	e.Str("bucket_url", MaskURL(c.BucketURL)).
		Str("bucket_name", c.BucketName).
		Str("bucket_region", c.BucketRegion).
		Str("access_key", MaskKey(c.AccessKey))
}

// Resolve validates raw and fills in the bucket name and region from the
// bucket URL when they were not supplied. The URL must follow the Spaces
// conventions https://<bucket>.<region>.digitaloceanspaces.com or
// https://<region>.digitaloceanspaces.com/<bucket>.
func Resolve(raw RawBucketConfig) (BucketConfig, error) {
	u, err := parseBucketURL(raw.BucketURL)
	if err != nil {
		return BucketConfig{}, err
	}

	accessKey := strings.TrimSpace(raw.AccessKey)
	if accessKey == "" {
		return BucketConfig{}, &ConfigError{Field: EnvBucketAccessKey, Reason: ReasonMissingKey}
	}
	secretKey := strings.TrimSpace(raw.SecretKey)
	if secretKey == "" {
		return BucketConfig{}, &ConfigError{Field: EnvBucketSecretKey, Reason: ReasonMissingKey}
	}

	hostname := strings.ToLower(u.Hostname())

	name := strings.TrimSpace(raw.BucketName)
	if name == "" {
		name, err = bucketNameFromURL(hostname, u.Path)
		if err != nil {
			return BucketConfig{}, err
		}
	}

	region := strings.TrimSpace(raw.BucketRegion)
	if region == "" {
		region = regionFromHost(hostname)
	}

	return BucketConfig{
		BucketURL:    raw.BucketURL,
		AccessKey:    accessKey,
		SecretKey:    secretKey,
		BucketName:   name,
		BucketRegion: region,
	}, nil
}

func parseBucketURL(raw string) (*url.URL, error) {
	invalid := &ConfigError{Field: EnvBucketURL, Reason: ReasonInvalidURL}
	if raw == "" {
		return nil, invalid
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return nil, invalid
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalid
	}
	return u, nil
}

func bucketNameFromURL(hostname, path string) (string, error) {
	if strings.Contains(hostname, ".") {
		labels := strings.Split(hostname, ".")
		if len(labels) >= 3 {
			return labels[0], nil
		}
		segments := strings.Split(strings.Trim(path, "/"), "/")
		if segments[0] != "" {
			return segments[0], nil
		}
	}
	return "", &ConfigError{Field: EnvBucketName, Reason: ReasonNoBucketName}
}

func regionFromHost(hostname string) string {
	labels := strings.Split(hostname, ".")
	if len(labels) < 2 {
		return DefaultRegion
	}
	if labels[1] == providerRootLabel || hostname == providerRootDomain {
		return DefaultRegion
	}
	return labels[1]
}
