// SPDX-License-Identifier: MIT

// Package storage builds an S3-compatible client for the configured bucket.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Symbiot01/medsight/internal/config"
)

// Presigner issues time-limited download URLs and checks bucket reachability.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Ping(ctx context.Context) error
}

// Client is a Presigner backed by aws-sdk-go-v2.
type Client struct {
	s3       *s3.Client
	presign  *s3.PresignClient
	bucket   string
	endpoint string
}

// Endpoint derives the service endpoint from the bucket URL. A leading
// bucket label in a virtual-hosted URL is stripped, as is any path:
// https://medsight.atl1.digitaloceanspaces.com becomes
// https://atl1.digitaloceanspaces.com. The bucket label is stripped even when
// BucketName names a different bucket, otherwise the SDK would address
// <name>.<label>.<region>.
func Endpoint(cfg config.BucketConfig) (string, error) {
	u, err := url.Parse(cfg.BucketURL)
	if err != nil {
		return "", fmt.Errorf("parse bucket url: %w", err)
	}
	host := u.Host
	if virtualHosted(u, cfg) {
		host = host[strings.Index(host, ".")+1:]
	}
	return (&url.URL{Scheme: u.Scheme, Host: host}).String(), nil
}

// virtualHosted reports whether the first host label of u is a bucket rather
// than part of the service host: it names the bucket, or the URL has no path
// and the label is not the region itself.
func virtualHosted(u *url.URL, cfg config.BucketConfig) bool {
	labels := strings.Split(strings.ToLower(u.Hostname()), ".")
	if len(labels) < 3 {
		return false
	}
	if labels[0] == strings.ToLower(cfg.BucketName) {
		return true
	}
	return strings.Trim(u.Path, "/") == "" && labels[0] != strings.ToLower(cfg.BucketRegion)
}

// New returns a Client using the static credentials and region of cfg.
func New(ctx context.Context, cfg config.BucketConfig) (*Client, error) {
	endpoint, err := Endpoint(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.BucketRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &Client{
		s3:       client,
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.BucketName,
		endpoint: endpoint,
	}, nil
}

// Bucket returns the bucket name the client addresses.
func (c *Client) Bucket() string { return c.bucket }

// EndpointURL returns the derived service endpoint.
func (c *Client) EndpointURL() string { return c.endpoint }

// PresignGet returns a GET URL for key valid for ttl. It performs no network I/O.
func (c *Client) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return req.URL, nil
}

// Ping issues a HeadBucket request.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket: %w", err)
	}
	return nil
}
