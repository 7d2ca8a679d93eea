// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	HTTPRequestIDKey = "http.request_id"

	StorageBucketKey = "storage.bucket"
	StorageRegionKey = "storage.region"
	StorageKeyKey    = "storage.key"
)

// StorageAttributes creates object storage span attributes. Empty values are omitted.
func StorageAttributes(bucket, region, key string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if bucket != "" {
		attrs = append(attrs, attribute.String(StorageBucketKey, bucket))
	}
	if region != "" {
		attrs = append(attrs, attribute.String(StorageRegionKey, region))
	}
	if key != "" {
		attrs = append(attrs, attribute.String(StorageKeyKey, key))
	}
	return attrs
}
