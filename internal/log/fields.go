// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldService   = "service"
	FieldVersion   = "version"

	FieldEvent     = "event"
	FieldComponent = "component"

	// Request fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldOrigin     = "origin"
	FieldACRMethod  = "acr_method"
	FieldACRHeaders = "acr_headers"
	FieldDetail     = "detail"
	FieldErrors     = "errors"

	// Storage fields
	FieldBucket   = "bucket"
	FieldRegion   = "region"
	FieldEndpoint = "endpoint"
)
