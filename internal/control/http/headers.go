// SPDX-License-Identifier: MIT

package http

// Canonical Header Names
const (
	// HeaderRequestID carries the correlation id on requests and responses.
	HeaderRequestID = "X-Request-Id"

	HeaderOrigin     = "Origin"
	HeaderACRMethod  = "Access-Control-Request-Method"
	HeaderACRHeaders = "Access-Control-Request-Headers"
)
