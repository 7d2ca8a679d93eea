// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/Symbiot01/medsight/internal/control/http/problem"
)

// RateLimit limits each client IP to requestsPerMinute using a sliding
// window. Rejections are rendered as a 429 error envelope.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	window := time.Minute
	return httprate.Limit(
		requestsPerMinute,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			herr := problem.New(http.StatusTooManyRequests, "Too many requests. Please try again later.").
				WithHeader("Retry-After", strconv.Itoa(int(window.Seconds())))
			problem.WriteHTTPError(w, r, herr)
		}),
	)
}
