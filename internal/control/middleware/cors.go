// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"

	"github.com/rs/cors"

	controlhttp "github.com/Symbiot01/medsight/internal/control/http"
)

var corsMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// CORS answers preflight requests for the allowed origins and decorates
// actual cross-origin responses. All methods and headers are allowed, and
// so are credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{controlhttp.HeaderRequestID},
		AllowCredentials: true,
	})
	return c.Handler
}
