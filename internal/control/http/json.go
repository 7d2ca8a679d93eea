// SPDX-License-Identifier: MIT

// Package http holds the shared HTTP vocabulary of the control plane:
// canonical header names and JSON response helpers.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/Symbiot01/medsight/internal/log"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "http")
		logger.Error().Err(err).Int(log.FieldStatus, status).Msg("failed to encode JSON response")
	}
}
