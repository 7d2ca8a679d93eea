// SPDX-License-Identifier: MIT

// Package problem translates the two expected handler failure kinds,
// request validation failures and explicit HTTP errors, into the JSON
// error envelope {"detail": ..., "requestId": ...}.
package problem

import (
	"errors"
	"fmt"
	"net/http"

	controlhttp "github.com/Symbiot01/medsight/internal/control/http"
	"github.com/Symbiot01/medsight/internal/log"
	"github.com/Symbiot01/medsight/internal/reqctx"
)

// Envelope is the body of every translated error response. RequestID is
// null when no RequestContext was attached upstream.
type Envelope struct {
	Detail    any     `json:"detail"`
	RequestID *string `json:"requestId"`
}

// FieldError describes one field-level validation failure.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError reports request data that does not match the expected shape.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request validation failed: %d error(s)", len(e.Errors))
}

// HTTPError is a handler's explicit, expected failure with a status code.
type HTTPError struct {
	Status  int
	Detail  string
	Headers http.Header
}

// New returns an HTTPError for status with detail as its message.
func New(status int, detail string) *HTTPError {
	return &HTTPError{Status: status, Detail: detail}
}

// WithHeader adds a header that is copied onto the error response.
func (e *HTTPError) WithHeader(key, value string) *HTTPError {
	if e.Headers == nil {
		e.Headers = make(http.Header)
	}
	e.Headers.Add(key, value)
	return e
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
}

func envelope(r *http.Request, detail any) Envelope {
	env := Envelope{Detail: detail}
	if rc, ok := reqctx.From(r.Context()); ok {
		id := rc.RequestID
		env.RequestID = &id
	}
	return env
}

// WriteValidation renders a 422 response listing the field errors.
func WriteValidation(w http.ResponseWriter, r *http.Request, verr *ValidationError) {
	errs := verr.Errors
	if errs == nil {
		errs = []FieldError{}
	}
	logger := log.WithComponentFromContext(r.Context(), "problem")
	logger.Warn().
		Str(log.FieldEvent, "validation_error").
		Str(log.FieldMethod, r.Method).
		Str(log.FieldPath, r.URL.Path).
		Interface(log.FieldErrors, errs).
		Msg("validation_error")

	controlhttp.WriteJSON(w, r, http.StatusUnprocessableEntity, envelope(r, errs))
}

// WriteHTTPError renders herr with its own status code and headers.
func WriteHTTPError(w http.ResponseWriter, r *http.Request, herr *HTTPError) {
	logger := log.WithComponentFromContext(r.Context(), "problem")
	logger.Info().
		Str(log.FieldEvent, "http_exception").
		Str(log.FieldMethod, r.Method).
		Str(log.FieldPath, r.URL.Path).
		Int(log.FieldStatus, herr.Status).
		Str(log.FieldDetail, herr.Detail).
		Msg("http_exception")

	for k, vs := range herr.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	controlhttp.WriteJSON(w, r, herr.Status, envelope(r, herr.Detail))
}

// WriteError translates err. Validation and HTTP errors get the JSON
// envelope; anything else is logged as an unhandled failure and answered with
// a bare 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		WriteValidation(w, r, verr)
		return
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		WriteHTTPError(w, r, herr)
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "problem")
	logger.Error().
		Err(err).
		Str(log.FieldEvent, "request_failed").
		Str(log.FieldMethod, r.Method).
		Str(log.FieldPath, r.URL.Path).
		Msg("request_failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to http.HandlerFunc, translating a returned error with
// WriteError. fn must not have written a response when it returns an error.
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError(w, r, err)
		}
	}
}
