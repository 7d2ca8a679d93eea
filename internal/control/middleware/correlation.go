// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"runtime"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	controlhttp "github.com/Symbiot01/medsight/internal/control/http"
	"github.com/Symbiot01/medsight/internal/log"
	"github.com/Symbiot01/medsight/internal/reqctx"
)

// Correlation tags every request with a RequestContext, times it and emits
// one summary log line per completed request. The inbound X-Request-Id is
// reused verbatim; otherwise a UUID is generated. The id is echoed on the
// response.
//
// OPTIONS requests and responses with status >= 400 are logged at warn level
// together with the CORS negotiation headers. Panics from downstream are
// logged at error level and re-raised.
//
// It must be the outermost stage so that requests answered by the CORS
// stage are observed too.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := reqctx.New(r.Header.Get(controlhttp.HeaderRequestID))
		r = r.WithContext(reqctx.With(r.Context(), rc))

		logger := log.WithComponentFromContext(r.Context(), "http")
		logger.Debug().
			Str(log.FieldEvent, "request_started").
			Str(log.FieldMethod, r.Method).
			Str(log.FieldPath, r.URL.Path).
			Msg("request_started")

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec != http.ErrAbortHandler {
				buf := make([]byte, 8192)
				n := runtime.Stack(buf, false)
				corsFields(logger.Error(), r).
					Str(log.FieldEvent, "request_failed").
					Str(log.FieldMethod, r.Method).
					Str(log.FieldPath, r.URL.Path).
					Int64(log.FieldDurationMS, rc.Elapsed().Milliseconds()).
					Interface("panic", rec).
					Str("stack_trace", string(buf[:n])).
					Msg("request_failed")
			}
			panic(rec)
		}()

		w.Header().Set(controlhttp.HeaderRequestID, rc.RequestID)
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		durationMS := rc.Elapsed().Milliseconds()

		if r.Method == http.MethodOptions || status >= http.StatusBadRequest {
			corsFields(logger.Warn(), r).
				Str(log.FieldEvent, "request_done").
				Str(log.FieldMethod, r.Method).
				Str(log.FieldPath, r.URL.Path).
				Int(log.FieldStatus, status).
				Int64(log.FieldDurationMS, durationMS).
				Msg("request_done")
			return
		}
		logger.Info().
			Str(log.FieldEvent, "request_done").
			Str(log.FieldMethod, r.Method).
			Str(log.FieldPath, r.URL.Path).
			Int(log.FieldStatus, status).
			Int64(log.FieldDurationMS, durationMS).
			Msg("request_done")
	})
}

func corsFields(e *zerolog.Event, r *http.Request) *zerolog.Event {
	return e.
		Str(log.FieldOrigin, r.Header.Get(controlhttp.HeaderOrigin)).
		Str(log.FieldACRMethod, r.Header.Get(controlhttp.HeaderACRMethod)).
		Str(log.FieldACRHeaders, r.Header.Get(controlhttp.HeaderACRHeaders))
}
