// SPDX-License-Identifier: MIT

// Package reqctx carries the per-request correlation record through a
// request's context.
package reqctx

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

// RequestContext is created once per inbound request at pipeline entry and
// discarded when the response has been written.
type RequestContext struct {
	RequestID string
	Start     time.Time
}

// New returns a RequestContext for id, generating a fresh UUIDv4 when id is
// empty. Start is taken from the monotonic clock.
func New(id string) *RequestContext {
	if id == "" {
		id = uuid.NewString()
	}
	return &RequestContext{RequestID: id, Start: time.Now()}
}

// Elapsed reports the time since Start.
func (rc *RequestContext) Elapsed() time.Duration {
	return time.Since(rc.Start)
}

// With stores rc in ctx.
func With(ctx context.Context, rc *RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, rc)
}

// From extracts the RequestContext from ctx if one was attached.
func From(ctx context.Context) (*RequestContext, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(ctxKey{}).(*RequestContext)
	if !ok || rc == nil {
		return nil, false
	}
	return rc, true
}

// RequestID returns the correlation id attached to ctx, or "" when none is.
func RequestID(ctx context.Context) string {
	if rc, ok := From(ctx); ok {
		return rc.RequestID
	}
	return ""
}
