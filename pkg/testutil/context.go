package testutil

import (
	"net/http"

	"doccheck/pkg/requestcontext"
)

// RequestMeta is what the middleware chain would have put on the context.
type RequestMeta struct {
	RequestID string
	Caller    string
	ClientIP  string
}

// WithRequestMeta sets the non-empty fields of meta on req's context, for
// handler tests that skip the middleware chain.
func WithRequestMeta(req *http.Request, meta RequestMeta) *http.Request {
	ctx := req.Context()
	if meta.RequestID != "" {
		ctx = requestcontext.WithRequestID(ctx, meta.RequestID)
	}
	if meta.Caller != "" {
		ctx = requestcontext.WithCaller(ctx, meta.Caller)
	}
	if meta.ClientIP != "" {
		ctx = requestcontext.WithClientIP(ctx, meta.ClientIP)
	}
	return req.WithContext(ctx)
}
