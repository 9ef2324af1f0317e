// Package middleware limits how often one caller may run validations. OCR
// and embedding calls make each request expensive, so the limit sits in front
// of the validation endpoints only.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"doccheck/internal/ratelimit/metrics"
	"doccheck/internal/ratelimit/models"
	"doccheck/pkg/platform/httputil"
	"doccheck/pkg/requestcontext"
)

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter Limiter
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// New allows limit requests per window for each caller.
func New(limiter Limiter, limit int, window time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	return m
}

// RateLimit keys on the authenticated caller, or the client IP when auth is
// off. A limiter error lets the request through.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := limitKey(ctx)

			result, err := m.limiter.Allow(ctx, key, m.limit, m.window)
			if err != nil {
				m.metrics.IncrementDecision("error")
				m.logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
					"request_id", requestcontext.RequestID(ctx),
					"key", key,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.metrics.IncrementDecision("rejected")
				m.logger.InfoContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"key", key,
					"retry_after", result.RetryAfter,
				)
				writeRateLimitExceeded(w, result)
				return
			}

			m.metrics.IncrementDecision("allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func limitKey(ctx context.Context) string {
	if caller := requestcontext.Caller(ctx); caller != "" {
		return "caller:" + caller
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many validation requests. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
