// Package httptransport assembles the service's HTTP surface: the shared
// middleware chain, the validation endpoints and the operator endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	consistencyHandler "doccheck/internal/consistency/handler"
	"doccheck/internal/platform/metrics"
	"doccheck/internal/platform/middleware"
	ratelimitMW "doccheck/internal/ratelimit/middleware"
	"doccheck/pkg/platform/middleware/admin"
	"doccheck/pkg/platform/middleware/auth"
	"doccheck/pkg/platform/middleware/metadata"
	request "doccheck/pkg/platform/middleware/request"
	"doccheck/pkg/platform/middleware/requesttime"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	Handler *consistencyHandler.Handler
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Gatherer backs GET /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	// TokenValidator protects the validation endpoints; nil leaves them open.
	TokenValidator auth.JWTValidator
	// AdminToken protects GET /metrics and /admin routes; empty leaves them open.
	AdminToken     string
	RequestTimeout time.Duration
	// RateLimiter bounds validations per caller; nil disables it.
	RateLimiter *ratelimitMW.Middleware
}

// NewRouter wires all public endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(logger))
	r.Use(middleware.LatencyMiddleware(cfg.Metrics))

	cfg.Handler.RegisterPublic(r)
	r.Group(func(ops chi.Router) {
		ops.Use(admin.RequireAdminToken(cfg.AdminToken, logger))
		ops.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		cfg.Handler.RegisterAdmin(ops)
	})

	r.Group(func(api chi.Router) {
		api.Use(request.Timeout(timeout))
		api.Use(request.ContentTypeJSON)
		api.Use(auth.RequireAuth(cfg.TokenValidator, logger))
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.RateLimit())
		}
		cfg.Handler.Register(api)
	})

	return r
}
