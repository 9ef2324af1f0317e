// Package app builds the validation pipeline from configuration. The HTTP
// server and the CLI share it so both grade documents identically.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"doccheck/internal/consistency"
	consistencyMetrics "doccheck/internal/consistency/metrics"
	"doccheck/internal/embedding"
	embeddingMetrics "doccheck/internal/embedding/metrics"
	"doccheck/internal/platform/config"
	"doccheck/internal/platform/redis"
	ratelimitMetrics "doccheck/internal/ratelimit/metrics"
	ratelimitMW "doccheck/internal/ratelimit/middleware"
	"doccheck/internal/ratelimit/store/bucket"
	"doccheck/pkg/platform/circuit"
)

// Pipeline is the assembled evaluator and its optional embedding service.
type Pipeline struct {
	Evaluator *consistency.Evaluator
	// Embedding is nil when semantic comparison is disabled.
	Embedding *embedding.Service
	// RateLimiter is nil when the per-caller limit is off.
	RateLimiter *ratelimitMW.Middleware

	redis       *redis.Client
	redisDialed bool
}

// Close releases connections opened by Build.
func (p *Pipeline) Close() error {
	if p.redis != nil {
		return p.redis.Close()
	}
	return nil
}

// Build assembles the evaluator described by cfg. An embedding backend that
// cannot be constructed is logged and skipped; descriptions then use
// containment. A nil registerer skips metrics.
func Build(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	thresholds, err := consistency.LoadThresholds(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{}
	opts := []consistency.Option{
		consistency.WithLogger(logger),
		consistency.WithThresholds(thresholds),
	}
	if reg != nil {
		opts = append(opts, consistency.WithMetrics(consistencyMetrics.NewWithRegistry(reg)))
	}

	svc, err := p.buildEmbedding(ctx, cfg, logger, reg)
	if err != nil {
		return nil, err
	}
	if svc != nil {
		p.Embedding = svc
		opts = append(opts, consistency.WithEncoder(svc))
	}

	p.Evaluator, err = consistency.New(opts...)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.RateLimiter = p.buildRateLimiter(ctx, cfg, logger, reg)
	return p, nil
}

func (p *Pipeline) buildEmbedding(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (*embedding.Service, error) {
	engine, err := embedding.NewEngine(ctx, cfg.Embedding.Config)
	if errors.Is(err, embedding.ErrDisabled) {
		logger.InfoContext(ctx, "semantic description comparison disabled")
		return nil, nil
	}
	if err != nil {
		logger.WarnContext(ctx, "embedding backend unavailable, using containment",
			"provider", cfg.Embedding.Provider,
			"error", err,
		)
		return nil, nil
	}

	opts := []embedding.Option{
		embedding.WithCache(p.buildCache(ctx, cfg, logger)),
		embedding.WithLogger(logger),
		embedding.WithTimeout(cfg.Embedding.Timeout),
		embedding.WithMaxConcurrent(cfg.Embedding.MaxConcurrent),
		embedding.WithBreaker(circuit.New("embedding", circuit.WithCooldown(cfg.Embedding.BreakerCooldown))),
	}
	if reg != nil {
		opts = append(opts, embedding.WithMetrics(embeddingMetrics.NewWithRegistry(reg)))
	}
	svc, err := embedding.NewService(engine, opts...)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "semantic description comparison enabled",
		"engine", svc.Name(),
	)
	return svc, nil
}

// buildCache prefers redis so vectors survive restarts and are shared across
// replicas. An unreachable redis degrades to the in-process cache.
func (p *Pipeline) buildCache(ctx context.Context, cfg config.Server, logger *slog.Logger) embedding.Cache {
	client := p.redisClient(ctx, cfg, logger)
	if client == nil {
		return embedding.NewMemoryCache(cfg.Embedding.CacheSize, cfg.Embedding.CacheTTL)
	}
	logger.InfoContext(ctx, "embedding cache backed by redis")
	return embedding.NewRedisCache(client.Client, cfg.Embedding.CacheTTL)
}

// buildRateLimiter shares counts through redis when it is reachable so the
// limit holds across replicas.
func (p *Pipeline) buildRateLimiter(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) *ratelimitMW.Middleware {
	if !cfg.RateLimit.Enabled() {
		logger.InfoContext(ctx, "validation rate limit disabled")
		return nil
	}

	var limiter ratelimitMW.Limiter = bucket.New()
	if client := p.redisClient(ctx, cfg, logger); client != nil {
		limiter = bucket.NewRedisStore(client.Client)
	}

	opts := []ratelimitMW.Option{ratelimitMW.WithLogger(logger)}
	if reg != nil {
		opts = append(opts, ratelimitMW.WithMetrics(ratelimitMetrics.NewWithRegistry(reg)))
	}
	logger.InfoContext(ctx, "validation rate limit enabled",
		"requests", cfg.RateLimit.Requests,
		"window", cfg.RateLimit.Window.String(),
	)
	return ratelimitMW.New(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, opts...)
}

// redisClient dials redis at most once per Build. It returns nil when redis
// is not configured or unreachable.
func (p *Pipeline) redisClient(ctx context.Context, cfg config.Server, logger *slog.Logger) *redis.Client {
	if p.redisDialed {
		return p.redis
	}
	p.redisDialed = true

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logger.WarnContext(ctx, "redis unavailable, using in-process stores",
			"error", err,
		)
		return nil
	}
	p.redis = client
	return client
}
