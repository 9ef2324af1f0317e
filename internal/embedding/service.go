package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"

	"doccheck/internal/embedding/metrics"
	"doccheck/pkg/platform/circuit"
	"doccheck/pkg/requestcontext"
)

// ErrCircuitOpen is returned while the backend is considered unhealthy.
var ErrCircuitOpen = errors.New("embedding circuit open")

const (
	defaultMaxConcurrent = 4
	defaultTimeout       = 5 * time.Second
)

var tracer = otel.Tracer("doccheck/internal/embedding")

// Service wraps an Engine with the limits every caller needs: bounded
// concurrency, a per-call timeout, a circuit breaker and an optional cache.
// It is safe for concurrent use.
type Service struct {
	engine  Engine
	cache   Cache
	sem     *semaphore.Weighted
	timeout time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithMaxConcurrent bounds simultaneous backend calls.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		if b != nil {
			s.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs a Service around engine.
func NewService(engine Engine, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, errors.New("embedding engine is required")
	}
	s := &Service{
		engine:  engine,
		sem:     semaphore.NewWeighted(defaultMaxConcurrent),
		timeout: defaultTimeout,
		breaker: circuit.New("embedding"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s, nil
}

// Name returns the wrapped engine's name.
func (s *Service) Name() string {
	return s.engine.Name()
}

// Healthy reports false while the circuit breaker is open.
func (s *Service) Healthy() bool {
	return !s.breaker.IsOpen()
}

// Encode returns the embedding for text.
func (s *Service) Encode(ctx context.Context, text string) ([]float32, error) {
	ctx, span := tracer.Start(ctx, "embedding.Encode")
	defer span.End()
	span.SetAttributes(attribute.String("embedding.engine", s.engine.Name()))

	key := CacheKey(s.engine.Name(), text)
	if vec, ok := s.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("embedding.cache_hit", true))
		return vec, nil
	}

	if !s.breaker.Allow() {
		s.metrics.IncrementCircuitRejection()
		span.SetStatus(codes.Error, ErrCircuitOpen.Error())
		return nil, ErrCircuitOpen
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("wait for embedding slot: %w", err)
	}
	s.metrics.AddInFlight(1)
	defer func() {
		s.metrics.AddInFlight(-1)
		s.sem.Release(1)
	}()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	vec, err := s.engine.Embed(callCtx, text)
	s.metrics.ObserveEncode(s.engine.Name(), err == nil, time.Since(start))
	if err != nil {
		s.recordFailure(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "embed failed")
		return nil, fmt.Errorf("embed with %s: %w", s.engine.Name(), err)
	}
	s.recordSuccess(ctx)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, vec); err != nil {
			s.logger.WarnContext(ctx, "embedding cache write failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	return vec, nil
}

func (s *Service) lookup(ctx context.Context, key string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	vec, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncrementCacheLookup("error")
		s.logger.WarnContext(ctx, "embedding cache read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, false
	case ok:
		s.metrics.IncrementCacheLookup("hit")
		return vec, true
	default:
		s.metrics.IncrementCacheLookup("miss")
		return nil, false
	}
}

func (s *Service) recordFailure(ctx context.Context) {
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "embedding circuit opened",
			"engine", s.engine.Name(),
		)
	}
}

func (s *Service) recordSuccess(ctx context.Context) {
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "embedding circuit closed",
			"engine", s.engine.Name(),
		)
	}
}
