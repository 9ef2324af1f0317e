package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"doccheck/internal/embedding/metrics"
	"doccheck/pkg/platform/circuit"
)

// stubEngine returns a fixed vector, or err, and can block until released.
type stubEngine struct {
	mu       sync.Mutex
	calls    int
	err      error
	vec      []float32
	block    chan struct{}
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (e *stubEngine) Embed(ctx context.Context, _ string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	err := e.err
	e.mu.Unlock()

	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if e.block != nil {
		select {
		case <-e.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return e.vec, nil
}

func (e *stubEngine) Name() string { return "stub:test" }

func (e *stubEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// =============================================================================
// Embedding Service Test Suite
// =============================================================================
// Justification for unit tests: the concurrency bound, breaker transitions and
// timeout handling decide whether callers fall back. Those paths depend on
// backend failures that feature tests cannot provoke reliably.

type ServiceSuite struct {
	suite.Suite
	engine  *stubEngine
	metrics *metrics.Metrics
	running goleak.Option
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.running = goleak.IgnoreCurrent()
	s.engine = &stubEngine{vec: []float32{0.6, 0.8}}
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
}

// Every Encode must have returned, including callers parked on the semaphore.
func (s *ServiceSuite) TearDownTest() {
	goleak.VerifyNone(s.T(), s.running)
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	svc, err := NewService(s.engine, append([]Option{WithMetrics(s.metrics)}, opts...)...)
	s.Require().NoError(err)
	return svc
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ServiceSuite) TestNewServiceRequiresEngine() {
	_, err := NewService(nil)
	s.ErrorContains(err, "engine is required")
}

// =============================================================================
// Encode
// =============================================================================

func (s *ServiceSuite) TestEncodeReturnsVector() {
	svc := s.newService()

	vec, err := svc.Encode(context.Background(), "steel bolts")
	s.Require().NoError(err)
	s.Equal([]float32{0.6, 0.8}, vec)
	s.Equal("stub:test", svc.Name())
	s.True(svc.Healthy())
}

func (s *ServiceSuite) TestEncodeUsesCache() {
	cache := NewMemoryCache(8, time.Minute)
	svc := s.newService(WithCache(cache))

	_, err := svc.Encode(context.Background(), "steel bolts")
	s.Require().NoError(err)
	_, err = svc.Encode(context.Background(), "steel bolts")
	s.Require().NoError(err)

	s.Equal(1, s.engine.Calls())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("hit")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("miss")))
}

func (s *ServiceSuite) TestEncodeWrapsBackendError() {
	s.engine.err = errors.New("connection refused")
	svc := s.newService()

	_, err := svc.Encode(context.Background(), "x")
	s.ErrorContains(err, "embed with stub:test")
	s.ErrorContains(err, "connection refused")
}

func (s *ServiceSuite) TestEncodeTimesOut() {
	s.engine.block = make(chan struct{})
	svc := s.newService(WithTimeout(20 * time.Millisecond))

	_, err := svc.Encode(context.Background(), "x")
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *ServiceSuite) TestEncodeHonoursCallerCancellation() {
	s.engine.block = make(chan struct{})
	svc := s.newService(WithMaxConcurrent(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Encode(ctx, "x")
		done <- err
	}()
	cancel()

	s.ErrorIs(<-done, context.Canceled)
}

// =============================================================================
// Circuit Breaker
// =============================================================================

func (s *ServiceSuite) TestBreakerOpensAfterFailures() {
	s.engine.err = errors.New("boom")
	breaker := circuit.New("embedding-test",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Hour),
	)
	svc := s.newService(WithBreaker(breaker))

	for range 2 {
		_, err := svc.Encode(context.Background(), "x")
		s.Error(err)
	}
	s.False(svc.Healthy())

	_, err := svc.Encode(context.Background(), "x")
	s.ErrorIs(err, ErrCircuitOpen)
	s.Equal(2, s.engine.Calls())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CircuitRejections))
}

func (s *ServiceSuite) TestDefaultBreakerStopsCallingFailingBackend() {
	s.engine.err = errors.New("connection refused")
	svc := s.newService()

	for range 20 {
		_, _ = svc.Encode(context.Background(), "x")
	}

	s.False(svc.Healthy())
	s.Equal(5, s.engine.Calls(), "calls stop once the breaker opens")
	s.Equal(15.0, testutil.ToFloat64(s.metrics.CircuitRejections))
}

func (s *ServiceSuite) TestBreakerClosesAfterSuccessfulProbes() {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.engine.err = errors.New("boom")
	breaker := circuit.New("embedding-test",
		circuit.WithFailureThreshold(1),
		circuit.WithSuccessThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	svc := s.newService(WithBreaker(breaker))

	_, _ = svc.Encode(context.Background(), "x")
	s.Require().False(svc.Healthy())

	_, err := svc.Encode(context.Background(), "x")
	s.Require().ErrorIs(err, ErrCircuitOpen)

	s.engine.mu.Lock()
	s.engine.err = nil
	s.engine.mu.Unlock()
	now = now.Add(time.Minute)

	_, err = svc.Encode(context.Background(), "x")
	s.Require().NoError(err)
	s.False(svc.Healthy())

	_, err = svc.Encode(context.Background(), "y")
	s.Require().NoError(err)
	s.True(svc.Healthy())
}

// =============================================================================
// Concurrency Bound
// =============================================================================

func (s *ServiceSuite) TestConcurrentCallsAreBounded() {
	s.engine.block = make(chan struct{})
	svc := s.newService(WithMaxConcurrent(2), WithTimeout(5*time.Second))

	const callers = 6
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Encode(context.Background(), "x")
		}()
	}

	s.Eventually(func() bool { return s.engine.inFlight.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(s.engine.block)
	wg.Wait()

	s.Equal(int32(2), s.engine.peak.Load())
	s.Equal(callers, s.engine.Calls())
}
