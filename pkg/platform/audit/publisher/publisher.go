package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	audit "doccheck/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit when the async buffer has no room.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

// Publisher appends events to a Store, optionally off the request path.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	closed  bool
	events  chan audit.Event
	done    chan struct{}
	dropped atomic.Int64
}

type Option func(*Publisher)

// WithAsyncBuffer hands events to a background writer through a buffer of
// size n. A full buffer drops the event.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.events = make(chan audit.Event, n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.events != nil {
		p.done = make(chan struct{})
		go p.run()
	}
	return p
}

// Emit records event, stamping it when Timestamp is zero.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if p.events == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.events <- event:
		return nil
	default:
		p.dropped.Add(1)
		return ErrBufferFull
	}
}

// ListRecent returns up to limit events, newest first.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Dropped returns how many events were refused because the buffer was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops accepting events and waits for buffered ones to be written.
func (p *Publisher) Close() {
	if p.events == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()
	<-p.done
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to append audit event",
				"action", event.Action,
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
}
