package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/aadya-khanna/OpenScore/pkg/platform/circuit"
)

// DegradedReporter is told when the cache switches backends.
type DegradedReporter interface {
	SetCacheDegraded(degraded bool)
}

// Fallback serves from a primary cache and switches to an in-process cache
// after repeated primary errors. The primary keeps being tried while the
// breaker is open. Errors are never returned to callers: a failing cache is
// a miss.
type Fallback struct {
	primary  Cache
	fallback *Memory
	breaker  *circuit.Breaker
	logger   *slog.Logger
	reporter DegradedReporter
}

// FallbackOption configures a Fallback.
type FallbackOption func(*Fallback)

// WithBreaker replaces the default breaker.
func WithBreaker(b *circuit.Breaker) FallbackOption {
	return func(f *Fallback) {
		if b != nil {
			f.breaker = b
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *slog.Logger) FallbackOption {
	return func(f *Fallback) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithReporter publishes the degraded state, usually to a gauge.
func WithReporter(r DegradedReporter) FallbackOption {
	return func(f *Fallback) {
		f.reporter = r
	}
}

// NewFallback wraps primary. A nil primary serves from memory only.
func NewFallback(primary Cache, fallback *Memory, opts ...FallbackOption) *Fallback {
	if fallback == nil {
		fallback = NewMemory()
	}
	f := &Fallback{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("documents-text-cache"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fallback) Get(ctx context.Context, key string) (string, bool, error) {
	if f.primary == nil {
		return f.fallback.Get(ctx, key)
	}

	if f.breaker.IsOpen() {
		if v, ok, _ := f.fallback.Get(ctx, key); ok {
			return v, true, nil
		}
	}

	v, ok, err := f.primary.Get(ctx, key)
	if err != nil {
		f.recordFailure(ctx, err)
		return f.fallback.Get(ctx, key)
	}
	f.recordSuccess(ctx)
	return v, ok, nil
}

func (f *Fallback) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.primary == nil {
		return f.fallback.Set(ctx, key, value, ttl)
	}

	if err := f.primary.Set(ctx, key, value, ttl); err != nil {
		f.recordFailure(ctx, err)
		return f.fallback.Set(ctx, key, value, ttl)
	}
	f.recordSuccess(ctx)
	if f.breaker.IsOpen() {
		return f.fallback.Set(ctx, key, value, ttl)
	}
	return nil
}

// Degraded reports whether the in-process cache is in use.
func (f *Fallback) Degraded() bool {
	return f.primary == nil || f.breaker.IsOpen()
}

func (f *Fallback) recordFailure(ctx context.Context, err error) {
	_, change := f.breaker.RecordFailure()
	if change.Opened {
		f.logger.WarnContext(ctx, "text cache degraded, using in-process fallback",
			"breaker", f.breaker.Name(),
			"error", err,
		)
		f.report(true)
	}
}

func (f *Fallback) recordSuccess(ctx context.Context) {
	_, change := f.breaker.RecordSuccess()
	if change.Closed {
		f.logger.InfoContext(ctx, "text cache recovered",
			"breaker", f.breaker.Name(),
		)
		f.report(false)
	}
}

func (f *Fallback) report(degraded bool) {
	if f.reporter != nil {
		f.reporter.SetCacheDegraded(degraded)
	}
}
