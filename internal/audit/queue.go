package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
)

const (
	defaultQueueCapacity  = 1024
	defaultPublishTimeout = 10 * time.Second
)

// ErrQueueClosed is returned by Publish after Close.
var ErrQueueClosed = errors.New("audit: queue closed")

// Queue decouples callers from a slow sink. Publish never blocks: when the
// queue is full the oldest event is dropped. A single worker delivers events
// in order.
type Queue struct {
	sink           ports.EventPublisher
	logger         *slog.Logger
	metrics        *Metrics
	publishTimeout time.Duration

	mu     sync.Mutex
	buf    []ports.ScoreEvent
	closed bool
	notify chan struct{}
	done   chan struct{}
	cap    int
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

func WithQueueCapacity(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.cap = n
		}
	}
}

func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = logger
	}
}

func WithQueueMetrics(m *Metrics) QueueOption {
	return func(q *Queue) {
		q.metrics = m
	}
}

// WithPublishTimeout bounds each delivery attempt.
func WithPublishTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.publishTimeout = d
		}
	}
}

// NewQueue creates a queue in front of sink. Call Run to start delivery.
func NewQueue(sink ports.EventPublisher, opts ...QueueOption) *Queue {
	q := &Queue{
		sink:           sink,
		logger:         slog.Default(),
		publishTimeout: defaultPublishTimeout,
		notify:         make(chan struct{}, 1),
		done:           make(chan struct{}),
		cap:            defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Publish enqueues event.
func (q *Queue) Publish(_ context.Context, event ports.ScoreEvent) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if len(q.buf) >= q.cap {
		q.buf = q.buf[1:]
		q.metrics.IncDropped()
	}
	q.buf = append(q.buf, event)
	q.metrics.SetQueued(len(q.buf))
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Len returns the number of undelivered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Run delivers events until ctx is done or Close is called. Events still
// queued at Close are delivered before Run returns.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.drain(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			q.drain(context.WithoutCancel(ctx))
			return nil
		case <-q.notify:
		}
	}
}

// Close stops accepting events and lets Run flush.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func (q *Queue) drain(ctx context.Context) {
	for {
		q.mu.Lock()
		if len(q.buf) == 0 {
			q.mu.Unlock()
			return
		}
		event := q.buf[0]
		q.buf = q.buf[1:]
		q.metrics.SetQueued(len(q.buf))
		q.mu.Unlock()

		pctx, cancel := context.WithTimeout(ctx, q.publishTimeout)
		err := q.sink.Publish(pctx, event)
		cancel()
		if err != nil {
			q.logger.WarnContext(ctx, "failed to deliver score event",
				"event_id", event.ID,
				"user_id", event.UserID,
				"error", err,
			)
		}
	}
}
