// Package scheduler runs the periodic sync of every linked item.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 10 * time.Minute

// Syncer syncs every stored item.
type Syncer interface {
	SyncAll(ctx context.Context) (int, error)
}

// Scheduler triggers Syncer.SyncAll on a cron schedule. Runs never overlap.
type Scheduler struct {
	cron       *cron.Cron
	syncer     Syncer
	schedule   string
	logger     *slog.Logger
	runTimeout time.Duration

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithRunTimeout bounds a single run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

// New creates a scheduler for a standard five-field cron expression or a
// descriptor such as "@every 6h".
func New(syncer Syncer, schedule string, opts ...Option) (*Scheduler, error) {
	if syncer == nil {
		return nil, fmt.Errorf("syncer is required")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}

	s := &Scheduler{
		syncer:     syncer,
		schedule:   schedule,
		logger:     slog.Default(),
		runTimeout: defaultRunTimeout,
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("failed to schedule sync: %w", err)
	}
	return s, nil
}

// Start begins scheduling. Runs are cancelled when ctx is done or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()

	s.logger.InfoContext(ctx, "sync scheduler started", "schedule", s.schedule)
	return nil
}

// Stop cancels a run in progress and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("sync scheduler stopped")
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.RunOnce(ctx)
}

// RunOnce performs one sync of every item and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := time.Now()
	synced, err := s.syncer.SyncAll(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "scheduled sync finished with errors",
			"synced_items", synced,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "scheduled sync finished",
		"synced_items", synced,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
