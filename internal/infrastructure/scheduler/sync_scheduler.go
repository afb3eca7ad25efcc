// Package scheduler runs periodic sync passes in the background.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appintegration "github.com/erp/erpsync/internal/application/integration"
	"github.com/erp/erpsync/internal/infrastructure/config"
)

// SyncRunner runs one full sync pass over every company
type SyncRunner interface {
	SyncAll(ctx context.Context) ([]*appintegration.BatchResult, error)
}

// SyncSchedulerConfig holds configuration for the sync scheduler
type SyncSchedulerConfig struct {
	// Interval is the delay between the end of one pass and the start of the next
	Interval time.Duration
	// RunTimeout bounds a single pass
	RunTimeout time.Duration
	// RunOnStart triggers a pass immediately instead of waiting one interval
	RunOnStart bool
}

// SyncSchedulerConfigFromSettings maps the sync settings to a scheduler config
func SyncSchedulerConfigFromSettings(cfg config.SyncConfig) SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Interval:   cfg.Interval,
		RunTimeout: cfg.RunTimeout,
		RunOnStart: true,
	}
}

// Validate validates the configuration
func (c SyncSchedulerConfig) Validate() error {
	if c.Interval <= 0 || c.RunTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler triggers SyncAll on a fixed interval. Passes never overlap.
type SyncScheduler struct {
	config SyncSchedulerConfig
	runner SyncRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	passes   int
	lastRun  time.Time
	lastErr  error
	statusMu sync.RWMutex
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(cfg SyncSchedulerConfig, runner SyncRunner, logger *zap.Logger) (*SyncScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SyncScheduler{
		config: cfg,
		runner: runner,
		logger: logger,
	}, nil
}

// Start starts the background loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight pass to return
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Status returns the number of completed passes and the outcome of the last one
func (s *SyncScheduler) Status() (passes int, lastRun time.Time, lastErr error) {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.passes, s.lastRun, s.lastErr
}

func (s *SyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runPass(ctx)
	}

	timer := time.NewTimer(s.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.runPass(ctx)
			timer.Reset(s.config.Interval)
		}
	}
}

func (s *SyncScheduler) runPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	passCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	results, err := s.runner.SyncAll(passCtx)

	s.statusMu.Lock()
	s.passes++
	s.lastRun = start
	s.lastErr = err
	s.statusMu.Unlock()

	failed := 0
	for _, r := range results {
		failed += r.Failed()
	}

	if err != nil {
		s.logger.Warn("Scheduled sync pass finished with errors",
			zap.Int("batches", len(results)),
			zap.Int("failed_records", failed),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Scheduled sync pass completed",
		zap.Int("batches", len(results)),
		zap.Int("failed_records", failed),
		zap.Duration("duration", time.Since(start)),
	)
}
