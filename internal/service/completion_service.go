package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type completionMarker interface {
	MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const defaultCompletionSchedule = "@every 5m"

// CompletionService periodically flags enrollments of finished occurrences as
// completed so the history feed can find them.
type CompletionService struct {
	marker   completionMarker
	metrics  *MetricsService
	logger   *zap.Logger
	schedule string
	timeout  time.Duration
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewCompletionService constructs the sweeper. schedule uses robfig/cron syntax.
func NewCompletionService(marker completionMarker, schedule string, metrics *MetricsService, logger *zap.Logger) *CompletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = defaultCompletionSchedule
	}
	return &CompletionService{
		marker:   marker,
		metrics:  metrics,
		logger:   logger,
		schedule: schedule,
		timeout:  30 * time.Second,
		now:      time.Now,
	}
}

// Start registers the sweep and starts the scheduler. Calling Start twice is a no-op.
func (s *CompletionService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("register completion sweep %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("completion sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep or ctx, whichever ends first.
func (s *CompletionService) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("completion sweeper stop timed out", zap.Error(ctx.Err()))
	}
}

func (s *CompletionService) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("completion sweep failed", zap.Error(err))
	}
}

// Sweep marks every open enrollment whose occurrence ended before now.
func (s *CompletionService) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC()
	n, err := s.marker.MarkCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordCompletedEnrollments(n)
	if n > 0 {
		s.logger.Info("enrollments completed", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}
