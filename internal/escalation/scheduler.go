package escalation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sweepLockKey = "hris:escalation:sweep:lock"

// Scheduler runs Sweep on an interval. With a Redis client it sweeps only
// when it wins the lock, which then expires on its own after lockTTL.
type Scheduler struct {
	monitor   Monitor
	rdb       redis.Cmdable
	interval  time.Duration
	threshold time.Duration
	lockTTL   time.Duration
	owner     string
	logger    *zap.Logger
}

func NewScheduler(monitor Monitor, rdb redis.Cmdable, interval, threshold, lockTTL time.Duration, logger ...*zap.Logger) *Scheduler {
	l := zap.L().Named("escalation.scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("escalation.scheduler")
	}
	return &Scheduler{
		monitor:   monitor,
		rdb:       rdb,
		interval:  interval,
		threshold: threshold,
		lockTTL:   lockTTL,
		owner:     uuid.NewString(),
		logger:    l,
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("escalation scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("threshold", s.threshold),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("escalation scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs one sweep if this replica holds the lock and reports
// whether it swept.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if s.rdb != nil {
		ok, err := s.rdb.SetNX(ctx, sweepLockKey, s.owner, s.lockTTL).Result()
		if err != nil {
			s.logger.Warn("escalation lock unavailable", zap.Error(err))
			return false
		}
		if !ok {
			s.logger.Debug("escalation sweep held by another replica")
			return false
		}
	}

	if _, err := s.monitor.Sweep(ctx, s.threshold); err != nil {
		s.logger.Error("escalation sweep failed", zap.Error(err))
	}
	return true
}
