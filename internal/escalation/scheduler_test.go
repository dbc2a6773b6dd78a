package escalation_test

import (
	"context"
	"testing"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/escalation"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingMonitor struct {
	calls     int
	threshold time.Duration
}

func (c *countingMonitor) Sweep(ctx context.Context, threshold time.Duration) ([]escalation.EscalationEvent, error) {
	c.calls++
	c.threshold = threshold
	return nil, nil
}

func TestScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("sweeps when the lock is won", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mon := &countingMonitor{}
		s := escalation.NewScheduler(mon, rdb, time.Hour, 48*time.Hour, 5*time.Minute, zap.NewNop())

		mock.Regexp().ExpectSetNX("hris:escalation:sweep:lock", `.+`, 5*time.Minute).SetVal(true)

		assert.True(t, s.RunOnce(ctx))
		assert.Equal(t, 1, mon.calls)
		assert.Equal(t, 48*time.Hour, mon.threshold)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips when another replica holds the lock", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mon := &countingMonitor{}
		s := escalation.NewScheduler(mon, rdb, time.Hour, 48*time.Hour, 5*time.Minute, zap.NewNop())

		mock.Regexp().ExpectSetNX("hris:escalation:sweep:lock", `.+`, 5*time.Minute).SetVal(false)

		assert.False(t, s.RunOnce(ctx))
		assert.Zero(t, mon.calls)
	})

	t.Run("skips when redis fails", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mon := &countingMonitor{}
		s := escalation.NewScheduler(mon, rdb, time.Hour, 48*time.Hour, 5*time.Minute, zap.NewNop())

		mock.Regexp().ExpectSetNX("hris:escalation:sweep:lock", `.+`, 5*time.Minute).SetErr(assert.AnError)

		assert.False(t, s.RunOnce(ctx))
		assert.Zero(t, mon.calls)
	})

	t.Run("no redis means always sweep", func(t *testing.T) {
		mon := &countingMonitor{}
		s := escalation.NewScheduler(mon, nil, time.Hour, time.Hour, time.Minute, zap.NewNop())

		assert.True(t, s.RunOnce(ctx))
		assert.Equal(t, 1, mon.calls)
	})
}

func TestScheduler_RunStopsWithContext(t *testing.T) {
	mon := &countingMonitor{}
	s := escalation.NewScheduler(mon, nil, time.Hour, time.Hour, time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, s.Run(ctx))
	assert.Equal(t, 1, mon.calls)
}
