package app

import (
	"context"
	"fmt"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/config"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/escalation"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/identity"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/messaging/kafka"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/messaging/kafka/producer"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/notification"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// RunWorker runs the outbox publisher and the escalation scheduler until ctx
// is cancelled or either loop fails.
func RunWorker(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("kafka.broker is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := connection.ConnectRedisWithRetry(ctx, cfg.Redis.Addr, cfg.Database.MaxRetries, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(ctx, cfg.Kafka.Broker, cfg.Database.MaxRetries, logger)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(gormDB)
	scheduler := newEscalationScheduler(cfg, gormDB, rdb, outboxRepo, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		producer.ProcessOutboxEvents(gctx, outboxRepo, kafkaWriter, logger, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	log.Info("worker started",
		zap.Duration("escalation_interval", cfg.Escalation.Interval),
		zap.Duration("escalation_threshold", cfg.Escalation.Threshold),
	)
	err = g.Wait()
	log.Info("worker shutting down")
	return err
}

func newEscalationScheduler(
	cfg *config.Config,
	db *gorm.DB,
	rdb redis.Cmdable,
	outbox kafka.OutboxRepository,
	logger *zap.Logger,
) *escalation.Scheduler {
	sink := notification.NewOutboxNotifier(outbox, logger)
	monitor := escalation.NewMonitor(
		escalation.NewRepository(db),
		identity.NewRoleResolver(db, cfg.Roles, logger),
		sink,
		sink,
		nil,
		logger,
	)
	return escalation.NewScheduler(
		monitor,
		rdb,
		cfg.Escalation.Interval,
		cfg.Escalation.Threshold,
		cfg.Escalation.LockTTL,
		logger,
	)
}
