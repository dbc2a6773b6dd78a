package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const retryDelay = 5 * time.Second

func PostgresDSN(c config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode,
	)
}

func ConnectGORMWithRetry(ctx context.Context, c config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	log := logger.Named("connection.postgres")
	maxRetries := max(c.MaxRetries, 1)

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		db, err := gorm.Open(postgres.Open(PostgresDSN(c)), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			err = pingGORM(ctx, db)
		}
		if err == nil {
			log.Info("connected to database", zap.String("host", c.Host), zap.String("dbname", c.DBName))
			return db, nil
		}

		lastErr = err
		log.Warn("database connect failed", zap.Int("attempt", i), zap.Int("max_retries", maxRetries), zap.Error(err))
		if err := sleep(ctx, retryDelay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
}

func pingGORM(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

func ConnectRedisWithRetry(ctx context.Context, addr string, maxRetries int, logger *zap.Logger) (*redis.Client, error) {
	log := logger.Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	var lastErr error
	for i := 1; i <= max(maxRetries, 1); i++ {
		if lastErr = rdb.Ping(ctx).Err(); lastErr == nil {
			log.Info("connected to redis", zap.String("addr", addr))
			return rdb, nil
		}

		log.Warn("redis ping failed", zap.Int("attempt", i), zap.Error(lastErr))
		if err := sleep(ctx, retryDelay); err != nil {
			_ = rdb.Close()
			return nil, err
		}
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("failed to connect redis: %w", lastErr)
}

// ConnectKafkaWithRetry dials the broker until it answers, then returns a
// writer for it. The writer routes by Message.Topic.
func ConnectKafkaWithRetry(ctx context.Context, broker string, maxRetries int, logger *zap.Logger) (*kafka.Writer, error) {
	log := logger.Named("connection.kafka")

	var lastErr error
	for i := 1; i <= max(maxRetries, 1); i++ {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			_ = conn.Close()
			log.Info("connected to kafka", zap.String("broker", broker))
			return &kafka.Writer{
				Addr:                   kafka.TCP(broker),
				Balancer:               &kafka.Hash{},
				RequiredAcks:           kafka.RequireAll,
				AllowAutoTopicCreation: true,
				BatchTimeout:           50 * time.Millisecond,
			}, nil
		}

		lastErr = err
		log.Warn("kafka dial failed", zap.Int("attempt", i), zap.Error(err))
		if err := sleep(ctx, retryDelay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to connect kafka: %w", lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
