package dbtx

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/metrics"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Postgres SQLSTATEs that mean "run the whole transaction again".
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

type Runner struct {
	db          *sql.DB
	maxAttempts int
	logger      *zap.Logger
}

func NewRunner(db *sql.DB, maxAttempts int, logger ...*zap.Logger) *Runner {
	l := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Runner{db: db, maxAttempts: maxAttempts, logger: l.Named("dbtx")}
}

// Run executes fn inside a transaction, committing when fn returns nil.
// Transient conflicts restart fn in a fresh transaction; once attempts are
// exhausted the caller gets apperror.ErrConflict.
func (r *Runner) Run(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		lastErr = r.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.logger.Warn("transaction conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Error(lastErr),
		)
	}

	r.logger.Error("transaction retries exhausted", zap.Int("max_attempts", r.maxAttempts), zap.Error(lastErr))
	metrics.RecordTxConflict()
	return apperror.ErrConflict
}

func (r *Runner) runOnce(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database table is locked")
}

// Session returns a gorm handle bound to ctx and, when tx is set, to that
// transaction.
func Session(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	s := db.WithContext(ctx)
	if tx != nil {
		s.Statement.ConnPool = tx
	}
	return s
}
