package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/balance/errors"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetOrCreate(ctx context.Context, userID string, year int) (BalanceResponse, error)
	Debit(ctx context.Context, balanceID string, field Field, days int) (BalanceResponse, error)
	// WithTx exposes the ledger inside a transaction owned by the caller.
	WithTx(tx *sql.Tx) Ledger
}

// Ledger reads and mutates balances within one transaction. Rows it returns
// stay locked until that transaction ends.
type Ledger interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, year int) (*LeaveBalance, error)
	Debit(ctx context.Context, balanceID uuid.UUID, field Field, days int) (*LeaveBalance, error)
}

type service struct {
	tx          *dbtx.Runner
	repo        Repository
	entitlement Entitlement
	logger      *zap.Logger
}

func NewService(tx *dbtx.Runner, repo Repository, entitlement Entitlement, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{tx: tx, repo: repo, entitlement: entitlement, logger: l}
}

func (s *service) WithTx(tx *sql.Tx) Ledger {
	return &ledger{repo: s.repo.WithTx(tx), entitlement: s.entitlement, logger: s.logger}
}

func (s *service) GetOrCreate(ctx context.Context, userID string, year int) (BalanceResponse, error) {
	s.logger.Debug("get balance requested", zap.String("user_id", userID), zap.Int("year", year))

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidUserID
	}
	if year < 1 {
		return BalanceResponse{}, balanceerrors.ErrInvalidYear
	}

	var b *LeaveBalance
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		var err error
		b, err = s.WithTx(tx).GetOrCreate(ctx, userUUID, year)
		return err
	})
	if err != nil {
		return BalanceResponse{}, err
	}
	return mapToResponse(*b), nil
}

func (s *service) Debit(ctx context.Context, balanceID string, field Field, days int) (BalanceResponse, error) {
	id, err := uuid.Parse(balanceID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
	}

	var b *LeaveBalance
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		var err error
		b, err = s.WithTx(tx).Debit(ctx, id, field, days)
		return err
	})
	if err != nil {
		return BalanceResponse{}, err
	}
	return mapToResponse(*b), nil
}

type ledger struct {
	repo        Repository
	entitlement Entitlement
	logger      *zap.Logger
}

func (l *ledger) GetOrCreate(ctx context.Context, userID uuid.UUID, year int) (*LeaveBalance, error) {
	b, err := l.repo.FindByUserYear(ctx, userID, year, true)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.logger.Error("load balance failed", zap.String("user_id", userID.String()), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	fresh := &LeaveBalance{
		ID:     uuid.New(),
		UserID: userID,
		Year:   year,
		Earned: l.entitlement.Earned,
		Casual: l.entitlement.Casual,
		Sick:   l.entitlement.Sick,
	}
	if err := l.repo.CreateIfAbsent(ctx, fresh); err != nil {
		l.logger.Error("seed balance failed", zap.String("user_id", userID.String()), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	// Re-read: a concurrent caller may have won the insert.
	b, err = l.repo.FindByUserYear(ctx, userID, year, true)
	if err != nil {
		l.logger.Error("reload balance failed", zap.String("user_id", userID.String()), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	l.logger.Info("balance seeded",
		zap.String("balance_id", b.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("year", year),
	)
	return b, nil
}

func (l *ledger) Debit(ctx context.Context, balanceID uuid.UUID, field Field, days int) (*LeaveBalance, error) {
	if !field.Valid() {
		return nil, balanceerrors.ErrInvalidField
	}
	if days <= 0 {
		return nil, balanceerrors.ErrInvalidDays
	}

	affected, err := l.repo.Debit(ctx, balanceID, field, days)
	if err != nil {
		l.logger.Error("debit balance failed", zap.String("balance_id", balanceID.String()), zap.Error(err))
		return nil, err
	}

	b, err := l.repo.FindByID(ctx, balanceID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, balanceerrors.ErrBalanceNotFound
		}
		return nil, err
	}

	if affected == 0 {
		l.logger.Warn("debit rejected",
			zap.String("balance_id", balanceID.String()),
			zap.String("field", string(field)),
			zap.Int("available", b.Available(field)),
			zap.Int("requested", days),
		)
		return nil, balanceerrors.Insufficient(string(field), b.Available(field), days)
	}

	l.logger.Info("balance debited",
		zap.String("balance_id", balanceID.String()),
		zap.String("field", string(field)),
		zap.Int("days", days),
		zap.Int("remaining", b.Available(field)),
	)
	return b, nil
}
