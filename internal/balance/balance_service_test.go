package balance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/balance"
	balanceerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/balance/errors"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeBalanceRepository struct {
	findByUserYearFn func(ctx context.Context, userID uuid.UUID, year int, forUpdate bool) (*balance.LeaveBalance, error)
	findByIDFn       func(ctx context.Context, id uuid.UUID, forUpdate bool) (*balance.LeaveBalance, error)
	createIfAbsentFn func(ctx context.Context, b *balance.LeaveBalance) error
	debitFn          func(ctx context.Context, id uuid.UUID, field balance.Field, days int) (int64, error)
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) FindByUserYear(ctx context.Context, userID uuid.UUID, year int, forUpdate bool) (*balance.LeaveBalance, error) {
	if f.findByUserYearFn != nil {
		return f.findByUserYearFn(ctx, userID, year, forUpdate)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*balance.LeaveBalance, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id, forUpdate)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) CreateIfAbsent(ctx context.Context, b *balance.LeaveBalance) error {
	if f.createIfAbsentFn != nil {
		return f.createIfAbsentFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) Debit(ctx context.Context, id uuid.UUID, field balance.Field, days int) (int64, error) {
	if f.debitFn != nil {
		return f.debitFn(ctx, id, field, days)
	}
	return 1, nil
}

type balanceServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service balance.Service
	repo    *fakeBalanceRepository
}

func setupBalanceServiceTest(t *testing.T) *balanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	repo := &fakeBalanceRepository{}
	svc := balance.NewService(dbtx.NewRunner(db, 1, zap.NewNop()), repo, balance.DefaultEntitlement, zap.NewNop())

	return &balanceServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestBalanceService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("existing row is returned untouched", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		existing := &balance.LeaveBalance{ID: uuid.New(), UserID: userID, Year: 2026, Earned: 4, Casual: 2, Sick: 1}
		deps.repo.findByUserYearFn = func(ctx context.Context, uid uuid.UUID, year int, forUpdate bool) (*balance.LeaveBalance, error) {
			assert.True(t, forUpdate)
			return existing, nil
		}
		deps.repo.createIfAbsentFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			t.Fatal("must not seed an existing balance")
			return nil
		}

		resp, err := deps.service.GetOrCreate(ctx, userID.String(), 2026)

		require.NoError(t, err)
		assert.Equal(t, 4, resp.Earned)
		assert.Equal(t, 2026, resp.Year)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("missing row is seeded with the entitlement", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		var seeded *balance.LeaveBalance
		deps.repo.findByUserYearFn = func(ctx context.Context, uid uuid.UUID, year int, forUpdate bool) (*balance.LeaveBalance, error) {
			if seeded == nil {
				return nil, gorm.ErrRecordNotFound
			}
			return seeded, nil
		}
		deps.repo.createIfAbsentFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			seeded = b
			return nil
		}

		resp, err := deps.service.GetOrCreate(ctx, userID.String(), 2027)

		require.NoError(t, err)
		assert.Equal(t, balance.BalanceResponse{
			ID: seeded.ID.String(), UserID: userID.String(), Year: 2027, Earned: 15, Casual: 10, Sick: 10,
		}, resp)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid user id", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetOrCreate(ctx, "nope", 2026)

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidUserID)
	})

	t.Run("repository failure rolls back", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findByUserYearFn = func(ctx context.Context, uid uuid.UUID, year int, forUpdate bool) (*balance.LeaveBalance, error) {
			return nil, errors.New("connection reset")
		}

		_, err := deps.service.GetOrCreate(ctx, userID.String(), 2026)

		assert.EqualError(t, err, "connection reset")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestBalanceService_Debit(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		deps.repo.debitFn = func(ctx context.Context, bid uuid.UUID, field balance.Field, days int) (int64, error) {
			assert.Equal(t, id, bid)
			assert.Equal(t, balance.FieldCasual, field)
			assert.Equal(t, 3, days)
			return 1, nil
		}
		deps.repo.findByIDFn = func(ctx context.Context, bid uuid.UUID, forUpdate bool) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{ID: id, Casual: 7}, nil
		}

		resp, err := deps.service.Debit(ctx, id.String(), balance.FieldCasual, 3)

		require.NoError(t, err)
		assert.Equal(t, 7, resp.Casual)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("insufficient balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.debitFn = func(ctx context.Context, bid uuid.UUID, field balance.Field, days int) (int64, error) {
			return 0, nil
		}
		deps.repo.findByIDFn = func(ctx context.Context, bid uuid.UUID, forUpdate bool) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{ID: id, Earned: 2}, nil
		}

		_, err := deps.service.Debit(ctx, id.String(), balance.FieldEarned, 3)

		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBalance))
		assert.Contains(t, err.Error(), "available 2, requested 3")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.debitFn = func(ctx context.Context, bid uuid.UUID, field balance.Field, days int) (int64, error) {
			return 0, nil
		}

		_, err := deps.service.Debit(ctx, id.String(), balance.FieldEarned, 1)

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
	})

	t.Run("invalid field and days", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Debit(ctx, id.String(), balance.Field("unpaid"), 1)
		assert.ErrorIs(t, err, balanceerrors.ErrInvalidField)

		_, err = deps.service.Debit(ctx, id.String(), balance.FieldSick, 0)
		assert.ErrorIs(t, err, balanceerrors.ErrInvalidDays)
	})
}
