package leave_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/balance"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/leave"
	leaveerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/leave/errors"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/notification"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/notification/mock"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	createFn         func(ctx context.Context, l *leave.LeaveRequest) error
	findByIDFn       func(ctx context.Context, id uuid.UUID, forUpdate bool) (*leave.LeaveRequest, error)
	listByUserFn     func(ctx context.Context, userID uuid.UUID) ([]leave.LeaveRequest, error)
	listAllFn        func(ctx context.Context, status string) ([]leave.LeaveRequest, error)
	hasOverlapFn     func(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error)
	updateDecisionFn func(ctx context.Context, l *leave.LeaveRequest) (int64, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*leave.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id, forUpdate)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]leave.LeaveRequest, error) {
	if f.listByUserFn != nil {
		return f.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) ListAll(ctx context.Context, status string) ([]leave.LeaveRequest, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) HasOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error) {
	if f.hasOverlapFn != nil {
		return f.hasOverlapFn(ctx, userID, start, end)
	}
	return false, nil
}

func (f *fakeLeaveRepository) UpdateDecision(ctx context.Context, l *leave.LeaveRequest) (int64, error) {
	if f.updateDecisionFn != nil {
		return f.updateDecisionFn(ctx, l)
	}
	return 1, nil
}

// fakeLedger keeps one balance in memory.
type fakeLedger struct {
	balance  balance.LeaveBalance
	debited  map[balance.Field]int
	debitErr error
}

func (f *fakeLedger) WithTx(tx *sql.Tx) balance.Ledger { return f }

func (f *fakeLedger) GetOrCreate(ctx context.Context, userID uuid.UUID, year int) (*balance.LeaveBalance, error) {
	b := f.balance
	b.UserID = userID
	b.Year = year
	return &b, nil
}

func (f *fakeLedger) Debit(ctx context.Context, balanceID uuid.UUID, field balance.Field, days int) (*balance.LeaveBalance, error) {
	if f.debitErr != nil {
		return nil, f.debitErr
	}
	if f.debited == nil {
		f.debited = map[balance.Field]int{}
	}
	f.debited[field] += days
	return &f.balance, nil
}

type leaveServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  leave.Service
	repo     *fakeLeaveRepository
	ledger   *fakeLedger
	notifier *mock.MockNotifier
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	repo := &fakeLeaveRepository{}
	ledger := &fakeLedger{balance: balance.LeaveBalance{ID: uuid.New(), Earned: 5, Casual: 2, Sick: 4}}
	notifier := mock.NewMockNotifier(gomock.NewController(t))
	svc := leave.NewService(dbtx.NewRunner(db, 1, zap.NewNop()), repo, ledger, notifier, zap.NewNop())

	return &leaveServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo, ledger: ledger, notifier: notifier}
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

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		deps.repo.hasOverlapFn = func(ctx context.Context, uid uuid.UUID, start, end time.Time) (bool, error) {
			assert.Equal(t, userID, uid)
			assert.Equal(t, "2026-03-01", start.Format("2006-01-02"))
			assert.Equal(t, "2026-03-03", end.Format("2006-01-02"))
			return false, nil
		}
		deps.repo.createFn = func(ctx context.Context, l *leave.LeaveRequest) error {
			assert.Equal(t, leave.TypeEarned, l.Type)
			assert.Equal(t, 3, l.TotalDays)
			assert.Equal(t, leave.StatusPending, l.Status)
			return nil
		}

		resp, err := deps.service.Create(ctx, userID.String(), leave.CreateLeaveRequest{
			Type: "EARNED", StartDate: "2026-03-01", EndDate: "2026-03-03",
		}, 2026)

		require.NoError(t, err)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, 3, resp.TotalDays)
		assert.Empty(t, deps.ledger.debited, "creation never debits")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("overlap", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.hasOverlapFn = func(ctx context.Context, uid uuid.UUID, start, end time.Time) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Create(ctx, userID.String(), leave.CreateLeaveRequest{
			Type: "CASUAL", StartDate: "2026-03-01", EndDate: "2026-03-01",
		}, 2026)

		assert.ErrorIs(t, err, leaveerrors.ErrDateRangeOverlap)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("advisory balance check", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx, userID.String(), leave.CreateLeaveRequest{
			Type: "CASUAL", StartDate: "2026-03-01", EndDate: "2026-03-03",
		}, 2026)

		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBalance))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("medical draws from sick", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Create(ctx, userID.String(), leave.CreateLeaveRequest{
			Type: "MEDICAL", StartDate: "2026-03-01", EndDate: "2026-03-04",
		}, 2026)

		assert.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		cases := []struct {
			name   string
			userID string
			req    leave.CreateLeaveRequest
			want   error
		}{
			{"bad user", "x", leave.CreateLeaveRequest{Type: "EARNED", StartDate: "2026-03-01", EndDate: "2026-03-01"}, leaveerrors.ErrInvalidUserID},
			{"bad type", userID.String(), leave.CreateLeaveRequest{Type: "UNPAID", StartDate: "2026-03-01", EndDate: "2026-03-01"}, leaveerrors.ErrInvalidLeaveType},
			{"bad date", userID.String(), leave.CreateLeaveRequest{Type: "EARNED", StartDate: "03/01/2026", EndDate: "2026-03-01"}, leaveerrors.ErrInvalidDateFormat},
			{"reversed", userID.String(), leave.CreateLeaveRequest{Type: "EARNED", StartDate: "2026-03-02", EndDate: "2026-03-01"}, leaveerrors.ErrInvalidDateRange},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := deps.service.Create(ctx, tc.userID, tc.req, 2026)
				assert.ErrorIs(t, err, tc.want)
			})
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func pendingLeave(userID uuid.UUID, typ leave.LeaveType, start, end string) *leave.LeaveRequest {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	return &leave.LeaveRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		StartDate: s,
		EndDate:   e,
		TotalDays: leave.DaysRequested(s, e),
		Status:    leave.StatusPending,
	}
}

func TestLeaveService_Decide(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	approverID := uuid.New()

	t.Run("approve debits and notifies", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		req := pendingLeave(userID, leave.TypeEarned, "2026-01-10", "2026-01-12")
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID, forUpdate bool) (*leave.LeaveRequest, error) {
			assert.True(t, forUpdate)
			return req, nil
		}
		deps.repo.updateDecisionFn = func(ctx context.Context, l *leave.LeaveRequest) (int64, error) {
			assert.Equal(t, leave.StatusApproved, l.Status)
			assert.Equal(t, approverID, *l.ApprovedBy)
			return 1, nil
		}
		deps.notifier.EXPECT().
			Notify(gomock.Any(), userID.String(), "Leave Request Approved", gomock.Any(), notification.KindSuccess).
			Return(nil)

		resp, err := deps.service.Decide(ctx, req.ID.String(), approverID.String(), leave.DecideLeaveRequest{Decision: "APPROVED"}, 2026)

		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Equal(t, 3, deps.ledger.debited[balance.FieldEarned])
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject leaves balance alone", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		req := pendingLeave(userID, leave.TypeEarned, "2026-01-10", "2026-01-12")
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID, forUpdate bool) (*leave.LeaveRequest, error) {
			return req, nil
		}
		reason := "team offsite"
		deps.notifier.EXPECT().
			Notify(gomock.Any(), userID.String(), "Leave Request Rejected", gomock.Any(), notification.KindWarning).
			Return(nil)

		resp, err := deps.service.Decide(ctx, req.ID.String(), approverID.String(), leave.DecideLeaveRequest{Decision: "REJECTED", Reason: &reason}, 2026)

		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Equal(t, &reason, resp.RejectionReason)
		assert.Empty(t, deps.ledger.debited)
	})

	t.Run("insufficient at approval rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		req := pendingLeave(userID, leave.TypeCasual, "2026-01-10", "2026-01-12")
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID, forUpdate bool) (*leave.LeaveRequest, error) {
			return req, nil
		}
		deps.repo.updateDecisionFn = func(ctx context.Context, l *leave.LeaveRequest) (int64, error) {
			t.Fatal("status must not change when the debit fails")
			return 0, nil
		}

		_, err := deps.service.Decide(ctx, req.ID.String(), approverID.String(), leave.DecideLeaveRequest{Decision: "APPROVED"}, 2026)

		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBalance))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already decided", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		req := pendingLeave(userID, leave.TypeEarned, "2026-01-10", "2026-01-12")
		req.Status = leave.StatusApproved
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID, forUpdate bool) (*leave.LeaveRequest, error) {
			return req, nil
		}

		_, err := deps.service.Decide(ctx, req.ID.String(), approverID.String(), leave.DecideLeaveRequest{Decision: "REJECTED"}, 2026)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStateTransition)
		assert.Empty(t, deps.ledger.debited)
	})

	t.Run("lost race on conditional update", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		req := pendingLeave(userID, leave.TypeEarned, "2026-01-10", "2026-01-10")
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID, forUpdate bool) (*leave.LeaveRequest, error) {
			return req, nil
		}
		deps.repo.updateDecisionFn = func(ctx context.Context, l *leave.LeaveRequest) (int64, error) {
			return 0, nil
		}

		_, err := deps.service.Decide(ctx, req.ID.String(), approverID.String(), leave.DecideLeaveRequest{Decision: "REJECTED"}, 2026)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStateTransition)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Decide(ctx, uuid.NewString(), approverID.String(), leave.DecideLeaveRequest{Decision: "APPROVED"}, 2026)

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("notification failure does not fail the decision", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		req := pendingLeave(userID, leave.TypeSick, "2026-01-10", "2026-01-10")
		deps.repo.findByIDFn = func(ctx context.Context, id uuid.UUID, forUpdate bool) (*leave.LeaveRequest, error) {
			return req, nil
		}
		deps.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(assert.AnError)

		resp, err := deps.service.Decide(ctx, req.ID.String(), approverID.String(), leave.DecideLeaveRequest{Decision: "APPROVED"}, 2026)

		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
	})
}

func TestDaysRequested(t *testing.T) {
	day := func(s string) time.Time {
		v, _ := time.Parse("2006-01-02", s)
		return v
	}

	assert.Equal(t, 1, leave.DaysRequested(day("2026-01-10"), day("2026-01-10")))
	assert.Equal(t, 3, leave.DaysRequested(day("2026-01-10"), day("2026-01-12")))
	assert.Equal(t, 1, leave.DaysRequested(day("2026-01-10").Add(15*time.Hour), day("2026-01-10").Add(20*time.Hour)))
	assert.Equal(t, 29, leave.DaysRequested(day("2028-02-01"), day("2028-02-29")))
}
