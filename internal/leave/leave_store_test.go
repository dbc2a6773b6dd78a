package leave_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/balance"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/leave"
	leaveerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/leave/errors"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/notification"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentNotification struct {
	userID string
	title  string
	kind   notification.Kind
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(ctx context.Context, userID, title, message string, kind notification.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{userID: userID, title: title, kind: kind})
	return nil
}

type leaveStore struct {
	leaves   leave.Service
	balances balance.Service
	notifier *recordingNotifier
}

func newLeaveStore(t *testing.T, entitlement balance.Entitlement) *leaveStore {
	t.Helper()
	gdb, sqlDB := testdb.Open(t, &leave.LeaveRequest{}, &balance.LeaveBalance{})
	runner := dbtx.NewRunner(sqlDB, 3, zap.NewNop())

	balances := balance.NewService(runner, balance.NewRepository(gdb), entitlement, zap.NewNop())
	notifier := &recordingNotifier{}
	leaves := leave.NewService(runner, leave.NewRepository(gdb), balances, notifier, zap.NewNop())

	return &leaveStore{leaves: leaves, balances: balances, notifier: notifier}
}

func (s *leaveStore) file(t *testing.T, userID, typ, start, end string) (leave.LeaveResponse, error) {
	t.Helper()
	return s.leaves.Create(context.Background(), userID, leave.CreateLeaveRequest{Type: typ, StartDate: start, EndDate: end}, 2026)
}

func TestLeaveStore_ApprovalDebitsOnceAndGuardsBalance(t *testing.T) {
	ctx := context.Background()
	store := newLeaveStore(t, balance.Entitlement{Earned: 5, Casual: 2, Sick: 2})
	userID := uuid.NewString()
	approverID := uuid.NewString()

	first, err := store.file(t, userID, "EARNED", "2026-02-02", "2026-02-04")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, first.Status)
	second, err := store.file(t, userID, "EARNED", "2026-03-02", "2026-03-04")
	require.NoError(t, err)

	decided, err := store.leaves.Decide(ctx, first.ID, approverID, leave.DecideLeaveRequest{Decision: leave.StatusApproved}, 2026)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, decided.Status)
	require.NotNil(t, decided.ApprovedBy)
	assert.Equal(t, approverID, *decided.ApprovedBy)

	b, err := store.balances.GetOrCreate(ctx, userID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Earned)

	_, err = store.leaves.Decide(ctx, second.ID, approverID, leave.DecideLeaveRequest{Decision: leave.StatusApproved}, 2026)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBalance))

	b, err = store.balances.GetOrCreate(ctx, userID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Earned)

	// With 2 days left a new 3 day request is refused up front.
	_, err = store.file(t, userID, "EARNED", "2026-04-06", "2026-04-08")
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBalance))

	require.Len(t, store.notifier.sent, 1)
	assert.Equal(t, userID, store.notifier.sent[0].userID)
	assert.Equal(t, notification.KindSuccess, store.notifier.sent[0].kind)
}

func TestLeaveStore_OverlapBoundaries(t *testing.T) {
	store := newLeaveStore(t, balance.Entitlement{Earned: 30, Casual: 10, Sick: 10})
	userID := uuid.NewString()

	_, err := store.file(t, userID, "EARNED", "2026-01-10", "2026-01-15")
	require.NoError(t, err)

	_, err = store.file(t, userID, "CASUAL", "2026-01-14", "2026-01-20")
	assert.ErrorIs(t, err, leaveerrors.ErrDateRangeOverlap)

	_, err = store.file(t, userID, "CASUAL", "2026-01-15", "2026-01-15")
	assert.ErrorIs(t, err, leaveerrors.ErrDateRangeOverlap, "a shared end day overlaps")

	_, err = store.file(t, userID, "CASUAL", "2026-01-16", "2026-01-20")
	assert.NoError(t, err)

	// Another user's calendar is independent.
	_, err = store.file(t, uuid.NewString(), "EARNED", "2026-01-10", "2026-01-15")
	assert.NoError(t, err)
}

func TestLeaveStore_RejectedRequestsFreeTheirDates(t *testing.T) {
	ctx := context.Background()
	store := newLeaveStore(t, balance.Entitlement{Earned: 10, Casual: 10, Sick: 10})
	userID := uuid.NewString()

	req, err := store.file(t, userID, "SICK", "2026-04-01", "2026-04-02")
	require.NoError(t, err)

	reason := "please resubmit with a certificate"
	_, err = store.leaves.Decide(ctx, req.ID, uuid.NewString(), leave.DecideLeaveRequest{Decision: leave.StatusRejected, Reason: &reason}, 2026)
	require.NoError(t, err)

	_, err = store.file(t, userID, "MEDICAL", "2026-04-01", "2026-04-02")
	assert.NoError(t, err)

	b, err := store.balances.GetOrCreate(ctx, userID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 10, b.Sick, "rejection never touches the balance")
}

func TestLeaveStore_PendingRequestsReserveNothing(t *testing.T) {
	ctx := context.Background()
	store := newLeaveStore(t, balance.Entitlement{Earned: 3, Casual: 0, Sick: 0})
	userID := uuid.NewString()

	a, err := store.file(t, userID, "EARNED", "2026-05-04", "2026-05-06")
	require.NoError(t, err)
	b, err := store.file(t, userID, "EARNED", "2026-06-01", "2026-06-03")
	require.NoError(t, err, "the second request passes the advisory check")

	_, err = store.leaves.Decide(ctx, a.ID, uuid.NewString(), leave.DecideLeaveRequest{Decision: leave.StatusApproved}, 2026)
	require.NoError(t, err)

	_, err = store.leaves.Decide(ctx, b.ID, uuid.NewString(), leave.DecideLeaveRequest{Decision: leave.StatusApproved}, 2026)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientBalance))

	got, err := store.leaves.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, got.Status, "a failed approval leaves the request pending")
}

func TestLeaveStore_ConcurrentApprovalsNeverOverspend(t *testing.T) {
	ctx := context.Background()
	store := newLeaveStore(t, balance.Entitlement{Earned: 4, Casual: 0, Sick: 0})
	userID := uuid.NewString()

	var ids []string
	for _, month := range []string{"07", "08", "09", "10"} {
		r, err := store.file(t, userID, "EARNED", "2026-"+month+"-01", "2026-"+month+"-02")
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.leaves.Decide(ctx, id, uuid.NewString(), leave.DecideLeaveRequest{Decision: leave.StatusApproved}, 2026)
			if err == nil {
				mu.Lock()
				approved++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 2, approved)
	b, err := store.balances.GetOrCreate(ctx, userID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Earned)
}

func TestLeaveStore_DecisionsAreFinal(t *testing.T) {
	ctx := context.Background()
	store := newLeaveStore(t, balance.Entitlement{Earned: 10, Casual: 10, Sick: 10})
	userID := uuid.NewString()

	req, err := store.file(t, userID, "CASUAL", "2026-08-10", "2026-08-10")
	require.NoError(t, err)

	_, err = store.leaves.Decide(ctx, req.ID, uuid.NewString(), leave.DecideLeaveRequest{Decision: leave.StatusApproved}, 2026)
	require.NoError(t, err)

	_, err = store.leaves.Decide(ctx, req.ID, uuid.NewString(), leave.DecideLeaveRequest{Decision: leave.StatusRejected}, 2026)
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidStateTransition)
	_, err = store.leaves.Decide(ctx, req.ID, uuid.NewString(), leave.DecideLeaveRequest{Decision: leave.StatusApproved}, 2026)
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidStateTransition)

	b, err := store.balances.GetOrCreate(ctx, userID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 9, b.Casual, "the debit happens once")

	mine, err := store.leaves.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, leave.StatusApproved, mine[0].Status)
}
