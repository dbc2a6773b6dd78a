package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/balance"
	balanceerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/balance/errors"
	leaveerrors "github.com/Ashokvp-05/hr-management-system-sub000/internal/leave/errors"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/metrics"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/notification"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	// Create files a PENDING request. year selects the balance used for the
	// advisory sufficiency check; nothing is reserved.
	Create(ctx context.Context, userID string, req CreateLeaveRequest, year int) (LeaveResponse, error)
	// Decide approves or rejects a PENDING request. On approval the balance of
	// (requester, year) is debited in the same transaction.
	Decide(ctx context.Context, requestID, approverID string, req DecideLeaveRequest, year int) (LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	ListByUser(ctx context.Context, userID string) ([]LeaveResponse, error)
	ListAll(ctx context.Context, status string) ([]LeaveResponse, error)
}

// Ledgers hands out a balance ledger bound to a transaction.
type Ledgers interface {
	WithTx(tx *sql.Tx) balance.Ledger
}

type service struct {
	tx       *dbtx.Runner
	repo     Repository
	ledgers  Ledgers
	notifier notification.Notifier
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(tx *dbtx.Runner, repo Repository, ledgers Ledgers, notifier notification.Notifier, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		ledgers:  ledgers,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, userID string, req CreateLeaveRequest, year int) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("user_id", userID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("year", year),
	)

	userUUID, leaveType, field, startDate, endDate, err := validateCreateRequest(userID, req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	days := DaysRequested(startDate, endDate)

	var l *LeaveRequest
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)

		// Locking the balance row first serializes creates of one user, which
		// keeps the overlap check below race free.
		b, err := s.ledgers.WithTx(tx).GetOrCreate(ctx, userUUID, year)
		if err != nil {
			return err
		}

		overlap, err := qtx.HasOverlap(ctx, userUUID, startDate, endDate)
		if err != nil {
			s.logger.Error("create leave overlap check failed", zap.Error(err))
			return err
		}
		if overlap {
			s.logger.Warn("create leave overlap detected",
				zap.String("user_id", userID),
				zap.String("start_date", req.StartDate),
				zap.String("end_date", req.EndDate),
			)
			return leaveerrors.ErrDateRangeOverlap
		}

		if available := b.Available(field); available < days {
			s.logger.Warn("create leave insufficient balance",
				zap.String("user_id", userID),
				zap.String("field", string(field)),
				zap.Int("available", available),
				zap.Int("requested", days),
			)
			return balanceerrors.Insufficient(string(field), available, days)
		}

		l = &LeaveRequest{
			ID:        uuid.New(),
			UserID:    userUUID,
			Type:      leaveType,
			StartDate: startDate,
			EndDate:   endDate,
			TotalDays: days,
			Reason:    req.Reason,
			Status:    StatusPending,
		}
		if err := qtx.Create(ctx, l); err != nil {
			s.logger.Error("create leave persist failed", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("user_id", userID),
		zap.Int("total_days", days),
	)
	return mapToResponse(*l), nil
}

func (s *service) Decide(ctx context.Context, requestID, approverID string, req DecideLeaveRequest, year int) (LeaveResponse, error) {
	s.logger.Debug("decide leave requested",
		zap.String("leave_id", requestID),
		zap.String("approver_id", approverID),
		zap.String("decision", req.Decision),
		zap.Int("year", year),
	)

	id, err := uuid.Parse(requestID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidApproverID
	}
	if req.Decision != StatusApproved && req.Decision != StatusRejected {
		return LeaveResponse{}, leaveerrors.ErrInvalidDecision
	}

	var l *LeaveRequest
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		qtx := s.repo.WithTx(tx)

		var err error
		l, err = qtx.FindByID(ctx, id, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrLeaveNotFound
			}
			s.logger.Error("decide leave load failed", zap.String("leave_id", requestID), zap.Error(err))
			return err
		}
		if l.Status != StatusPending {
			s.logger.Warn("decide leave invalid state",
				zap.String("leave_id", requestID),
				zap.String("status", l.Status),
			)
			return leaveerrors.ErrInvalidStateTransition
		}

		if req.Decision == StatusApproved {
			if err := s.debitForApproval(ctx, s.ledgers.WithTx(tx), l, year); err != nil {
				return err
			}
		}

		decidedAt := s.now()
		l.Status = req.Decision
		l.ApprovedBy = &approverUUID
		l.DecidedAt = &decidedAt
		if req.Decision == StatusRejected {
			l.RejectionReason = req.Reason
		}

		affected, err := qtx.UpdateDecision(ctx, l)
		if err != nil {
			s.logger.Error("decide leave persist failed", zap.String("leave_id", requestID), zap.Error(err))
			return err
		}
		if affected == 0 {
			return leaveerrors.ErrInvalidStateTransition
		}
		return nil
	})
	if err != nil {
		return LeaveResponse{}, err
	}

	metrics.RecordLeaveDecision(l.Status)
	s.logger.Info("decide leave success",
		zap.String("leave_id", requestID),
		zap.String("status", l.Status),
		zap.String("approver_id", approverID),
	)
	s.notifyRequester(ctx, l)

	return mapToResponse(*l), nil
}

// debitForApproval is the authoritative balance check. It runs under the
// balance row lock taken by GetOrCreate, and the debit itself is conditional,
// so concurrent approvals cannot overspend.
func (s *service) debitForApproval(ctx context.Context, ledger balance.Ledger, l *LeaveRequest, year int) error {
	field, ok := l.Type.BalanceField()
	if !ok {
		return leaveerrors.ErrInvalidLeaveType
	}
	days := DaysRequested(l.StartDate, l.EndDate)

	b, err := ledger.GetOrCreate(ctx, l.UserID, year)
	if err != nil {
		return err
	}
	if available := b.Available(field); available < days {
		s.logger.Warn("decide leave insufficient balance",
			zap.String("leave_id", l.ID.String()),
			zap.String("field", string(field)),
			zap.Int("available", available),
			zap.Int("requested", days),
		)
		return balanceerrors.Insufficient(string(field), available, days)
	}

	_, err = ledger.Debit(ctx, b.ID, field, days)
	return err
}

func (s *service) notifyRequester(ctx context.Context, l *LeaveRequest) {
	period := fmt.Sprintf("%s to %s", l.StartDate.Format(dateLayout), l.EndDate.Format(dateLayout))

	if l.Status == StatusApproved {
		notification.Send(ctx, s.notifier, s.logger, l.UserID.String(),
			"Leave Request Approved",
			fmt.Sprintf("Your %s leave from %s (%d days) has been approved.", l.Type, period, l.TotalDays),
			notification.KindSuccess,
		)
		return
	}

	msg := fmt.Sprintf("Your %s leave from %s has been rejected.", l.Type, period)
	if l.RejectionReason != nil && *l.RejectionReason != "" {
		msg += " Reason: " + *l.RejectionReason
	}
	notification.Send(ctx, s.notifier, s.logger, l.UserID.String(), "Leave Request Rejected", msg, notification.KindWarning)
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	l, err := s.repo.FindByID(ctx, leaveID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]LeaveResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, leaveerrors.ErrInvalidUserID
	}

	leaves, err := s.repo.ListByUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) ListAll(ctx context.Context, status string) ([]LeaveResponse, error) {
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, leaveerrors.ErrInvalidStatus
	}

	leaves, err := s.repo.ListAll(ctx, status)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func validateCreateRequest(userID string, req CreateLeaveRequest) (uuid.UUID, LeaveType, balance.Field, time.Time, time.Time, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, "", "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidUserID
	}
	leaveType := LeaveType(req.Type)
	field, ok := leaveType.BalanceField()
	if !ok {
		return uuid.Nil, "", "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveType
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return uuid.Nil, "", "", time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return uuid.Nil, "", "", time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return uuid.Nil, "", "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return userUUID, leaveType, field, startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}
