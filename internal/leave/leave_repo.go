package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*LeaveRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]LeaveRequest, error)
	ListAll(ctx context.Context, status string) ([]LeaveRequest, error)
	// HasOverlap reports a non-REJECTED request of userID intersecting
	// [start, end], boundaries inclusive.
	HasOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error)
	// UpdateDecision persists the decision fields only while the row is
	// still PENDING and reports how many rows changed.
	UpdateDecision(ctx context.Context, l *LeaveRequest) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return dbtx.Session(ctx, r.db, r.tx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*LeaveRequest, error) {
	db := dbtx.Session(ctx, r.db, r.tx)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var l LeaveRequest
	if err := db.First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := dbtx.Session(ctx, r.db, r.tx).
		Scopes(scope.OwnedBy(userID), scope.NewestFirst).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) ListAll(ctx context.Context, status string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := dbtx.Session(ctx, r.db, r.tx).
		Scopes(scope.WithStatus(status), scope.NewestFirst).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) HasOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := dbtx.Session(ctx, r.db, r.tx).
		Model(&LeaveRequest{}).
		Scopes(scope.OwnedBy(userID)).
		Where("status <> ?", StatusRejected).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) UpdateDecision(ctx context.Context, l *LeaveRequest) (int64, error) {
	res := dbtx.Session(ctx, r.db, r.tx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ?", l.ID, StatusPending).
		Updates(map[string]any{
			"status":           l.Status,
			"approved_by":      l.ApprovedBy,
			"rejection_reason": l.RejectionReason,
			"decided_at":       l.DecidedAt,
			"updated_at":       time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
