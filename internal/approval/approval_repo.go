package approval

import (
	"context"
	"database/sql"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateSteps(ctx context.Context, steps []ApprovalStep) error
	FindStepByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*ApprovalStep, error)
	FindStepByOrder(ctx context.Context, claimID uuid.UUID, claimType ClaimType, order int) (*ApprovalStep, error)
	ListChain(ctx context.Context, claimID uuid.UUID, claimType ClaimType) ([]ApprovalStep, error)
	// ListActionable returns the PENDING steps of approverID that their
	// claim is currently waiting on.
	ListActionable(ctx context.Context, approverID uuid.UUID) ([]ApprovalStep, error)
	LockClaim(ctx context.Context, claimID uuid.UUID, claimType ClaimType) (*ClaimState, error)

	// The writes below are conditional on the row still being in the state
	// the caller read and return the number of rows changed.
	CompleteStep(ctx context.Context, stepID uuid.UUID, status string, comments *string, at time.Time) (int64, error)
	ActivateStep(ctx context.Context, stepID uuid.UUID, at time.Time) (int64, error)
	AdvanceClaim(ctx context.Context, claimID uuid.UUID, claimType ClaimType, from, to int) (int64, error)
	CloseClaim(ctx context.Context, claimID uuid.UUID, claimType ClaimType, status string) (int64, error)
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

func (r *repository) CreateSteps(ctx context.Context, steps []ApprovalStep) error {
	if len(steps) == 0 {
		return nil
	}
	return dbtx.Session(ctx, r.db, r.tx).Create(&steps).Error
}

func (r *repository) FindStepByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*ApprovalStep, error) {
	db := dbtx.Session(ctx, r.db, r.tx)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var s ApprovalStep
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindStepByOrder(ctx context.Context, claimID uuid.UUID, claimType ClaimType, order int) (*ApprovalStep, error) {
	var s ApprovalStep
	err := dbtx.Session(ctx, r.db, r.tx).
		Where("claim_id = ? AND claim_type = ? AND step_order = ?", claimID, claimType, order).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListChain(ctx context.Context, claimID uuid.UUID, claimType ClaimType) ([]ApprovalStep, error) {
	var steps []ApprovalStep
	err := dbtx.Session(ctx, r.db, r.tx).
		Where("claim_id = ? AND claim_type = ?", claimID, claimType).
		Order("step_order ASC").
		Find(&steps).Error
	return steps, err
}

func (r *repository) ListActionable(ctx context.Context, approverID uuid.UUID) ([]ApprovalStep, error) {
	var out []ApprovalStep
	for _, ct := range ClaimTypes() {
		table := ct.Table()

		var steps []ApprovalStep
		err := dbtx.Session(ctx, r.db, r.tx).
			Model(&ApprovalStep{}).
			Select("approval_steps.*").
			Joins("JOIN "+table+" ON "+table+".id = approval_steps.claim_id").
			Where("approval_steps.claim_type = ?", ct).
			Where("approval_steps.approver_id = ? AND approval_steps.status = ?", approverID, StatusPending).
			Where(table+".status = ? AND "+table+".current_step = approval_steps.step_order", StatusPending).
			Order("approval_steps.created_at ASC").
			Find(&steps).Error
		if err != nil {
			return nil, err
		}
		out = append(out, steps...)
	}
	return out, nil
}

func (r *repository) LockClaim(ctx context.Context, claimID uuid.UUID, claimType ClaimType) (*ClaimState, error) {
	table := claimType.Table()
	if table == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var c ClaimState
	err := dbtx.Session(ctx, r.db, r.tx).
		Table(table).
		Select("id, user_id, status, current_step").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", claimID).
		Take(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) CompleteStep(ctx context.Context, stepID uuid.UUID, status string, comments *string, at time.Time) (int64, error) {
	res := dbtx.Session(ctx, r.db, r.tx).
		Model(&ApprovalStep{}).
		Where("id = ? AND status = ?", stepID, StatusPending).
		Updates(map[string]any{
			"status":       status,
			"comments":     comments,
			"processed_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ActivateStep(ctx context.Context, stepID uuid.UUID, at time.Time) (int64, error) {
	res := dbtx.Session(ctx, r.db, r.tx).
		Model(&ApprovalStep{}).
		Where("id = ? AND status = ?", stepID, StatusPending).
		Update("activated_at", at)
	return res.RowsAffected, res.Error
}

func (r *repository) AdvanceClaim(ctx context.Context, claimID uuid.UUID, claimType ClaimType, from, to int) (int64, error) {
	res := dbtx.Session(ctx, r.db, r.tx).
		Table(claimType.Table()).
		Where("id = ? AND status = ? AND current_step = ?", claimID, StatusPending, from).
		Updates(map[string]any{
			"current_step": to,
			"updated_at":   time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CloseClaim(ctx context.Context, claimID uuid.UUID, claimType ClaimType, status string) (int64, error) {
	res := dbtx.Session(ctx, r.db, r.tx).
		Table(claimType.Table()).
		Where("id = ? AND status = ?", claimID, StatusPending).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
