package escalation

import (
	"context"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/approval"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StalledStep struct {
	StepID      uuid.UUID
	ClaimID     uuid.UUID
	ClaimType   approval.ClaimType
	StepOrder   int
	ApproverID  uuid.UUID
	ActivatedAt *time.Time
	CreatedAt   time.Time
}

// PendingSince is when the step started waiting on its approver.
func (s StalledStep) PendingSince() time.Time {
	if s.ActivatedAt != nil {
		return *s.ActivatedAt
	}
	return s.CreatedAt
}

type Repository interface {
	// ListStalled returns actionable PENDING steps waiting since before
	// cutoff, oldest first. It never writes.
	ListStalled(ctx context.Context, cutoff time.Time) ([]StalledStep, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListStalled(ctx context.Context, cutoff time.Time) ([]StalledStep, error) {
	var out []StalledStep
	for _, ct := range approval.ClaimTypes() {
		table := ct.Table()

		var rows []StalledStep
		err := r.db.WithContext(ctx).
			Table("approval_steps").
			Select("approval_steps.id AS step_id, approval_steps.claim_id, approval_steps.claim_type, "+
				"approval_steps.step_order, approval_steps.approver_id, approval_steps.activated_at, approval_steps.created_at").
			Joins("JOIN "+table+" ON "+table+".id = approval_steps.claim_id").
			Where("approval_steps.claim_type = ? AND approval_steps.status = ?", ct, approval.StatusPending).
			Where(table+".status = ? AND "+table+".current_step = approval_steps.step_order", approval.StatusPending).
			Where("COALESCE(approval_steps.activated_at, approval_steps.created_at) < ?", cutoff).
			Order("approval_steps.created_at ASC").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
