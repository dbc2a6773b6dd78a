package approval

import (
	"time"

	"github.com/google/uuid"
)

type ClaimType string

const (
	ClaimExpense ClaimType = "EXPENSE"
	ClaimAdvance ClaimType = "ADVANCE"
)

// Step and claim statuses.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

type Outcome string

const (
	OutcomeHalted    Outcome = "halted"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeCompleted Outcome = "completed"
)

// ClaimTypes lists every claim variant routed through approval chains.
func ClaimTypes() []ClaimType {
	return []ClaimType{ClaimExpense, ClaimAdvance}
}

func ParseClaimType(v string) (ClaimType, bool) {
	switch ClaimType(v) {
	case ClaimExpense, ClaimAdvance:
		return ClaimType(v), true
	}
	return "", false
}

// Table is the table holding claims of this type. Both carry the id, user_id,
// status and current_step columns the processor works on.
func (t ClaimType) Table() string {
	switch t {
	case ClaimExpense:
		return "expense_claims"
	case ClaimAdvance:
		return "salary_advances"
	}
	return ""
}

type ApprovalStep struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClaimID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_approval_steps_claim_order,priority:1"`
	ClaimType  ClaimType `gorm:"type:varchar(20);not null;uniqueIndex:ux_approval_steps_claim_order,priority:2"`
	StepOrder  int       `gorm:"not null;uniqueIndex:ux_approval_steps_claim_order,priority:3"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;index"`

	Status   string  `gorm:"type:varchar(20);not null;index"`
	Comments *string `gorm:"type:text"`

	// ActivatedAt is when the step became the one the claim waits on.
	ActivatedAt *time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

func (ApprovalStep) TableName() string {
	return "approval_steps"
}

// ClaimState is the slice of a claim row the processor reads and writes.
type ClaimState struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Status      string
	CurrentStep int
}

// PlannedStep is one resolved level of a chain, before it is persisted.
type PlannedStep struct {
	Capability string
	ApproverID uuid.UUID
}

type ChainPlan struct {
	ClaimType ClaimType
	Steps     []PlannedStep
}
