package claim

import (
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/approval"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseClaim struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Category    string          `gorm:"type:varchar(50);not null"`
	Description string          `gorm:"type:text"`
	ReceiptURL  *string         `gorm:"type:text"`

	Status      string `gorm:"type:varchar(20);not null;index"`
	CurrentStep int    `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ExpenseClaim) TableName() string {
	return approval.ClaimExpense.Table()
}

type SalaryAdvance struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Reason         string          `gorm:"type:text;not null"`
	RepaymentTerms string          `gorm:"type:varchar(100)"`

	Status      string `gorm:"type:varchar(20);not null;index"`
	CurrentStep int    `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SalaryAdvance) TableName() string {
	return approval.ClaimAdvance.Table()
}

func Models() []any {
	return []any{&ExpenseClaim{}, &SalaryAdvance{}}
}
