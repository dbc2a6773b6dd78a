package balance

import (
	"time"

	"github.com/google/uuid"
)

// LeaveBalance holds the remaining days of one user for one year.
type LeaveBalance struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balances_user_year"`
	Year   int       `gorm:"not null;uniqueIndex:idx_leave_balances_user_year"`

	Earned int `gorm:"not null;default:0;check:chk_leave_balances_earned,earned >= 0"`
	Casual int `gorm:"not null;default:0;check:chk_leave_balances_casual,casual >= 0"`
	Sick   int `gorm:"not null;default:0;check:chk_leave_balances_sick,sick >= 0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

type Field string

const (
	FieldEarned Field = "earned"
	FieldCasual Field = "casual"
	FieldSick   Field = "sick"
)

func (f Field) Valid() bool {
	switch f {
	case FieldEarned, FieldCasual, FieldSick:
		return true
	}
	return false
}

func (b LeaveBalance) Available(f Field) int {
	switch f {
	case FieldEarned:
		return b.Earned
	case FieldCasual:
		return b.Casual
	case FieldSick:
		return b.Sick
	}
	return 0
}

// Entitlement seeds a balance row the first time a (user, year) is read.
type Entitlement struct {
	Earned int
	Casual int
	Sick   int
}

var DefaultEntitlement = Entitlement{Earned: 15, Casual: 10, Sick: 10}
