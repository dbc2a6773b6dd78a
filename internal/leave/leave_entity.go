package leave

import (
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/balance"

	"github.com/google/uuid"
)

type LeaveType string

const (
	TypeEarned  LeaveType = "EARNED"
	TypeCasual  LeaveType = "CASUAL"
	TypeSick    LeaveType = "SICK"
	TypeMedical LeaveType = "MEDICAL"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// BalanceField maps a leave type to the balance counter it draws from.
// MEDICAL shares the sick allowance.
func (t LeaveType) BalanceField() (balance.Field, bool) {
	switch t {
	case TypeEarned:
		return balance.FieldEarned, true
	case TypeCasual:
		return balance.FieldCasual, true
	case TypeSick, TypeMedical:
		return balance.FieldSick, true
	}
	return "", false
}

type LeaveRequest struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_user_dates"`

	Type      LeaveType `gorm:"type:varchar(20);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	TotalDays int       `gorm:"not null"`
	Reason    *string   `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;index"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason *string    `gorm:"type:text"`
	DecidedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// DaysRequested counts calendar days in [start, end], both inclusive.
func DaysRequested(start, end time.Time) int {
	s := truncateDay(start)
	e := truncateDay(end)
	return int(e.Sub(s).Hours()/24) + 1
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
