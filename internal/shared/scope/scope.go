// Package scope holds reusable gorm query scopes.
package scope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy restricts a query to rows filed by userID.
func OwnedBy(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// WithStatus filters by status; an empty status matches everything.
func WithStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}
