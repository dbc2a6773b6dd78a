package identity

import (
	"time"

	"github.com/google/uuid"
)

type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type UserRole struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
}

type Permission struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Resource string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_permissions_resource_action"`
	Action   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_permissions_resource_action"`
	Label    string    `gorm:"type:varchar(100)"`
}

type RolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func Models() []any {
	return []any{&Role{}, &UserRole{}, &Permission{}, &RolePermission{}}
}
