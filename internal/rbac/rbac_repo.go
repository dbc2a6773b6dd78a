package rbac

import (
	"context"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/identity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetUserRoles(ctx context.Context) ([]UserRoleRow, error)
	GetRolePermissions(ctx context.Context) ([]RolePermissionRow, error)

	ListRoles(ctx context.Context) ([]identity.Role, error)
	ListPermissions(ctx context.Context) ([]identity.Permission, error)
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type UserRoleRow struct {
	UserID string
	RoleID string
}

type RolePermissionRow struct {
	RoleID   string
	Resource string
	Action   string
}

func (r *repository) GetUserRoles(ctx context.Context) ([]UserRoleRow, error) {
	var result []UserRoleRow
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Select("user_roles.user_id, user_roles.role_id").
		Scan(&result).Error
	return result, err
}

func (r *repository) GetRolePermissions(ctx context.Context) ([]RolePermissionRow, error) {
	var result []RolePermissionRow
	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role_permissions.role_id, permissions.resource, permissions.action").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Scan(&result).Error
	return result, err
}

func (r *repository) ListRoles(ctx context.Context) ([]identity.Role, error) {
	var result []identity.Role
	err := r.db.WithContext(ctx).Order("name").Find(&result).Error
	return result, err
}

func (r *repository) ListPermissions(ctx context.Context) ([]identity.Permission, error) {
	var result []identity.Permission
	err := r.db.WithContext(ctx).Order("resource, action").Find(&result).Error
	return result, err
}

func (r *repository) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&identity.UserRole{UserID: userID, RoleID: roleID, CreatedAt: time.Now().UTC()}).Error
}
