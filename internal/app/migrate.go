package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/approval"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/auth"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/balance"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/claim"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/identity"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/leave"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/messaging/kafka"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table the services read or write.
func Models() []any {
	models := []any{
		&balance.LeaveBalance{},
		&leave.LeaveRequest{},
		&approval.ApprovalStep{},
		&kafka.OutboxEvent{},
	}
	models = append(models, auth.Models()...)
	models = append(models, identity.Models()...)
	models = append(models, claim.Models()...)
	return models
}

func Migrate(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	logger.Named("app.migrate").Info("schema migrated", zap.Int("tables", len(Models())))
	return nil
}

// DefaultGrants is the permission set seeded per role. Role names match the
// default capability mapping in config.
var DefaultGrants = map[string][]string{
	"EMPLOYEE": {},
	"MANAGER": {
		"leave:read", "leave:read_all", "leave:approve",
		"leave_balance:read", "claim:read",
		"approval:read", "approval:process",
	},
	"FINANCE_ADMIN": {
		"claim:read", "approval:read", "approval:process",
	},
	"HR_ADMIN": {
		"leave:read", "leave:read_all", "leave:approve",
		"leave_balance:read", "claim:read",
		"approval:read", "approval:process",
		"role:read", "role:manage",
	},
}

// Seed inserts the default roles and permissions. Existing rows are kept, so
// running it twice is harmless.
func Seed(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	log := logger.Named("app.seed")

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		permIDs := map[string]uuid.UUID{}
		for role, grants := range DefaultGrants {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&identity.Role{ID: uuid.New(), Name: role}).Error; err != nil {
				return err
			}

			var stored identity.Role
			if err := tx.Where("name = ?", role).Take(&stored).Error; err != nil {
				return err
			}

			for _, grant := range grants {
				id, ok := permIDs[grant]
				if !ok {
					var err error
					if id, err = upsertPermission(tx, grant); err != nil {
						return err
					}
					permIDs[grant] = id
				}

				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&identity.RolePermission{RoleID: stored.ID, PermissionID: id}).Error; err != nil {
					return err
				}
			}
			log.Info("role seeded", zap.String("role", role), zap.Int("permissions", len(grants)))
		}
		return nil
	})
}

func upsertPermission(tx *gorm.DB, grant string) (uuid.UUID, error) {
	resource, action, ok := strings.Cut(grant, ":")
	if !ok || resource == "" || action == "" {
		return uuid.Nil, fmt.Errorf("malformed grant %q", grant)
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&identity.Permission{ID: uuid.New(), Resource: resource, Action: action, Label: grant}).Error; err != nil {
		return uuid.Nil, err
	}

	var stored identity.Permission
	if err := tx.Where("resource = ? AND action = ?", resource, action).Take(&stored).Error; err != nil {
		return uuid.Nil, err
	}
	return stored.ID, nil
}
