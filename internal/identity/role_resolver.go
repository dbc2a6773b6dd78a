package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Capability names a duty in the workflow. Configuration maps each one to a
// role, so the engine never hardcodes role names.
type Capability string

const (
	CapabilityChainManager Capability = "chain_manager"
	CapabilityChainFinance Capability = "chain_finance"
	CapabilityEscalationHR Capability = "escalation_hr"
)

//go:generate mockgen -source=role_resolver.go -destination=mock/role_resolver_mock.go -package=mock
type RoleResolver interface {
	// ResolveUsersByRole returns holders of the capability's role in a stable
	// order (oldest assignment first). An unmapped capability yields no users.
	ResolveUsersByRole(ctx context.Context, capability Capability) ([]string, error)
}

type roleResolver struct {
	db     *gorm.DB
	roles  map[Capability]string
	logger *zap.Logger
}

// NewRoleResolver maps capabilities to roles. A mapped value may be a role id
// or a role name.
func NewRoleResolver(db *gorm.DB, roles map[string]string, logger ...*zap.Logger) RoleResolver {
	l := zap.L().Named("identity.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("identity.resolver")
	}

	mapped := make(map[Capability]string, len(roles))
	for k, v := range roles {
		mapped[Capability(k)] = v
	}
	return &roleResolver{db: db, roles: mapped, logger: l}
}

func (r *roleResolver) ResolveUsersByRole(ctx context.Context, capability Capability) ([]string, error) {
	role := r.roles[capability]
	if role == "" {
		r.logger.Warn("capability has no role mapping", zap.String("capability", string(capability)))
		return nil, nil
	}

	q := r.db.WithContext(ctx).
		Table("user_roles").
		Select("user_roles.user_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id")
	if id, err := uuid.Parse(role); err == nil {
		q = q.Where("roles.id = ?", id)
	} else {
		q = q.Where("roles.name = ?", role)
	}

	var userIDs []string
	if err := q.Order("user_roles.created_at ASC, user_roles.user_id ASC").Pluck("user_roles.user_id", &userIDs).Error; err != nil {
		r.logger.Error("resolve users by role failed", zap.String("capability", string(capability)), zap.Error(err))
		return nil, err
	}

	r.logger.Debug("resolved capability",
		zap.String("capability", string(capability)),
		zap.String("role", role),
		zap.Int("users", len(userIDs)),
	)
	return userIDs, nil
}
