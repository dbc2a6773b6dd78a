package rbac

import (
	"context"
	"sync"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/domain"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/apperror"

	"github.com/casbin/casbin/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error)
	ListRoles(ctx context.Context) ([]domain.RoleResponse, error)
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	AssignRole(ctx context.Context, req AssignRoleRequest) error
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{repo: repo, enforcer: enforcer, logger: l}
}

func (s *service) LoadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked(ctx)
}

// loadPolicyUnlocked rebuilds the enforcer from the database, so role
// changes apply on the next check.
func (s *service) loadPolicyUnlocked(ctx context.Context) error {
	s.enforcer.ClearPolicy()

	userRoles, err := s.repo.GetUserRoles(ctx)
	if err != nil {
		return err
	}
	for _, ur := range userRoles {
		if _, err := s.enforcer.AddGroupingPolicy(ur.UserID, ur.RoleID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Debug("rbac policy loaded",
		zap.Int("user_roles", len(userRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

func (s *service) Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadPolicyUnlocked(ctx); err != nil {
		s.logger.Error("rbac policy load failed", zap.Error(err))
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.UserID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed", zap.String("user_id", req.UserID), zap.Error(err))
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("user_id", req.UserID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) ListRoles(ctx context.Context) ([]domain.RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	rolePerms, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		return nil, err
	}

	byRole := make(map[string][]string)
	for _, rp := range rolePerms {
		byRole[rp.RoleID] = append(byRole[rp.RoleID], rp.Resource+":"+rp.Action)
	}

	out := make([]domain.RoleResponse, 0, len(roles))
	for _, r := range roles {
		perms := byRole[r.ID.String()]
		if perms == nil {
			perms = []string{}
		}
		out = append(out, domain.RoleResponse{
			ID:          r.ID.String(),
			Name:        r.Name,
			Description: r.Description,
			Permissions: perms,
		})
	}
	return out, nil
}

func (s *service) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, PermissionResponse{ID: p.ID.String(), Resource: p.Resource, Action: p.Action, Label: p.Label})
	}
	return out, nil
}

func (s *service) AssignRole(ctx context.Context, req AssignRoleRequest) error {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperror.ErrInvalidInput
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return apperror.ErrInvalidInput
	}

	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		s.logger.Error("assign role failed", zap.String("user_id", req.UserID), zap.String("role_id", req.RoleID), zap.Error(err))
		return err
	}
	s.logger.Info("role assigned", zap.String("user_id", req.UserID), zap.String("role_id", req.RoleID))
	return nil
}
