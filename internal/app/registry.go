package app

import (
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/approval"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/auth"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/balance"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/claim"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/config"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/identity"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/leave"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/messaging/kafka"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/middleware"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/notification"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/rbac"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/rbac/infra"
	rbachttp "github.com/Ashokvp-05/hr-management-system-sub000/internal/rbac/rbac_http"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/dbtx"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	gormDB *gorm.DB,
	rdb redis.Cmdable,
	logger *zap.Logger,
) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	runner := dbtx.NewRunner(sqlDB, cfg.Engine.TxMaxAttempts, logger)

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	rbacRepo := rbac.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	claimRepo := claim.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)

	// --- Services ---
	notifier := notification.NewOutboxNotifier(outboxRepo, logger)
	resolver := identity.NewRoleResolver(gormDB, cfg.Roles, logger)

	e := cfg.Engine.Entitlement
	authService := auth.NewService(authRepo, cfg.JWT.Secret, logger)
	balanceService := balance.NewService(runner, balanceRepo, balance.Entitlement{Earned: e.Earned, Casual: e.Casual, Sick: e.Sick}, logger)
	leaveService := leave.NewService(runner, leaveRepo, balanceService, notifier, logger)
	approvalService := approval.NewService(runner, approvalRepo, resolver, notifier, approval.ChainsFromConfig(cfg.Chains), logger)
	claimService := claim.NewService(runner, claimRepo, approvalService, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)
	balanceHandler := balance.NewHandler(balanceService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	approvalHandler := approval.NewHandler(approvalService, logger)
	claimHandler := claim.NewHandler(claimService, logger)

	// --- Routes Registration ---
	authMiddleware := middleware.AuthMiddleware(cfg.JWT.Secret)
	writeGuards := []gin.HandlerFunc{
		middleware.RateLimitByUser(2, 5),
		middleware.Idempotency(rdb),
	}

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMiddleware)
		rbachttp.RegisterRoutes(api, rbacHandler, authMiddleware, rbacService)
		balance.RegisterRoutes(api, balanceHandler, authMiddleware, rbacService)
		leave.RegisterRoutes(api, leaveHandler, authMiddleware, rbacService, writeGuards...)
		claim.RegisterRoutes(api, claimHandler, authMiddleware, rbacService, writeGuards...)
		approval.RegisterRoutes(api, approvalHandler, authMiddleware, rbacService)
	}

	return nil
}
