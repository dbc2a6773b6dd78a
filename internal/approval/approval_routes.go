package approval

import (
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
) {
	approvals := r.Group("/approvals")
	approvals.Use(auth)
	{
		approvals.GET("/pending", handler.GetPending)
		approvals.POST("/steps/:stepId/process", middleware.RBACAuthorize(rbacService, "approval", "process"), handler.Process)
		approvals.GET("/chains/:claimType/:claimId", middleware.RBACAuthorize(rbacService, "approval", "read"), handler.GetChain)
	}
}
