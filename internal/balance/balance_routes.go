package balance

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
	balances := r.Group("/leave-balances")
	balances.Use(auth)
	{
		balances.GET("/me", handler.GetMine)
		balances.GET("/:userId", middleware.RBACAuthorize(rbacService, "leave_balance", "read"), handler.GetByUser)
	}
}
