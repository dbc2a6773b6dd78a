package leave

import (
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
	writeGuards ...gin.HandlerFunc,
) {
	create := append(append([]gin.HandlerFunc{}, writeGuards...), handler.Create)

	leaves := r.Group("/leaves")
	leaves.Use(auth)
	{
		leaves.GET("/me", handler.GetMine)
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read_all"), handler.GetAll)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetByID)
		leaves.POST("", create...)
		leaves.POST("/:id/decision", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.Decide)
	}
}
