package claim

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
	createExpense := append(append([]gin.HandlerFunc{}, writeGuards...), handler.CreateExpense)
	createAdvance := append(append([]gin.HandlerFunc{}, writeGuards...), handler.CreateAdvance)

	claims := r.Group("/claims")
	claims.Use(auth)
	{
		claims.GET("/me", handler.GetMine)
		claims.GET("/:claimType/:id", middleware.RBACAuthorize(rbacService, "claim", "read"), handler.GetByID)
		claims.POST("/expenses", createExpense...)
		claims.POST("/advances", createAdvance...)
	}
}
