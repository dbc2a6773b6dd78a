package rbac_http

import (
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/middleware"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *rbac.Handler, auth gin.HandlerFunc, service rbac.Service) {
	group := r.Group("/rbac")
	group.Use(auth)
	{
		group.POST("/enforce", middleware.RBACAuthorize(service, "role", "read"), handler.Enforce)

		group.GET("/roles", middleware.RBACAuthorize(service, "role", "read"), handler.ListRoles)
		group.GET("/permissions", middleware.RBACAuthorize(service, "role", "read"), handler.ListPermissions)
		group.POST("/assignments", middleware.RBACAuthorize(service, "role", "manage"), handler.AssignRole)
	}
}
