package middleware

import (
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger attaches a request-scoped logger so services can pick it up
// through contextutil without knowing about gin. Run it after RequestID.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		reqLogger := logger.With(zap.String("request_id", contextutil.GetRequestID(ctx)))

		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))
		c.Next()
	}
}
