package middleware

import (
	"go-leave/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger attaches a logger tagged with the request id and, when the
// route is authenticated, the caller's user id.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rid := contextutil.GetRequestID(ctx)
		if rid == "" {
			rid = c.GetString("request_id")
		}
		uid := c.GetString(ContextUserID)

		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("user_id", uid),
		)

		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		reqLogger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)

		c.Next()
	}
}
