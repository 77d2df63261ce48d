package rbac

import (
	"go-leave/internal/auth/token"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, tokens token.Manager, logger *zap.Logger) {
	group := r.Group("/permissions")
	group.Use(middleware.AuthMiddleware(tokens))
	group.Use(middleware.ContextLogger(logger))
	{
		group.GET("", handler.MyPermissions)
	}
}
