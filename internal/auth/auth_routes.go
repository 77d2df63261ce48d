package auth

import (
	"go-leave/internal/auth/token"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, tokens token.Manager, logger *zap.Logger) {
	public := r.Group("")
	public.Use(middleware.ContextLogger(logger))
	{
		public.POST("/register", middleware.RateLimitByIP(0.1, 5), handler.Register)
		public.POST("/login", middleware.RateLimitByIP(0.2, 10), handler.Login)
	}

	session := r.Group("")
	session.Use(middleware.AuthMiddleware(tokens))
	session.Use(middleware.ContextLogger(logger))
	{
		session.GET("/user", middleware.RateLimitByUser(5, 20), handler.Me)
		session.POST("/logout", handler.Logout)
	}
}
