package leave

import (
	"go-leave/internal/auth/token"
	"go-leave/internal/domain"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	tokens token.Manager,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	authed := []gin.HandlerFunc{
		middleware.AuthMiddleware(tokens),
		middleware.ContextLogger(logger),
	}

	leaves := r.Group("/leaves")
	leaves.Use(authed...)
	{
		leaves.GET("",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionRead),
			handler.GetAll,
		)
		leaves.POST("",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionCreate),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		leaves.GET("/stats",
			middleware.RBACAuthorize(rbacService, domain.ResourceStats, domain.ActionRead),
			handler.Stats,
		)
		leaves.PUT("/:id/update",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionUpdate),
			handler.Update,
		)
		leaves.PUT("/:id/updateStatus",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionReview),
			handler.UpdateStatus,
		)
		leaves.DELETE("/:id/delete",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionDelete),
			handler.Delete,
		)
	}

	own := r.Group("")
	own.Use(authed...)
	{
		own.GET("/leaves-current-user",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionRead),
			handler.GetMine,
		)
		own.GET("/leave-stats",
			middleware.RBACAuthorize(rbacService, domain.ResourceStats, domain.ActionRead),
			handler.Stats,
		)
	}
}
