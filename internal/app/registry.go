package app

import (
	"time"

	"go-leave/internal/auth"
	"go-leave/internal/auth/token"
	"go-leave/internal/config"
	"go-leave/internal/leave"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg *config.Config,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository()
	userRepo := user.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)
	if err := rbacService.LoadPolicy(); err != nil {
		return err
	}

	// --- Tokens ---
	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL, token.NewRedisStore(rdb))

	// --- Services ---
	userService := user.NewService(userRepo)
	authService := auth.NewService(userRepo, tokens)
	leaveService := leave.NewService(leaveRepo, userService, time.Now)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	leaveHandler := leave.NewHandler(leaveService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		auth.RegisterRoutes(api, authHandler, tokens, logger)
		user.RegisterRoutes(api, userHandler, tokens, rbacService, logger)
		leave.RegisterRoutes(api, leaveHandler, tokens, rbacService, rdb, logger)
		rbac.RegisterRoutes(api, rbacHandler, tokens, logger)
	}

	return nil
}
