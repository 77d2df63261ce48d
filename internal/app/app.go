package app

import (
	"context"
	"net/http"
	"time"

	"go-leave/internal/config"
	"go-leave/internal/leave"
	"go-leave/internal/shared/connection"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the stores, prepares the schema and mounts every module
// on router. The returned func releases the connections.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	db, err := connection.ConnectGORMWithRetry(cfg.Postgres, cfg.DBRetries)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.RedisPass, cfg.DBRetries)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	logger.Info("redis connection established")

	cleanup := func() {
		_ = rdb.Close()
		closeDB(db)
	}

	// 2. Schema + seed data
	if cfg.AutoMigrate {
		if err := migrate(db); err != nil {
			cleanup()
			return nil, err
		}
	}
	if cfg.SeedUsers {
		if err := seedUsers(context.Background(), db); err != nil {
			cleanup()
			return nil, err
		}
	}

	// 3. Register Modules & Routes
	if err := registerModules(router, db, rdb, cfg); err != nil {
		cleanup()
		return nil, err
	}
	router.GET("/healthz", healthHandler(db, rdb))

	return cleanup, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.User{}, &leave.Leave{})
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// healthHandler reports 503 when either store is unreachable.
func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok", "redis": "ok"}
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status["database"] = "down"
			code = http.StatusServiceUnavailable
		}
		if rdb == nil || rdb.Ping(ctx).Err() != nil {
			status["redis"] = "down"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, status)
	}
}
