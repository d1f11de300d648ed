package injector

import (
	"context"
	"time"

	"travelapproval/internal/config"
	"travelapproval/internal/database"
	"travelapproval/internal/logger"
	"travelapproval/internal/middleware"
	"travelapproval/internal/seed"
	"travelapproval/internal/service"
	"travelapproval/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Application is the wired process: HTTP engine plus what the CLI commands need.
type Application struct {
	Config *config.Config
	DB     *gorm.DB
	Hub    *websocket.Hub
	Router *gin.Engine
	Seeder *seed.Seeder
}

func provideDB(cfg *config.Config) (*gorm.DB, error) {
	return database.NewConnection(cfg.DatabaseURL)
}

func provideTokenConfig(cfg *config.Config) service.TokenConfig {
	return service.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}
}

// provideLoginLimiter shares the login budget through redis when configured
// and falls back to a per-process limiter otherwise.
func provideLoginLimiter(cfg *config.Config) middleware.RateLimiter {
	if cfg.RedisAddress == "" {
		return middleware.NewMemoryRateLimiter(cfg.LoginRatePerMinute)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Get().WithError(err).Warn("redis unreachable, using in-memory login rate limiter")
		_ = client.Close()
		return middleware.NewMemoryRateLimiter(cfg.LoginRatePerMinute)
	}

	return middleware.NewRedisRateLimiter(client, "travelapproval", cfg.LoginRatePerMinute)
}

func newApplication(cfg *config.Config, db *gorm.DB, hub *websocket.Hub, engine *gin.Engine, seeder *seed.Seeder) *Application {
	return &Application{Config: cfg, DB: db, Hub: hub, Router: engine, Seeder: seeder}
}
