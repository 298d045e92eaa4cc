package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"certgen/internal/infra/logging"
)

// AssetChecker reports whether the template and font are deployed.
type AssetChecker interface {
	Check() error
}

// ReadinessProbe reports ready when both assets exist and, if configured,
// the limiter's Redis answers a ping.
func ReadinessProbe(assets AssetChecker, rdb *redis.Client) func(*fiber.Ctx) bool {
	return func(c *fiber.Ctx) bool {
		if err := assets.Check(); err != nil {
			logging.Warn("Readiness check failed", "error", err.Error())
			return false
		}
		if rdb == nil {
			return true
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logging.Warn("Readiness check failed", "error", err.Error())
			return false
		}
		return true
	}
}
