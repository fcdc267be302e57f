package middleware

import (
	"fmt"

	"tabwise_server/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit throttles API calls per install id (per IP before auth) using
// the Redis sliding-window limiter. With no Redis client it is a no-op.
func RateLimit(redisClient *redis.Client, requestsPerSecond, burst int) fiber.Handler {
	limiter := ratelimit.NewSlidingWindowLimiter(redisClient, requestsPerSecond, burst)
	return func(c *fiber.Ctx) error {
		key := InstallID(c)
		if key == "" {
			key = c.IP()
		}

		allowed, wait := limiter.Allow(c.Context(), key)
		if !allowed {
			c.Set("Retry-After", fmt.Sprintf("%.0f", wait.Seconds()+1))
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		}
		return c.Next()
	}
}
