package http

import (
	"context"
	"time"

	"tabwise_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// BridgeProbe reports whether the host bridge currently accepts calls.
type BridgeProbe interface {
	Healthy() bool
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db     *pgxpool.Pool
	redis  *redis.Client
	mongo  *mongo.Client
	bridge BridgeProbe
}

// NewHealthHandler creates a health handler. Any dependency may be nil.
func NewHealthHandler(db *pgxpool.Pool, redisClient *redis.Client, mongoClient *mongo.Client, bridge BridgeProbe) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, mongo: mongoClient, bridge: bridge}
}

// Register registers health routes outside the authenticated API group.
func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/metrics/latency", h.Latency)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	// Check PostgreSQL
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["postgres"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["postgres"] = "healthy"
		}
	} else {
		checks["postgres"] = "not configured"
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	// Check MongoDB
	if h.mongo != nil {
		if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
			checks["mongodb"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["mongodb"] = "healthy"
		}
	} else {
		checks["mongodb"] = "not configured"
	}

	// Bridge state only degrades readiness, the server itself still works.
	if h.bridge != nil {
		if h.bridge.Healthy() {
			checks["bridge"] = "healthy"
		} else {
			checks["bridge"] = "circuit open"
		}
	} else {
		checks["bridge"] = "not configured"
	}

	status := "ready"
	statusCode := fiber.StatusOK
	if !allHealthy {
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Latency dumps per-operation latency stats collected since startup.
func (h *HealthHandler) Latency(c *fiber.Ctx) error {
	return c.JSON(metrics.GetAllLatencyStats())
}
