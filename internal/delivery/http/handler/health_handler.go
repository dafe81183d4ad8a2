package handler

import (
	"context"
	"time"

	"job-board/internal/notification"
	"job-board/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type CacheStatus interface {
	Available() bool
}

type QueueStats interface {
	Stats() notification.Stats
}

type HealthHandler struct {
	db    Pinger
	cache CacheStatus
	queue QueueStats
}

type healthResponse struct {
	Database      string             `json:"database"`
	Cache         string             `json:"cache"`
	Notifications notification.Stats `json:"notifications"`
}

func NewHealthHandler(db Pinger, cache CacheStatus, queue QueueStats) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, queue: queue}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	out := healthResponse{Database: "up", Cache: "disabled"}
	healthy := true
	if h.db == nil {
		out.Database = "unknown"
	} else if err := h.db.Ping(ctx); err != nil {
		out.Database = "down"
		healthy = false
	}
	if h.cache != nil && h.cache.Available() {
		out.Cache = "up"
	}
	if h.queue != nil {
		out.Notifications = h.queue.Stats()
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Envelope{
			Success: false,
			Message: "unhealthy",
			Object:  out,
			Errors:  []string{"database unreachable"},
		})
	}
	return response.Success(c, fiber.StatusOK, "healthy", out)
}
