package handler

import (
	"context"
	"time"

	"recipe-sync/internal/delivery/http/dto"
	"recipe-sync/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness plus the state of the backing stores. A
// down cache is reported but does not fail the check.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
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

	out := dto.HealthResponse{Status: "ok", Database: pingStatus(ctx, h.db), Cache: pingStatus(ctx, h.cache)}
	status := fiber.StatusOK
	if out.Database == "down" {
		out.Status = "degraded"
		status = fiber.StatusServiceUnavailable
	}
	return response.JSON(c, status, out)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
