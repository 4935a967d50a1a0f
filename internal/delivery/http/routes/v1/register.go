package v1

import (
	"recipe-sync/internal/delivery/http/handler"
	"recipe-sync/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Scrape   *handler.ScrapeHandler
	Pipeline *handler.PipelineStatusHandler
}

// Register mounts the v1 API. Every route sits behind auth; the middleware
// passes requests through when no jwt secret is configured.
func Register(r fiber.Router, h Handlers, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	protected := r.Group("", auth.Middleware())

	if h.Scrape != nil {
		h.Scrape.RegisterRoutes(protected)
	}
	if h.Pipeline != nil {
		h.Pipeline.RegisterRoutes(protected)
	}
}
