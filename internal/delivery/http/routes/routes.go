package routes

import (
	"recipe-sync/internal/delivery/http/handler"
	"recipe-sync/internal/delivery/http/middleware"
	v1 "recipe-sync/internal/delivery/http/routes/v1"
	"recipe-sync/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	Health *handler.HealthHandler
	V1     v1.Handlers
	WS     *ws.Handler
	Auth   *middleware.AuthMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil || r == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
	r.registerWS(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.V1, r.Auth)
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.WS == nil {
		return
	}
	app.Get("/ws/jobs", r.Auth.Middleware(), r.WS.HandleJobsWS)
}
