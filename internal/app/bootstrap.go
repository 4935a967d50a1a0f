package app

import (
	"fmt"
	"log"
	"strings"

	"recipe-sync/internal/config"
	"recipe-sync/internal/delivery/http/handler"
	"recipe-sync/internal/delivery/http/middleware"
	"recipe-sync/internal/delivery/http/routes"
	v1 "recipe-sync/internal/delivery/http/routes/v1"
	"recipe-sync/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the fiber app around an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:      c.Config.App.AppName,
		ErrorHandler: middleware.ErrorHandler,
	})

	registerGlobalMiddleware(f, c.Logger)

	registry := &routes.Registry{
		Health: handler.NewHealthHandler(c.DB, c.Cache),
		V1: v1.Handlers{
			Scrape:   handler.NewScrapeHandler(c.Scrape, c.Logger),
			Pipeline: handler.NewPipelineStatusHandler(c.Pipeline, c.Logger),
		},
		WS:   ws.NewHandler(c.Hub, c.Logger),
		Auth: middleware.NewAuthMiddleware(c.JWT),
	}
	registry.Register(f)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
