package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name   string
		db     Pinger
		cache  Pinger
		status int
		want   string
		cacheW string
	}{
		{name: "all up", db: up, cache: up, status: http.StatusOK, want: "ok", cacheW: "up"},
		{name: "cache down", db: up, cache: down, status: http.StatusOK, want: "ok", cacheW: "down"},
		{name: "db down", db: down, cache: up, status: http.StatusServiceUnavailable, want: "degraded", cacheW: "up"},
		{name: "no cache", db: up, cache: nil, status: http.StatusOK, want: "ok", cacheW: "disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			NewHealthHandler(tt.db, tt.cache).RegisterRoutes(app)

			status, out := doRequest(t, app, http.MethodGet, "/health", "", nil)
			if status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, status)
			}
			if out["status"] != tt.want || out["cache"] != tt.cacheW {
				t.Fatalf("unexpected body %v", out)
			}
		})
	}
}
