package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"testing"

	"recipe-sync/internal/delivery/http/middleware"
	"recipe-sync/internal/domain"
	"recipe-sync/internal/domain/job"

	"github.com/gofiber/fiber/v3"
)

type fakePipelineStatus struct {
	out domain.PipelineStatus
	err error
}

func (f fakePipelineStatus) GetStatus(context.Context) (domain.PipelineStatus, error) {
	return f.out, f.err
}

func TestPipelineStatusHandler_OK(t *testing.T) {
	app := fiber.New()
	uc := fakePipelineStatus{out: domain.PipelineStatus{
		JobsByStatus:    map[string]int{string(job.StatusPending): 2},
		TotalJobs:       2,
		DatabaseHealthy: true,
	}}
	NewPipelineStatusHandler(uc, log.New(io.Discard, "", 0)).RegisterRoutes(app)

	status, out := doRequest(t, app, http.MethodGet, "/pipeline/metrics", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(out) == 0 {
		t.Fatalf("expected body")
	}
}

func TestPipelineStatusHandler_Error(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	NewPipelineStatusHandler(fakePipelineStatus{err: errors.New("db gone")}, log.New(io.Discard, "", 0)).RegisterRoutes(app)

	status, out := doRequest(t, app, http.MethodGet, "/pipeline/metrics", "", nil)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if out["error"] != "Internal server error" {
		t.Fatalf("unexpected body %v", out)
	}
}
