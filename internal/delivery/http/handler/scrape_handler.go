package handler

import (
	"errors"
	"log"
	"strings"
	"time"

	"recipe-sync/internal/delivery/http/dto"
	"recipe-sync/internal/delivery/http/middleware"
	"recipe-sync/internal/domain/job"
	"recipe-sync/internal/pkg/response"
	"recipe-sync/internal/usecase/scrape"

	"github.com/gofiber/fiber/v3"
)

type ScrapeHandler struct {
	uc  scrape.Usecase
	log *log.Logger
}

func NewScrapeHandler(uc scrape.Usecase, logger *log.Logger) *ScrapeHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ScrapeHandler{uc: uc, log: logger}
}

func (h *ScrapeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/scrape", h.Submit)
	r.Get("/scrape", h.ListJobs)
	r.Get("/scrape/status", h.Status)
	r.Post("/scrape/relaunch", h.Relaunch)
	r.Get("/recipes", h.ListRecipes)
}

func (h *ScrapeHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitScrapeRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	userID, err := middleware.ResolveUserID(c, req.UserID)
	if err != nil {
		return err
	}

	start := time.Now()
	jobID, err := h.uc.Submit(c.Context(), scrape.SubmitInput{
		URL:      req.URL,
		Platform: req.Platform,
		UserID:   userID,
	})
	if err != nil {
		return mapScrapeError(err)
	}

	h.log.Printf("http_request method=%s path=%s status=created job_id=%s duration=%s", c.Method(), c.Path(), jobID, time.Since(start))
	return response.JSON(c, fiber.StatusCreated, dto.SubmitScrapeResponse{JobID: jobID.String()})
}

func (h *ScrapeHandler) ListJobs(c fiber.Ctx) error {
	userID, err := middleware.ResolveUserID(c, c.Query("userId"))
	if err != nil {
		return err
	}
	if userID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing userId", nil, nil)
	}

	jobs, err := h.uc.ListJobs(c.Context(), userID)
	if err != nil {
		return mapScrapeError(err)
	}
	if jobs == nil {
		jobs = []job.ScrapingJob{}
	}
	return response.JSON(c, fiber.StatusOK, dto.ListJobsResponse{Jobs: jobs})
}

func (h *ScrapeHandler) Status(c fiber.Ctx) error {
	jobID := strings.TrimSpace(c.Query("jobId"))
	if jobID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing jobId", nil, nil)
	}

	status, err := h.uc.Resolve(c.Context(), jobID, ownerOf(c))
	if err != nil {
		return mapScrapeError(err)
	}
	return response.JSON(c, fiber.StatusOK, dto.JobStatusResponse{Status: status})
}

// Relaunch retries the actor launch of a job left pending.
func (h *ScrapeHandler) Relaunch(c fiber.Ctx) error {
	jobID := strings.TrimSpace(c.Query("jobId"))
	if jobID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing jobId", nil, nil)
	}

	status, err := h.uc.Relaunch(c.Context(), jobID, ownerOf(c))
	if err != nil {
		return mapScrapeError(err)
	}
	return response.JSON(c, fiber.StatusOK, dto.JobStatusResponse{Status: status})
}

func (h *ScrapeHandler) ListRecipes(c fiber.Ctx) error {
	userID, err := middleware.ResolveUserID(c, c.Query("userId"))
	if err != nil {
		return err
	}
	if userID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing userId", nil, nil)
	}

	recipes, err := h.uc.ListRecipes(c.Context(), userID)
	if err != nil {
		return mapScrapeError(err)
	}
	return response.JSON(c, fiber.StatusOK, dto.ListRecipesResponse{Recipes: recipes})
}

// ownerOf is the user a job lookup is scoped to. Without auth it is empty
// and any job id resolves.
func ownerOf(c fiber.Ctx) string {
	if id, ok := middleware.AuthenticatedUser(c); ok {
		return id.String()
	}
	return ""
}

func mapScrapeError(err error) error {
	switch {
	case errors.Is(err, scrape.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid URL", nil, err)
	case errors.Is(err, scrape.ErrUnsupportedPlatform):
		return middleware.NewAppError(fiber.StatusBadRequest, "Unsupported platform", nil, err)
	case errors.Is(err, scrape.ErrMissingUser):
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing userId", nil, err)
	case errors.Is(err, scrape.ErrNoRunID):
		return middleware.NewAppError(fiber.StatusBadRequest, "No run id on job", nil, err)
	case errors.Is(err, scrape.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, scrape.ErrNotPending):
		return middleware.NewAppError(fiber.StatusConflict, "Job is not pending", nil, err)
	case errors.Is(err, scrape.ErrActorUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Actor unavailable", nil, err)
	case errors.Is(err, scrape.ErrStatusFetch):
		return middleware.NewAppError(fiber.StatusInternalServerError, "Failed to fetch run status", nil, err)
	case errors.Is(err, scrape.ErrPersistence):
		return middleware.NewAppError(fiber.StatusInternalServerError, "Failed to access job store", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "Internal server error", nil, err)
	}
}
