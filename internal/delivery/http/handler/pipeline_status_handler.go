package handler

import (
	"log"
	"time"

	"recipe-sync/internal/pkg/response"
	"recipe-sync/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type PipelineStatusHandler struct {
	uc  usecase.PipelineStatusUsecase
	log *log.Logger
}

func NewPipelineStatusHandler(uc usecase.PipelineStatusUsecase, logger *log.Logger) *PipelineStatusHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &PipelineStatusHandler{uc: uc, log: logger}
}

func (h *PipelineStatusHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/pipeline/metrics", h.GetStatus)
}

func (h *PipelineStatusHandler) GetStatus(c fiber.Ctx) error {
	start := time.Now()

	data, err := h.uc.GetStatus(c.Context())
	if err != nil {
		h.log.Printf("http_request method=%s path=%s status=error duration=%s err=%v", c.Method(), c.Path(), time.Since(start), err)
		return err
	}

	h.log.Printf("http_request method=%s path=%s status=ok duration=%s", c.Method(), c.Path(), time.Since(start))
	return response.JSON(c, fiber.StatusOK, data)
}
