package job

import (
	"context"
	"errors"

	"recipe-sync/internal/domain/platform"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("scraping job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// Update is a partial change to a job. Result is shallow-merged into the
// stored object; nil fields are left untouched.
type Update struct {
	Status       *Status
	Result       map[string]any
	ErrorMessage *string
}

type Repository interface {
	Create(ctx context.Context, url string, p platform.Platform, userID uuid.UUID) (ScrapingJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (ScrapingJob, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ScrapingJob, error)
	Update(ctx context.Context, id uuid.UUID, u Update) (ScrapingJob, error)
}
