package recipe

import (
	"context"
	"errors"
	"time"

	"recipe-sync/internal/domain/platform"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const DefaultTitle = "Untitled recipe"

var ErrExists = errors.New("recipe already recorded for scraping job")

type Recipe struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	Title          string            `json:"title"`
	Description    *string           `json:"description"`
	SourceURL      *string           `json:"source_url"`
	SourcePlatform platform.Platform `json:"source_platform"`
	ThumbnailURL   *string           `json:"thumbnail_url"`
	Ingredients    []any             `json:"ingredients"`
	Instructions   []any             `json:"instructions"`
	Servings       *int              `json:"servings"`
	PrepTime       *int              `json:"prep_time"`
	CookTime       *int              `json:"cook_time"`
	Difficulty     Difficulty        `json:"difficulty"`
	Tags           []string          `json:"tags"`
	IsFavorite     bool              `json:"is_favorite"`
	ScrapingJobID  *uuid.UUID        `json:"scraping_job_id"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type Repository interface {
	Insert(ctx context.Context, r Recipe) (uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Recipe, error)
}
