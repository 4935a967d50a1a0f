package dto

import (
	"recipe-sync/internal/domain/job"
	"recipe-sync/internal/domain/recipe"
)

type SubmitScrapeRequest struct {
	URL      string `json:"url"`
	Platform string `json:"platform,omitempty"`
	UserID   string `json:"userId"`
}

type SubmitScrapeResponse struct {
	JobID string `json:"jobId"`
}

type ListJobsResponse struct {
	Jobs []job.ScrapingJob `json:"jobs"`
}

type JobStatusResponse struct {
	Status job.Status `json:"status"`
}

type ListRecipesResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
