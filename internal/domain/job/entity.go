package job

import (
	"time"

	"recipe-sync/internal/domain/platform"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Keys stored in ScrapingJob.Result.
const (
	ResultRunID     = "apifyRunId"
	ResultDatasetID = "datasetId"
	ResultRunStatus = "runStatus"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a job in status s may move to next.
// Terminal states never move and nothing returns to pending.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	switch next {
	case StatusPending:
		return false
	case StatusProcessing:
		return s == StatusPending || s == StatusProcessing
	default:
		return true
	}
}

type ScrapingJob struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	URL          string            `json:"url"`
	Platform     platform.Platform `json:"platform"`
	Status       Status            `json:"status"`
	Result       map[string]any    `json:"result"`
	ErrorMessage *string           `json:"error_message"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// RunID returns the actor run id recorded at launch, if any.
func (j ScrapingJob) RunID() string {
	return j.resultString(ResultRunID)
}

func (j ScrapingJob) DatasetID() string {
	return j.resultString(ResultDatasetID)
}

func (j ScrapingJob) resultString(key string) string {
	if j.Result == nil {
		return ""
	}
	v, ok := j.Result[key].(string)
	if !ok {
		return ""
	}
	return v
}
