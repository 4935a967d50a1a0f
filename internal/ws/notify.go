package ws

import (
	"context"
	"encoding/json"
	"time"

	"recipe-sync/internal/domain/job"
)

const (
	EventJobUpdated = "job_updated"
	EventJobStalled = "job_stalled"
)

type JobEvent struct {
	Type      string `json:"type"`
	JobID     string `json:"jobId"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Notifier turns job changes into hub messages for the job owner.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) JobUpdated(_ context.Context, j job.ScrapingJob) {
	n.publish(j, EventJobUpdated, "")
}

func (n *Notifier) JobStalled(_ context.Context, j job.ScrapingJob, reason string) {
	n.publish(j, EventJobStalled, reason)
}

func (n *Notifier) publish(j job.ScrapingJob, typ, reason string) {
	if n == nil || n.hub == nil {
		return
	}
	b, err := json.Marshal(JobEvent{
		Type:      typ,
		JobID:     j.ID.String(),
		Status:    string(j.Status),
		Reason:    reason,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	n.hub.Publish(j.UserID.String(), b)
}
