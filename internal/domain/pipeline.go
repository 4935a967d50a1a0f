package domain

import "time"

// PipelineStatus is the operator view of the scraping pipeline.
type PipelineStatus struct {
	JobsByStatus     map[string]int `json:"jobs_by_status"`
	TotalJobs        int            `json:"total_jobs"`
	StalledJobs      int            `json:"stalled_jobs"`
	StallAfter       string         `json:"stall_after"`
	RecipesFromJobs  int            `json:"recipes_from_jobs"`
	DatabaseHealthy  bool           `json:"database_healthy"`
	RedisHealthy     bool           `json:"redis_healthy"`
	ActorConfigured  bool           `json:"actor_configured"`
	WebsocketClients int            `json:"websocket_clients"`
	ServerTime       time.Time      `json:"server_time"`
}
