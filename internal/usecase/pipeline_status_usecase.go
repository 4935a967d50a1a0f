package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"recipe-sync/internal/domain"
	"recipe-sync/internal/domain/job"
)

type JobStatusCounter interface {
	CountByStatus(ctx context.Context) (map[job.Status]int, error)
	CountStalled(ctx context.Context, cutoff time.Time) (int, error)
}

type RecipeCounter interface {
	Count(ctx context.Context) (int, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type ClientCounter interface {
	ClientCount() int
}

type PipelineStatusUsecase interface {
	GetStatus(ctx context.Context) (domain.PipelineStatus, error)
}

type PipelineStatusDeps struct {
	Jobs            JobStatusCounter
	Recipes         RecipeCounter
	DB              Pinger
	Cache           Pinger
	Clients         ClientCounter
	StallAfter      time.Duration
	ActorConfigured bool
}

type PipelineStatus struct {
	deps PipelineStatusDeps
	log  *log.Logger
	now  func() time.Time
}

func NewPipelineStatusUsecase(deps PipelineStatusDeps, logger *log.Logger) *PipelineStatus {
	if logger == nil {
		logger = log.Default()
	}
	if deps.StallAfter <= 0 {
		deps.StallAfter = 30 * time.Minute
	}
	return &PipelineStatus{deps: deps, log: logger, now: time.Now}
}

// GetStatus gathers every metric concurrently. A failing source is logged
// and reported as zero or unhealthy; the call itself never fails.
func (u *PipelineStatus) GetStatus(ctx context.Context) (domain.PipelineStatus, error) {
	now := u.now().UTC()
	out := domain.PipelineStatus{
		JobsByStatus:    map[string]int{},
		StallAfter:      u.deps.StallAfter.String(),
		ActorConfigured: u.deps.ActorConfigured,
		ServerTime:      now,
	}
	for _, s := range []job.Status{job.StatusPending, job.StatusProcessing, job.StatusCompleted, job.StatusFailed} {
		out.JobsByStatus[string(s)] = 0
	}

	var (
		byStatus map[job.Status]int
		stalled  int
		recipes  int
		dbOK     bool
		cacheOK  bool
	)

	wg := sync.WaitGroup{}

	if u.deps.Jobs != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			var err error
			byStatus, err = u.deps.Jobs.CountByStatus(ctx)
			if err != nil {
				u.log.Printf("pipeline_status step=jobs_by_status status=error err=%v", err)
			}
		}()
		go func() {
			defer wg.Done()
			var err error
			stalled, err = u.deps.Jobs.CountStalled(ctx, now.Add(-u.deps.StallAfter))
			if err != nil {
				u.log.Printf("pipeline_status step=stalled status=error err=%v", err)
			}
		}()
	}

	if u.deps.Recipes != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			recipes, err = u.deps.Recipes.Count(ctx)
			if err != nil {
				u.log.Printf("pipeline_status step=recipes status=error err=%v", err)
			}
		}()
	}

	if u.deps.DB != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := u.deps.DB.Ping(ctx)
			dbOK = err == nil
			if err != nil {
				u.log.Printf("pipeline_status step=db_ping status=error err=%v", err)
			}
		}()
	}

	if u.deps.Cache != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cacheOK = u.deps.Cache.Ping(ctx) == nil
		}()
	}

	wg.Wait()

	for s, n := range byStatus {
		out.JobsByStatus[string(s)] = n
		out.TotalJobs += n
	}
	out.StalledJobs = stalled
	out.RecipesFromJobs = recipes
	out.DatabaseHealthy = dbOK
	out.RedisHealthy = cacheOK
	if u.deps.Clients != nil {
		out.WebsocketClients = u.deps.Clients.ClientCount()
	}

	return out, nil
}
