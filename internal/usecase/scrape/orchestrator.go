package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"recipe-sync/internal/domain/job"
	"recipe-sync/internal/domain/platform"
	"recipe-sync/internal/domain/recipe"
	"recipe-sync/internal/infrastructure/cache"
	"recipe-sync/internal/infrastructure/scraper"

	"github.com/google/uuid"
)

const resolveLockTTL = 30 * time.Second

// Stall reasons reported when a succeeded run cannot be turned into a
// recipe. The job stays processing and a later poll retries.
const (
	StallDatasetUnavailable = "dataset_unavailable"
	StallNoItems            = "no_items"
	StallInsertFailed       = "insert_failed"
	StallUpdateFailed       = "update_failed"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, func(), error)
}

// EventPublisher is told about every job mutation and every stall.
type EventPublisher interface {
	JobUpdated(ctx context.Context, j job.ScrapingJob)
	JobStalled(ctx context.Context, j job.ScrapingJob, reason string)
}

// Usecase is the surface the HTTP layer and the CLI drive.
type Usecase interface {
	Submit(ctx context.Context, in SubmitInput) (uuid.UUID, error)
	Resolve(ctx context.Context, jobID, userID string) (job.Status, error)
	Relaunch(ctx context.Context, jobID, userID string) (job.Status, error)
	ListJobs(ctx context.Context, userID string) ([]job.ScrapingJob, error)
	ListRecipes(ctx context.Context, userID string) ([]recipe.Recipe, error)
}

var _ Usecase = (*Orchestrator)(nil)

type SubmitInput struct {
	URL      string
	Platform string
	UserID   string
}

type Orchestrator struct {
	jobs    job.Repository
	recipes recipe.Repository
	actor   scraper.ActorClient
	cache   Cache
	events  EventPublisher
	logger  *log.Logger
}

func NewOrchestrator(
	jobs job.Repository,
	recipes recipe.Repository,
	actor scraper.ActorClient,
	c Cache,
	events EventPublisher,
	logger *log.Logger,
) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		jobs:    jobs,
		recipes: recipes,
		actor:   actor,
		cache:   c,
		events:  events,
		logger:  logger,
	}
}

// Submit validates the request, records a pending job and tries to launch
// the actor run. A launch failure leaves the job pending and is not an
// error for the caller.
func (o *Orchestrator) Submit(ctx context.Context, in SubmitInput) (uuid.UUID, error) {
	rawURL := strings.TrimSpace(in.URL)
	if !platform.IsValidURL(rawURL) {
		return uuid.Nil, ErrInvalidInput
	}

	p, ok := platform.Classify(rawURL)
	if !ok {
		return uuid.Nil, ErrUnsupportedPlatform
	}
	if hint := strings.TrimSpace(in.Platform); hint != "" {
		hinted, ok := platform.Parse(hint)
		if !ok || hinted != p {
			return uuid.Nil, fmt.Errorf("%w: url is %s, platform says %s", ErrUnsupportedPlatform, p, hint)
		}
	}

	userID, err := parseUserID(in.UserID)
	if err != nil {
		return uuid.Nil, err
	}

	j, err := o.jobs.Create(ctx, rawURL, p, userID)
	if err != nil {
		o.logger.Printf("scrape_job step=submit status=error user_id=%s err=%v", userID, err)
		return uuid.Nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	o.invalidate(ctx, j.UserID, false)

	if updated, err := o.startRun(ctx, j); err == nil {
		o.logger.Printf("scrape_job step=submit status=ok job_id=%s platform=%s run_id=%s", j.ID, p, updated.RunID())
	}
	return j.ID, nil
}

// startRun launches the actor for a pending job and records the run id.
// Any failure leaves the job pending.
func (o *Orchestrator) startRun(ctx context.Context, j job.ScrapingJob) (job.ScrapingJob, error) {
	runID, err := o.launch(ctx, j.URL, j.Platform)
	if err != nil {
		o.logger.Printf("scrape_job step=launch status=unavailable job_id=%s err=%v", j.ID, err)
		o.publish(ctx, j)
		return j, err
	}

	processing := job.StatusProcessing
	updated, err := o.jobs.Update(ctx, j.ID, job.Update{
		Status: &processing,
		Result: map[string]any{job.ResultRunID: runID},
	})
	if err != nil {
		o.logger.Printf("scrape_job step=launch status=update_failed job_id=%s run_id=%s err=%v", j.ID, runID, err)
		return j, err
	}
	o.invalidate(ctx, j.UserID, false)
	o.publish(ctx, updated)

	o.logger.Printf("scrape_job step=launch status=ok job_id=%s platform=%s run_id=%s", j.ID, j.Platform, runID)
	return updated, nil
}

func (o *Orchestrator) launch(ctx context.Context, rawURL string, p platform.Platform) (string, error) {
	if o.actor == nil {
		return "", fmt.Errorf("%w: no actor client", scraper.ErrUnavailable)
	}
	return o.actor.Launch(ctx, rawURL, p)
}

// Resolve polls the actor for the job's run and advances the job. Terminal
// jobs are answered from the store without calling the actor. A non-empty
// userID must own the job; anyone else gets ErrJobNotFound.
func (o *Orchestrator) Resolve(ctx context.Context, jobID, userID string) (job.Status, error) {
	j, err := o.ownedJob(ctx, jobID, userID)
	if err != nil {
		if errors.Is(err, ErrPersistence) {
			o.logger.Printf("scrape_job step=resolve status=error job_id=%s err=%v", strings.TrimSpace(jobID), err)
		}
		return "", err
	}

	if j.Status.Terminal() {
		return j.Status, nil
	}

	runID := j.RunID()
	if runID == "" {
		return "", ErrNoRunID
	}

	if o.actor == nil {
		return "", fmt.Errorf("%w: no actor client", ErrStatusFetch)
	}
	run, err := o.actor.RunStatus(ctx, runID)
	if err != nil {
		o.logger.Printf("scrape_job step=resolve status=fetch_failed job_id=%s run_id=%s err=%v", j.ID, runID, err)
		return "", fmt.Errorf("%w: %v", ErrStatusFetch, err)
	}

	switch {
	case run.Status == scraper.RunSucceeded && run.DatasetID != "":
		return o.complete(ctx, j, run.DatasetID), nil

	case run.Status.Failed():
		o.fail(ctx, j, run.Status)
		return job.StatusFailed, nil

	default:
		return job.StatusProcessing, nil
	}
}

// complete turns the first dataset item into a recipe and marks the job
// completed, returning the status the job is left in. Only one poll per job
// runs this at a time; the unique scraping_job_id on recipes guards against
// a second insert regardless.
func (o *Orchestrator) complete(ctx context.Context, j job.ScrapingJob, datasetID string) job.Status {
	if o.cache != nil {
		ok, release, err := o.cache.TryLock(ctx, cache.ResolveLockKey(j.ID.String()), resolveLockTTL)
		if err != nil {
			o.logger.Printf("scrape_job step=resolve status=lock_error job_id=%s err=%v", j.ID, err)
		}
		if !ok {
			o.logger.Printf("scrape_job step=resolve status=busy job_id=%s", j.ID)
			return job.StatusProcessing
		}
		defer release()
	}

	items, err := o.actor.DatasetItems(ctx, datasetID)
	if err != nil {
		o.stall(ctx, j, StallDatasetUnavailable, err)
		return job.StatusProcessing
	}
	if len(items) == 0 {
		o.stall(ctx, j, StallNoItems, nil)
		return job.StatusProcessing
	}

	rec := recipe.Normalize(items[0], j)
	recipeID, err := o.recipes.Insert(ctx, rec)
	switch {
	case errors.Is(err, recipe.ErrExists):
		o.logger.Printf("scrape_job step=resolve status=recipe_exists job_id=%s", j.ID)
	case err != nil:
		o.stall(ctx, j, StallInsertFailed, err)
		return job.StatusProcessing
	}

	completed := job.StatusCompleted
	updated, err := o.jobs.Update(ctx, j.ID, job.Update{
		Status: &completed,
		Result: map[string]any{job.ResultDatasetID: datasetID, job.ResultRunStatus: string(scraper.RunSucceeded)},
	})
	if err != nil {
		if errors.Is(err, job.ErrInvalidTransition) {
			o.logger.Printf("scrape_job step=resolve status=already_terminal job_id=%s", j.ID)
			return job.StatusCompleted
		}
		o.stall(ctx, j, StallUpdateFailed, err)
		return job.StatusProcessing
	}

	o.invalidate(ctx, j.UserID, true)
	o.publish(ctx, updated)
	o.logger.Printf("scrape_job step=resolve status=completed job_id=%s recipe_id=%s dataset_id=%s", j.ID, recipeID, datasetID)
	return job.StatusCompleted
}

// ownedJob loads a job by its textual id. A malformed id, a missing job and
// a job owned by someone other than a non-empty userID all read as
// ErrJobNotFound.
func (o *Orchestrator) ownedJob(ctx context.Context, jobID, userID string) (job.ScrapingJob, error) {
	id, err := uuid.Parse(strings.TrimSpace(jobID))
	if err != nil {
		return job.ScrapingJob{}, ErrJobNotFound
	}

	j, err := o.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.ScrapingJob{}, ErrJobNotFound
		}
		return job.ScrapingJob{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if userID = strings.TrimSpace(userID); userID != "" {
		owner, err := uuid.Parse(userID)
		if err != nil || owner != j.UserID {
			return job.ScrapingJob{}, ErrJobNotFound
		}
	}
	return j, nil
}

func (o *Orchestrator) fail(ctx context.Context, j job.ScrapingJob, runStatus scraper.RunStatusTag) {
	failed := job.StatusFailed
	msg := "actor run ended with status " + string(runStatus)
	updated, err := o.jobs.Update(ctx, j.ID, job.Update{
		Status:       &failed,
		Result:       map[string]any{job.ResultRunStatus: string(runStatus)},
		ErrorMessage: &msg,
	})
	if err != nil {
		o.logger.Printf("scrape_job step=resolve status=fail_update_error job_id=%s run_status=%s err=%v", j.ID, runStatus, err)
		return
	}

	o.invalidate(ctx, j.UserID, false)
	o.publish(ctx, updated)
	o.logger.Printf("scrape_job step=resolve status=failed job_id=%s run_status=%s", j.ID, runStatus)
}

func (o *Orchestrator) stall(ctx context.Context, j job.ScrapingJob, reason string, err error) {
	if err != nil {
		o.logger.Printf("scrape_job step=resolve status=stalled reason=%s job_id=%s err=%v", reason, j.ID, err)
	} else {
		o.logger.Printf("scrape_job step=resolve status=stalled reason=%s job_id=%s", reason, j.ID)
	}
	if o.events != nil {
		o.events.JobStalled(ctx, j, reason)
	}
}

func (o *Orchestrator) publish(ctx context.Context, j job.ScrapingJob) {
	if o.events != nil {
		o.events.JobUpdated(ctx, j)
	}
}

// ListJobs returns the user's jobs newest first, served from the cache
// when possible.
func (o *Orchestrator) ListJobs(ctx context.Context, userID string) ([]job.ScrapingJob, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	key := cache.JobListKey(uid.String())
	if o.cache != nil {
		var cached []job.ScrapingJob
		if hit, err := o.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	jobs, err := o.jobs.ListByUser(ctx, uid)
	if err != nil {
		o.logger.Printf("scrape_job step=list status=error user_id=%s err=%v", uid, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if o.cache != nil {
		if err := o.cache.SetJSON(ctx, key, jobs, 0); err != nil {
			o.logger.Printf("scrape_job step=list status=cache_set_failed user_id=%s err=%v", uid, err)
		}
	}
	return jobs, nil
}

func (o *Orchestrator) ListRecipes(ctx context.Context, userID string) ([]recipe.Recipe, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	key := cache.RecipeListKey(uid.String())
	if o.cache != nil {
		var cached []recipe.Recipe
		if hit, err := o.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	recipes, err := o.recipes.ListByUser(ctx, uid)
	if err != nil {
		o.logger.Printf("recipe step=list status=error user_id=%s err=%v", uid, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if o.cache != nil {
		if err := o.cache.SetJSON(ctx, key, recipes, 0); err != nil {
			o.logger.Printf("recipe step=list status=cache_set_failed user_id=%s err=%v", uid, err)
		}
	}
	return recipes, nil
}

func (o *Orchestrator) invalidate(ctx context.Context, userID uuid.UUID, recipes bool) {
	if o.cache == nil {
		return
	}
	keys := []string{cache.JobListKey(userID.String())}
	if recipes {
		keys = append(keys, cache.RecipeListKey(userID.String()))
	}
	if err := o.cache.Delete(ctx, keys...); err != nil {
		o.logger.Printf("scrape_job step=cache_invalidate status=error user_id=%s err=%v", userID, err)
	}
}

func parseUserID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, ErrMissingUser
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a user id", ErrMissingUser, raw)
	}
	return id, nil
}
