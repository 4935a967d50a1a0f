package scrape

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"recipe-sync/internal/domain/job"
	"recipe-sync/internal/domain/platform"
	"recipe-sync/internal/domain/recipe"
	"recipe-sync/internal/infrastructure/scraper"

	"github.com/google/uuid"
)

type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]job.ScrapingJob
	createErr error
	updateErr error
	listErr   error
	getErr    error
	updates   int
	clock     time.Time
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uuid.UUID]job.ScrapingJob{}, clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeJobRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *fakeJobRepo) Create(_ context.Context, url string, p platform.Platform, userID uuid.UUID) (job.ScrapingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return job.ScrapingJob{}, r.createErr
	}
	now := r.tick()
	j := job.ScrapingJob{
		ID:        uuid.New(),
		UserID:    userID,
		URL:       url,
		Platform:  p,
		Status:    job.StatusPending,
		Result:    map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.jobs[j.ID] = j
	return j, nil
}

func (r *fakeJobRepo) put(j job.ScrapingJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.Result == nil {
		j.Result = map[string]any{}
	}
	r.jobs[j.ID] = j
}

func (r *fakeJobRepo) get(id uuid.UUID) job.ScrapingJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id]
}

func (r *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (job.ScrapingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return job.ScrapingJob{}, r.getErr
	}
	j, ok := r.jobs[id]
	if !ok {
		return job.ScrapingJob{}, job.ErrNotFound
	}
	return j, nil
}

func (r *fakeJobRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]job.ScrapingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []job.ScrapingJob{}
	for _, j := range r.jobs {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (r *fakeJobRepo) Update(_ context.Context, id uuid.UUID, u job.Update) (job.ScrapingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return job.ScrapingJob{}, r.updateErr
	}
	j, ok := r.jobs[id]
	if !ok {
		return job.ScrapingJob{}, job.ErrNotFound
	}
	if j.Status.Terminal() {
		return job.ScrapingJob{}, job.ErrInvalidTransition
	}
	if u.Status != nil {
		if !j.Status.CanTransition(*u.Status) {
			return job.ScrapingJob{}, job.ErrInvalidTransition
		}
		j.Status = *u.Status
	}
	merged := map[string]any{}
	for k, v := range j.Result {
		merged[k] = v
	}
	for k, v := range u.Result {
		merged[k] = v
	}
	j.Result = merged
	if u.ErrorMessage != nil {
		msg := *u.ErrorMessage
		j.ErrorMessage = &msg
	}
	j.UpdatedAt = r.tick()
	r.jobs[id] = j
	r.updates++
	return j, nil
}

type fakeRecipeRepo struct {
	mu       sync.Mutex
	inserted []recipe.Recipe
	byJob    map[uuid.UUID]bool
	err      error
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{byJob: map[uuid.UUID]bool{}}
}

func (r *fakeRecipeRepo) Insert(_ context.Context, rec recipe.Recipe) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return uuid.Nil, r.err
	}
	if rec.ScrapingJobID != nil {
		if r.byJob[*rec.ScrapingJobID] {
			return uuid.Nil, recipe.ErrExists
		}
		r.byJob[*rec.ScrapingJobID] = true
	}
	rec.ID = uuid.New()
	r.inserted = append(r.inserted, rec)
	return rec.ID, nil
}

func (r *fakeRecipeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]recipe.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []recipe.Recipe{}
	for _, rec := range r.inserted {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeActor struct {
	mu          sync.Mutex
	runID       string
	launchErr   error
	status      scraper.RunStatus
	statusErr   error
	items       []map[string]any
	itemsErr    error
	launches    int
	statusCalls int
	itemCalls   int
}

func (a *fakeActor) Launch(context.Context, string, platform.Platform) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.launches++
	if a.launchErr != nil {
		return "", a.launchErr
	}
	return a.runID, nil
}

func (a *fakeActor) RunStatus(context.Context, string) (scraper.RunStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statusCalls++
	return a.status, a.statusErr
}

func (a *fakeActor) DatasetItems(context.Context, string) ([]map[string]any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.itemCalls++
	return a.items, a.itemsErr
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string]any
	deleted []string
	locked  map[string]bool
	lockErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]any{}, locked: map[string]bool{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch dst := out.(type) {
	case *[]job.ScrapingJob:
		*dst = v.([]job.ScrapingJob)
	case *[]recipe.Recipe:
		*dst = v.([]recipe.Recipe)
	default:
		return false, fmt.Errorf("unsupported type %T", out)
	}
	return true, nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *fakeCache) TryLock(_ context.Context, key string, _ time.Duration) (bool, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lockErr != nil {
		return true, func() {}, c.lockErr
	}
	if c.locked[key] {
		return false, func() {}, nil
	}
	c.locked[key] = true
	return true, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.locked, key)
	}, nil
}

type stallEvent struct {
	jobID  uuid.UUID
	reason string
}

type fakeEvents struct {
	mu      sync.Mutex
	updated []job.ScrapingJob
	stalled []stallEvent
}

func (e *fakeEvents) JobUpdated(_ context.Context, j job.ScrapingJob) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updated = append(e.updated, j)
}

func (e *fakeEvents) JobStalled(_ context.Context, j job.ScrapingJob, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stalled = append(e.stalled, stallEvent{jobID: j.ID, reason: reason})
}

var errDB = errors.New("connection reset by peer")
