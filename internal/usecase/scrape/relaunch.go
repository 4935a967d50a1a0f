package scrape

import (
	"context"
	"fmt"
	"time"

	"recipe-sync/internal/domain/job"
	"recipe-sync/internal/infrastructure/cache"
)

const launchLockTTL = 2 * time.Minute

// Relaunch retries the actor launch for a job that Submit left pending.
// It only runs when an operator asks for it; nothing retries on its own.
// Ownership is checked the same way as in Resolve.
func (o *Orchestrator) Relaunch(ctx context.Context, jobID, userID string) (job.Status, error) {
	j, err := o.ownedJob(ctx, jobID, userID)
	if err != nil {
		return "", err
	}
	if j.Status != job.StatusPending || j.RunID() != "" {
		return j.Status, ErrNotPending
	}

	if o.cache != nil {
		ok, release, err := o.cache.TryLock(ctx, cache.LaunchLockKey(j.ID.String()), launchLockTTL)
		if err != nil {
			o.logger.Printf("scrape_job step=relaunch status=lock_error job_id=%s err=%v", j.ID, err)
		}
		if !ok {
			o.logger.Printf("scrape_job step=relaunch status=busy job_id=%s", j.ID)
			return job.StatusPending, nil
		}
		defer release()
	}

	updated, err := o.startRun(ctx, j)
	if err != nil {
		return job.StatusPending, fmt.Errorf("%w: %v", ErrActorUnavailable, err)
	}
	o.logger.Printf("scrape_job step=relaunch status=ok job_id=%s run_id=%s", j.ID, updated.RunID())
	return updated.Status, nil
}
