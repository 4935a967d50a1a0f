package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recipe-sync/internal/database"
	"recipe-sync/internal/database/postgres"
	"recipe-sync/internal/domain/job"
	"recipe-sync/internal/domain/platform"

	"github.com/google/uuid"
)

const scrapingJobColumns = `id, user_id, url, platform, status, result, error_message, created_at, updated_at`

type PostgresScrapingJobRepository struct {
	db database.DB
}

func NewPostgresScrapingJobRepository(db database.DB) *PostgresScrapingJobRepository {
	return &PostgresScrapingJobRepository{db: db}
}

var _ job.Repository = (*PostgresScrapingJobRepository)(nil)

func (r *PostgresScrapingJobRepository) Create(ctx context.Context, url string, p platform.Platform, userID uuid.UUID) (job.ScrapingJob, error) {
	if r == nil || r.db == nil {
		return job.ScrapingJob{}, database.ErrNilDB
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO scraping_jobs (user_id, url, platform, status, result)
		 VALUES ($1, $2, $3, $4, '{}'::jsonb)
		 RETURNING `+scrapingJobColumns,
		userID, url, string(p), string(job.StatusPending),
	)
	j, err := scanScrapingJob(row)
	if err != nil {
		return job.ScrapingJob{}, fmt.Errorf("insert scraping job: %w", err)
	}
	return j, nil
}

func (r *PostgresScrapingJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.ScrapingJob, error) {
	if r == nil || r.db == nil {
		return job.ScrapingJob{}, database.ErrNilDB
	}

	row := r.db.QueryRow(ctx, `SELECT `+scrapingJobColumns+` FROM scraping_jobs WHERE id = $1`, id)
	j, err := scanScrapingJob(row)
	if err != nil {
		if postgres.IsNoRows(err) {
			return job.ScrapingJob{}, job.ErrNotFound
		}
		return job.ScrapingJob{}, fmt.Errorf("get scraping job: %w", err)
	}
	return j, nil
}

func (r *PostgresScrapingJobRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]job.ScrapingJob, error) {
	if r == nil || r.db == nil {
		return nil, database.ErrNilDB
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+scrapingJobColumns+`
		 FROM scraping_jobs
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list scraping jobs: %w", err)
	}
	defer rows.Close()

	out := make([]job.ScrapingJob, 0)
	for rows.Next() {
		j, err := scanScrapingJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scraping job: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scraping jobs: %w", err)
	}
	return out, nil
}

// Update applies u under a row lock. Result keys are merged into the stored
// object. A job already in a terminal status is never modified.
func (r *PostgresScrapingJobRepository) Update(ctx context.Context, id uuid.UUID, u job.Update) (job.ScrapingJob, error) {
	if r == nil || r.db == nil {
		return job.ScrapingJob{}, database.ErrNilDB
	}

	patch := []byte("{}")
	if len(u.Result) > 0 {
		b, err := json.Marshal(u.Result)
		if err != nil {
			return job.ScrapingJob{}, fmt.Errorf("encode result patch: %w", err)
		}
		patch = b
	}

	var out job.ScrapingJob
	err := database.InTx(ctx, r.db, func(tx database.Tx) error {
		var raw string
		row := tx.QueryRow(ctx, `SELECT status FROM scraping_jobs WHERE id = $1 FOR UPDATE`, id)
		if err := row.Scan(&raw); err != nil {
			if postgres.IsNoRows(err) {
				return job.ErrNotFound
			}
			return err
		}
		current := job.Status(raw)

		if current.Terminal() {
			return fmt.Errorf("%w: job %s is %s", job.ErrInvalidTransition, id, current)
		}

		next := current
		if u.Status != nil {
			if !current.CanTransition(*u.Status) {
				return fmt.Errorf("%w: %s -> %s", job.ErrInvalidTransition, current, *u.Status)
			}
			next = *u.Status
		}

		row = tx.QueryRow(ctx,
			`UPDATE scraping_jobs
			 SET status = $2,
			     result = COALESCE(result, '{}'::jsonb) || $3::jsonb,
			     error_message = COALESCE($4::text, error_message),
			     updated_at = now()
			 WHERE id = $1
			 RETURNING `+scrapingJobColumns,
			id, string(next), string(patch), u.ErrorMessage,
		)
		j, err := scanScrapingJob(row)
		if err != nil {
			return err
		}
		out = j
		return nil
	})
	if err != nil {
		if errors.Is(err, job.ErrNotFound) || errors.Is(err, job.ErrInvalidTransition) {
			return job.ScrapingJob{}, err
		}
		return job.ScrapingJob{}, fmt.Errorf("update scraping job: %w", err)
	}
	return out, nil
}

// CountByStatus returns the number of jobs in each status.
func (r *PostgresScrapingJobRepository) CountByStatus(ctx context.Context) (map[job.Status]int, error) {
	if r == nil || r.db == nil {
		return nil, database.ErrNilDB
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(1) FROM scraping_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count scraping jobs: %w", err)
	}
	defer rows.Close()

	out := map[job.Status]int{}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[job.Status(s)] = n
	}
	return out, rows.Err()
}

// CountStalled counts non-terminal jobs not touched since before cutoff.
func (r *PostgresScrapingJobRepository) CountStalled(ctx context.Context, cutoff time.Time) (int, error) {
	if r == nil || r.db == nil {
		return 0, database.ErrNilDB
	}

	var n int
	row := r.db.QueryRow(ctx,
		`SELECT COALESCE(COUNT(1), 0)
		 FROM scraping_jobs
		 WHERE status IN ('pending', 'processing')
		   AND updated_at < $1`,
		cutoff,
	)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count stalled jobs: %w", err)
	}
	return n, nil
}

func scanScrapingJob(row database.Row) (job.ScrapingJob, error) {
	var (
		j         job.ScrapingJob
		p, status string
		result    []byte
	)
	if err := row.Scan(&j.ID, &j.UserID, &j.URL, &p, &status, &result, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return job.ScrapingJob{}, err
	}
	j.Platform = platform.Platform(p)
	j.Status = job.Status(status)

	j.Result = map[string]any{}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &j.Result); err != nil {
			return job.ScrapingJob{}, fmt.Errorf("decode result: %w", err)
		}
		if j.Result == nil {
			j.Result = map[string]any{}
		}
	}
	return j, nil
}
