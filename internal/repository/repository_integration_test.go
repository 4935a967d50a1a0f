package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"recipe-sync/internal/config"
	"recipe-sync/internal/database"
	"recipe-sync/internal/database/migration"
	dbpostgres "recipe-sync/internal/database/postgres"
	"recipe-sync/internal/domain/job"
	"recipe-sync/internal/domain/platform"
	"recipe-sync/internal/domain/recipe"

	"github.com/google/uuid"
)

func envOr(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		DBHost:     envOr("RECIPESYNC_TEST_DB_HOST"),
		DBPort:     envOr("RECIPESYNC_TEST_DB_PORT"),
		DBName:     envOr("RECIPESYNC_TEST_DB_NAME"),
		DBUser:     envOr("RECIPESYNC_TEST_DB_USER"),
		DBPassword: envOr("RECIPESYNC_TEST_DB_PASSWORD"),
		DBSSLMode:  envOr("RECIPESYNC_TEST_DB_SSL_MODE"),
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" || cfg.DBUser == "" {
		t.Skip("missing test DB env vars: set RECIPESYNC_TEST_DB_HOST/PORT/NAME/USER/PASSWORD")
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}

	db, err := dbpostgres.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "migrations")
	if _, err := (migration.Runner{Dir: dir}).Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func cleanupUser(t *testing.T, db database.DB, userID uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = db.Exec(ctx, `DELETE FROM recipes WHERE user_id = $1`, userID)
		_, _ = db.Exec(ctx, `DELETE FROM scraping_jobs WHERE user_id = $1`, userID)
	})
}

func TestIntegration_ScrapingJobLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	repo := NewPostgresScrapingJobRepository(db)
	userID := uuid.New()
	cleanupUser(t, db, userID)

	j, err := repo.Create(ctx, "https://youtu.be/abc", platform.YouTube, userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if j.Status != job.StatusPending || len(j.Result) != 0 {
		t.Fatalf("unexpected new job: %+v", j)
	}

	processing := job.StatusProcessing
	j, err = repo.Update(ctx, j.ID, job.Update{Status: &processing, Result: map[string]any{job.ResultRunID: "run-1"}})
	if err != nil {
		t.Fatalf("update processing: %v", err)
	}
	if j.RunID() != "run-1" {
		t.Fatalf("expected run id stored, got %+v", j.Result)
	}

	completed := job.StatusCompleted
	j, err = repo.Update(ctx, j.ID, job.Update{Status: &completed, Result: map[string]any{job.ResultDatasetID: "ds-1"}})
	if err != nil {
		t.Fatalf("update completed: %v", err)
	}
	if j.RunID() != "run-1" || j.DatasetID() != "ds-1" {
		t.Fatalf("merge lost keys: %+v", j.Result)
	}

	failed := job.StatusFailed
	if _, err := repo.Update(ctx, j.ID, job.Update{Status: &failed}); !errors.Is(err, job.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := repo.GetByID(ctx, j.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != job.StatusCompleted {
		t.Fatalf("terminal job moved to %s", got.Status)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, job.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegration_ListByUserNewestFirst(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	repo := NewPostgresScrapingJobRepository(db)
	userID := uuid.New()
	cleanupUser(t, db, userID)

	first, err := repo.Create(ctx, "https://www.instagram.com/p/1", platform.Instagram, userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.Exec(ctx, `UPDATE scraping_jobs SET created_at = now() - interval '1 hour' WHERE id = $1`, first.ID); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	second, err := repo.Create(ctx, "https://www.tiktok.com/@c/video/2", platform.TikTok, userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	jobs, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != second.ID || jobs[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", jobs)
	}
}

func TestIntegration_RecipeInsertIsUniquePerJob(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	jobs := NewPostgresScrapingJobRepository(db)
	recipes := NewPostgresRecipeRepository(db)
	userID := uuid.New()
	cleanupUser(t, db, userID)

	j, err := jobs.Create(ctx, "https://youtu.be/xyz", platform.YouTube, userID)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	rec := recipe.Normalize(map[string]any{"title": "Pho", "tags": []any{"soup"}, "servings": float64(4)}, j)
	id, err := recipes.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == uuid.Nil {
		t.Fatalf("expected recipe id")
	}

	if _, err := recipes.Insert(ctx, rec); !errors.Is(err, recipe.ErrExists) {
		t.Fatalf("expected ErrExists on second insert, got %v", err)
	}

	list, err := recipes.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(list))
	}
	got := list[0]
	if got.Title != "Pho" || got.Difficulty != recipe.DifficultyMedium || *got.Servings != 4 {
		t.Fatalf("unexpected recipe: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "soup" || len(got.Ingredients) != 0 {
		t.Fatalf("unexpected sequences: %+v", got)
	}
}
