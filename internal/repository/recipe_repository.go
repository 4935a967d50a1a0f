package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"recipe-sync/internal/database"
	"recipe-sync/internal/database/postgres"
	"recipe-sync/internal/domain/platform"
	"recipe-sync/internal/domain/recipe"

	"github.com/google/uuid"
)

const recipeScrapingJobConstraint = "recipes_scraping_job_id_key"

const recipeColumns = `id, user_id, title, description, source_url, source_platform, thumbnail_url,
	ingredients, instructions, servings, prep_time, cook_time, difficulty, tags, is_favorite,
	scraping_job_id, created_at, updated_at`

type PostgresRecipeRepository struct {
	db database.DB
}

func NewPostgresRecipeRepository(db database.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{db: db}
}

var _ recipe.Repository = (*PostgresRecipeRepository)(nil)

// Insert stores rec and returns its id. A second recipe for the same
// scraping job yields recipe.ErrExists.
func (r *PostgresRecipeRepository) Insert(ctx context.Context, rec recipe.Recipe) (uuid.UUID, error) {
	if r == nil || r.db == nil {
		return uuid.Nil, database.ErrNilDB
	}

	ingredients, err := encodeSequence(rec.Ingredients)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode ingredients: %w", err)
	}
	instructions, err := encodeSequence(rec.Instructions)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode instructions: %w", err)
	}
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	difficulty := rec.Difficulty
	if difficulty == "" {
		difficulty = recipe.DifficultyMedium
	}
	src := rec.SourcePlatform
	if !src.ValidSource() {
		src = platform.Manual
	}

	var id uuid.UUID
	row := r.db.QueryRow(ctx,
		`INSERT INTO recipes (
			user_id, title, description, source_url, source_platform, thumbnail_url,
			ingredients, instructions, servings, prep_time, cook_time, difficulty, tags,
			is_favorite, scraping_job_id
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id`,
		rec.UserID, rec.Title, rec.Description, rec.SourceURL, string(src), rec.ThumbnailURL,
		ingredients, instructions, rec.Servings, rec.PrepTime, rec.CookTime, string(difficulty), tags,
		rec.IsFavorite, rec.ScrapingJobID,
	)
	if err := row.Scan(&id); err != nil {
		if postgres.IsUniqueViolation(err, recipeScrapingJobConstraint) {
			return uuid.Nil, recipe.ErrExists
		}
		return uuid.Nil, fmt.Errorf("insert recipe: %w", err)
	}
	return id, nil
}

func (r *PostgresRecipeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]recipe.Recipe, error) {
	if r == nil || r.db == nil {
		return nil, database.ErrNilDB
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+recipeColumns+`
		 FROM recipes
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	out := make([]recipe.Recipe, 0)
	for rows.Next() {
		var (
			rec                       recipe.Recipe
			src, difficulty           string
			ingredients, instructions []byte
		)
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.SourceURL, &src, &rec.ThumbnailURL,
			&ingredients, &instructions, &rec.Servings, &rec.PrepTime, &rec.CookTime, &difficulty, &rec.Tags,
			&rec.IsFavorite, &rec.ScrapingJobID, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		rec.SourcePlatform = platform.Platform(src)
		rec.Difficulty = recipe.Difficulty(difficulty)
		if rec.Ingredients, err = decodeSequence(ingredients); err != nil {
			return nil, fmt.Errorf("decode ingredients: %w", err)
		}
		if rec.Instructions, err = decodeSequence(instructions); err != nil {
			return nil, fmt.Errorf("decode instructions: %w", err)
		}
		if rec.Tags == nil {
			rec.Tags = []string{}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return out, nil
}

// Count returns how many recipes were produced by scraping jobs.
func (r *PostgresRecipeRepository) Count(ctx context.Context) (int, error) {
	if r == nil || r.db == nil {
		return 0, database.ErrNilDB
	}
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(COUNT(1), 0) FROM recipes WHERE scraping_job_id IS NOT NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}

func encodeSequence(v []any) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSequence(b []byte) ([]any, error) {
	out := []any{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}
