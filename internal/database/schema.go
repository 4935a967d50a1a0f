package database

import (
	"context"
	"fmt"
	"strings"
)

// RequiredColumns lists the columns the scraping pipeline reads and writes.
var RequiredColumns = map[string][]string{
	"scraping_jobs": {"id", "user_id", "url", "platform", "status", "result", "error_message", "created_at", "updated_at"},
	"recipes": {
		"id", "user_id", "title", "description", "source_url", "source_platform", "thumbnail_url",
		"ingredients", "instructions", "servings", "prep_time", "cook_time", "difficulty", "tags",
		"is_favorite", "scraping_job_id", "created_at", "updated_at",
	},
}

// EnsureSchema fails fast when a table the pipeline depends on is missing
// a column, so a stale database is caught at startup instead of mid-poll.
func EnsureSchema(ctx context.Context, db DB) error {
	for _, table := range []string{"scraping_jobs", "recipes"} {
		if err := EnsureTableColumns(ctx, db, table, RequiredColumns[table]...); err != nil {
			return err
		}
	}
	return nil
}

func EnsureTableColumns(ctx context.Context, db DB, table string, columns ...string) error {
	if db == nil {
		return ErrNilDB
	}
	if strings.TrimSpace(table) == "" {
		return fmt.Errorf("empty table")
	}
	for _, col := range columns {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("empty column")
		}
	}

	rows, err := db.Query(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`,
		table,
	)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(existing) == 0 {
		return fmt.Errorf("schema mismatch: table %s not found", table)
	}

	var missing []string
	for _, col := range columns {
		if _, ok := existing[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema mismatch: %s missing columns %s", table, strings.Join(missing, ", "))
	}
	return nil
}
