package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
)

type columnRows struct {
	cols []string
	i    int
}

func (r *columnRows) Close()     {}
func (r *columnRows) Err() error { return nil }
func (r *columnRows) Next() bool {
	if r.i >= len(r.cols) {
		return false
	}
	r.i++
	return true
}
func (r *columnRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.cols[r.i-1]
	return nil
}

type columnsDB struct {
	tables map[string][]string
	err    error
}

func (d columnsDB) Ping(context.Context) error { return nil }
func (d columnsDB) Close() error               { return nil }
func (d columnsDB) Exec(context.Context, string, ...any) (int64, error) {
	return 0, errors.New("not implemented")
}
func (d columnsDB) Query(_ context.Context, _ string, args ...any) (Rows, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &columnRows{cols: d.tables[args[0].(string)]}, nil
}
func (d columnsDB) QueryRow(context.Context, string, ...any) Row { return nil }
func (d columnsDB) Begin(context.Context) (Tx, error)           { return nil, errors.New("not implemented") }
func (d columnsDB) SQLDB() *sql.DB                               { return nil }

func TestEnsureSchema(t *testing.T) {
	db := columnsDB{tables: map[string][]string{
		"scraping_jobs": RequiredColumns["scraping_jobs"],
		"recipes":       RequiredColumns["recipes"],
	}}
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestEnsureTableColumns_Missing(t *testing.T) {
	db := columnsDB{tables: map[string][]string{
		"scraping_jobs": {"id", "user_id", "url"},
	}}

	err := EnsureTableColumns(context.Background(), db, "scraping_jobs", "id", "status", "result")
	if err == nil {
		t.Fatalf("expected schema mismatch")
	}
	if !strings.Contains(err.Error(), "status, result") {
		t.Fatalf("unexpected message: %v", err)
	}

	err = EnsureTableColumns(context.Background(), db, "recipes", "id")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing table error, got %v", err)
	}
}

func TestEnsureTableColumns_Guards(t *testing.T) {
	if err := EnsureTableColumns(context.Background(), nil, "recipes"); !errors.Is(err, ErrNilDB) {
		t.Fatalf("expected ErrNilDB, got %v", err)
	}
	if err := EnsureTableColumns(context.Background(), columnsDB{}, " "); err == nil {
		t.Fatalf("expected empty table error")
	}
	queryErr := errors.New("connection refused")
	err := EnsureTableColumns(context.Background(), columnsDB{err: queryErr}, "recipes", "id")
	if !errors.Is(err, queryErr) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}
