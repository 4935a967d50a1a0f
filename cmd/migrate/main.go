package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"recipe-sync/internal/config"
	"recipe-sync/internal/database"
	"recipe-sync/internal/database/migration"
	dbpostgres "recipe-sync/internal/database/postgres"
	"recipe-sync/internal/database/seeder"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	dir := flag.String("dir", "", "migrations directory (defaults to DB_MIGRATIONS_DIR)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	seedUser := flag.String("seed-user", "", "seed demo recipes for this user id")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env status=skip reason=%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *dir == "" {
		*dir = cfg.Database.MigrationsDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer pool.Close()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	applied, err := migration.Runner{Dir: *dir, Logger: logger}.Run(ctx, pool.SQLDB())
	if err != nil {
		log.Fatalf("migrate failed: %v", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema check failed: %v", err)
	}

	logger.Printf("migrate status=done applied=%d", len(applied))

	if *seedUser == "" {
		return
	}
	userID, err := uuid.Parse(*seedUser)
	if err != nil {
		log.Fatalf("invalid -seed-user: %v", err)
	}
	if err := (seeder.Runner{Seeders: seeder.Defaults(userID)}).Run(ctx, pool); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	logger.Printf("seed status=done user_id=%s", userID)
}
