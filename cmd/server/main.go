package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-sync/internal/app"
	"recipe-sync/internal/config"
	"recipe-sync/internal/database"
	"recipe-sync/internal/database/migration"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env status=skip reason=%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	bootstrap, cleanup, err := app.Bootstrap(cfg, logger)
	if err != nil {
		log.Fatalf("failed to bootstrap app: %v", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	c := bootstrap.Container

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if cfg.Database.AutoMigrate {
		runner := migration.Runner{Dir: cfg.Database.MigrationsDir, Logger: logger}
		if _, err := runner.Run(startupCtx, c.DB.SQLDB()); err != nil {
			cancelStartup()
			log.Fatalf("failed to run migrations: %v", err)
		}
	}
	if err := database.EnsureSchema(startupCtx, c.DB); err != nil {
		cancelStartup()
		log.Fatalf("schema check failed: %v", err)
	}
	cancelStartup()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatalf("invalid HTTP port: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Hub.Run(gctx)
	})

	g.Go(func() error {
		logger.Printf("server status=listening addr=%s", addr)
		return bootstrap.Fiber.Listen(addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return bootstrap.Fiber.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server error: %v", err)
	}
	logger.Printf("server status=stopped")
}
