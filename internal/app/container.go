package app

import (
	"context"
	"errors"
	"log"
	"time"

	"recipe-sync/internal/config"
	dbpostgres "recipe-sync/internal/database/postgres"
	"recipe-sync/internal/infrastructure/cache"
	"recipe-sync/internal/infrastructure/scraper"
	"recipe-sync/internal/pkg/jwt"
	"recipe-sync/internal/repository"
	"recipe-sync/internal/usecase"
	"recipe-sync/internal/usecase/scrape"
	"recipe-sync/internal/ws"
)

// Container owns every long-lived dependency of the server and the CLIs.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    *dbpostgres.Pool
	Cache *cache.Redis

	Jobs    *repository.PostgresScrapingJobRepository
	Recipes *repository.PostgresRecipeRepository
	Actor   scraper.ActorClient

	Hub      *ws.Hub
	Notifier *ws.Notifier

	Scrape   *scrape.Orchestrator
	Pipeline *usecase.PipelineStatus

	// JWT is nil when no secret is configured.
	JWT jwt.Service
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	timeout := cfg.Database.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, DB: db}

	c.Cache = cache.NewRedis(cfg.Redis, logger)
	c.Jobs = repository.NewPostgresScrapingJobRepository(db)
	c.Recipes = repository.NewPostgresRecipeRepository(db)

	if !cfg.Apify.Enabled() {
		logger.Printf("actor status=unconfigured reason=missing_credentials")
	}
	c.Actor = scraper.NewActorClient(cfg.Apify, nil, logger)

	c.Hub = ws.NewHub(logger)
	c.Notifier = ws.NewNotifier(c.Hub)

	c.Scrape = scrape.NewOrchestrator(c.Jobs, c.Recipes, c.Actor, c.Cache, c.Notifier, logger)
	c.Pipeline = usecase.NewPipelineStatusUsecase(usecase.PipelineStatusDeps{
		Jobs:            c.Jobs,
		Recipes:         c.Recipes,
		DB:              db,
		Cache:           c.Cache,
		Clients:         c.Hub,
		StallAfter:      cfg.Pipeline.StallAfter,
		ActorConfigured: cfg.Apify.Enabled(),
	}, logger)

	if cfg.JWT.Secret != "" {
		c.JWT = jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	}

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
