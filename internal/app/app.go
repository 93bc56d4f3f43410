package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
	"autoscraper/internal/orchestrator"
	"autoscraper/internal/repository"
	"autoscraper/internal/services/fetch"
	"autoscraper/internal/services/llm"
	"autoscraper/internal/services/revalidate"
	"autoscraper/internal/services/runner"
	"autoscraper/internal/services/sandbox"
	"autoscraper/internal/services/specialists"
	"autoscraper/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Storage    interfaces.BlobStorage
	Repository interfaces.ScraperRepository

	LLMFactory *llm.ProviderFactory
	Fetcher    interfaces.PageFetcher
	Sandbox    interfaces.Sandbox
	Gateway    interfaces.SpecialistGateway

	Orchestrator    *orchestrator.Orchestrator
	PipelineBuilder *orchestrator.PipelineBuilder
	Runner          *runner.Runner
	Revalidation    *revalidate.Service
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	blobs, err := storage.NewBlobStorage(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.Storage = blobs
	app.Repository = repository.New(blobs, logger)

	app.LLMFactory = llm.NewProviderFactory(cfg, logger)
	app.Fetcher = fetch.NewHybridFetcher(cfg.Fetch, logger)
	app.Sandbox = sandbox.NewChromedpSandbox(cfg.Sandbox, cfg.Fetch, logger)
	app.Gateway = specialists.NewService(cfg, app.LLMFactory, app.Fetcher, app.Sandbox, logger)

	app.Orchestrator = orchestrator.New(app.Gateway, app.Repository, cfg, logger)
	app.PipelineBuilder = orchestrator.NewPipelineBuilder(app.Gateway, app.Repository, cfg, logger)
	app.Runner = runner.New(app.Repository, app.Sandbox, logger)
	app.Revalidation = revalidate.NewService(app.Repository, app.Runner, cfg.Revalidation, logger)

	logger.Info().
		Str("storage", cfg.Storage.Backend).
		Str("environment", cfg.Environment).
		Msg("Application initialized")

	return app, nil
}

// Close releases application resources
func (a *App) Close(ctx context.Context) error {
	a.Revalidation.Stop()

	if a.LLMFactory != nil {
		if err := a.LLMFactory.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM clients")
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
