// Package app wires configuration into the concrete clients, repositories
// and services. Both binaries build their dependencies through here so the
// CLI and the HTTP server always run the same pipeline.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/config"
	"github.com/fleveque/company-enricher/internal/extract"
	"github.com/fleveque/company-enricher/internal/llm"
	"github.com/fleveque/company-enricher/internal/search"
	"github.com/fleveque/company-enricher/internal/service"
	"github.com/fleveque/company-enricher/internal/storage"
)

// Storage groups the database handle with its repositories.
type Storage struct {
	DB        *sqlx.DB
	Runs      storage.RunRepository
	Companies storage.CompanyResultRepository
	Contacts  storage.ContactResultRepository
	Calls     storage.ModelCallRepository
}

// OpenStorage opens the results database. It needs no provider credentials,
// so read-only commands can use it on its own.
func OpenStorage(cfg *config.Config) (*Storage, error) {
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Storage{
		DB:        db,
		Runs:      storage.NewRunRepository(db),
		Companies: storage.NewCompanyResultRepository(db),
		Contacts:  storage.NewContactResultRepository(db),
		Calls:     storage.NewModelCallRepository(db),
	}, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// App is the fully wired enrichment pipeline.
type App struct {
	*Storage
	Model          llm.Client
	RevenueService *service.RevenueService
	ContactService *service.ContactService
	Recorder       *service.Recorder
}

// New validates cfg and builds every component. Configuration problems come
// back as a *model.ConfigurationError before any network activity.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	searchClient, err := search.NewClient(search.Options{
		APIKey:        cfg.Search.APIKey,
		BaseURL:       cfg.Search.BaseURL,
		Count:         cfg.Search.Count,
		Market:        cfg.Search.Market,
		SafeSearch:    cfg.Search.SafeSearch,
		PostCallDelay: cfg.Search.PostCallDelay,
		Timeout:       cfg.Search.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	modelClient, err := llm.New(llm.Options{
		Provider:      cfg.Model.Provider,
		OpenRouterKey: cfg.Model.OpenRouter.APIKey,
		OpenRouterURL: cfg.Model.OpenRouter.BaseURL,
		AnthropicKey:  cfg.Model.Anthropic.APIKey,
		AnthropicURL:  cfg.Model.Anthropic.BaseURL,
		Settings: llm.Settings{
			Model:       cfg.Model.Name,
			Temperature: cfg.Model.Temperature,
			MaxTokens:   cfg.Model.MaxTokens,
		},
		Timeout: cfg.Model.Timeout,
		Retry: llm.RetryPolicy{
			MaxAttempts: cfg.Model.MaxAttempts,
			BaseDelay:   cfg.Model.BackoffBase,
		},
		AttributionURL:  cfg.Model.OpenRouter.Referer,
		AttributionName: cfg.Model.OpenRouter.Title,
	}, logger)
	if err != nil {
		return nil, err
	}

	store, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}

	finder := search.NewFinder(searchClient, logger)
	extractor := extract.New(logger)

	return &App{
		Storage:        store,
		Model:          modelClient,
		RevenueService: service.NewRevenueService(finder, modelClient, extractor, store.Calls, logger),
		ContactService: service.NewContactService(finder, modelClient, extractor, store.Calls, logger),
		Recorder:       service.NewRecorder(store.Runs, store.Companies, store.Contacts, logger),
	}, nil
}
