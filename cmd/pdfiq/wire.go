package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/pdfiq/internal/adapters/driven/ai"
	"github.com/custodia-labs/pdfiq/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfiq/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/pdfiq/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfiq/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/pdfiq/internal/adapters/driven/storage/sqlite"
	summarypdf "github.com/custodia-labs/pdfiq/internal/adapters/driven/summary/pdf"
	"github.com/custodia-labs/pdfiq/internal/adapters/driving/cli"
	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/core/services"
	"github.com/custodia-labs/pdfiq/internal/logger"
	pdfextract "github.com/custodia-labs/pdfiq/internal/normalisers/pdf"
	"github.com/custodia-labs/pdfiq/internal/postprocessors"
)

// bootstrap builds the application graph for a command.
func bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.Services, func() error, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, nil, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}

	logger.Section("Startup")
	files := filesystem.NewFileStore(settings.Storage.UploadDir, settings.Storage.DownloadDir)

	aiResult, err := ai.Init(ctx, settings)
	if err != nil {
		return nil, nil, err
	}

	built, err := buildServices(ctx, opts, settings, files, aiResult)
	if err != nil {
		_ = aiResult.Close()
		return nil, nil, err
	}
	built.services.Settings = settingsService

	closer := func() error {
		return errors.Join(built.store.Close(), aiResult.Close())
	}
	return built.services, closer, nil
}

type builtServices struct {
	services *cli.Services
	store    driven.ConversationStore
}

func buildServices(
	ctx context.Context,
	opts cli.BootstrapOptions,
	settings *domain.AppSettings,
	files *filesystem.FileStore,
	aiResult *ai.InitResult,
) (*builtServices, error) {
	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompts: %w", err)
	}

	if err := pdfextract.CheckAvailable(); err != nil {
		logger.Debug("%v\n%s", err, pdfextract.InstallInstructions())
	}

	pipeline, err := postprocessors.NewDefaultRegistry().BuildPipeline(domain.PipelineConfigFor(settings.RAG))
	if err != nil {
		return nil, fmt.Errorf("failed to build chunking pipeline: %w", err)
	}

	indexer := services.NewIndexService(
		files,
		pdfextract.New(),
		pipeline,
		aiResult.EmbeddingService,
		aiResult.VectorFactory,
	)

	store, err := openConversationStore(ctx, settings)
	if err != nil {
		return nil, err
	}

	memoryService := services.NewMemoryService(store, settings.Memory.MaxTurns)
	answerer := services.NewPipelineService(indexer, aiResult.LLMService, files, prompts, settings.RAG.TopK)
	askService := services.NewAskService(indexer, answerer, memoryService, files, summarypdf.NewRenderer(files))

	return &builtServices{
		services: &cli.Services{
			Ask:       askService,
			Documents: services.NewDocumentService(files, indexer),
			Memory:    memoryService,
			Indexer:   indexer,
			Watch:     watchUploads(settings.Storage.UploadDir, indexer),
		},
		store: store,
	}, nil
}

func openConversationStore(ctx context.Context, settings *domain.AppSettings) (driven.ConversationStore, error) {
	switch settings.Memory.Backend {
	case domain.MemoryBackendMemory, "":
		return memory.NewConversationStore(), nil
	case domain.MemoryBackendSQLite:
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open memory database: %w", err)
		}
		return store, nil
	case domain.MemoryBackendRedis:
		store, err := redis.New(ctx, settings.Memory.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown memory backend %q", domain.ErrInvalidInput, settings.Memory.Backend)
	}
}

// watchUploads returns a function that invalidates the index whenever a
// file in dir changes, until its context is done.
func watchUploads(dir string, indexer *services.IndexService) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		watcher, err := filesystem.NewWatcher(dir, func(name string) {
			logger.Info("uploads changed (%s), index will be rebuilt", name)
			indexer.Invalidate()
		})
		if err != nil {
			return err
		}
		watcher.Start(ctx)
		<-ctx.Done()
		return watcher.Close()
	}
}
