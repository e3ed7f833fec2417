package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dream-ai/bp-assistant/config"
	"github.com/dream-ai/bp-assistant/internal/chat"
	"github.com/dream-ai/bp-assistant/internal/db"
	"github.com/dream-ai/bp-assistant/internal/embeddings"
	"github.com/dream-ai/bp-assistant/internal/llm"
	"github.com/dream-ai/bp-assistant/internal/logger"
	"github.com/dream-ai/bp-assistant/internal/memory"
	"github.com/dream-ai/bp-assistant/internal/rag"
	"github.com/dream-ai/bp-assistant/internal/retry"
	"github.com/dream-ai/bp-assistant/internal/tools"
)

// AppContext holds what every command needs: config, logger, database and embedder
type AppContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	Database *db.DB
	Embedder *embeddings.TextEmbedder

	closers []func()
}

// NewAppContext loads configuration, sets up logging and connects to the database.
// Logs go to logOutput.
func NewAppContext(ctx context.Context, envFile string, logOutput io.Writer) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: logOutput,
	})

	database, err := db.New(ctx, cfg.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	embedder, err := embeddings.NewTextEmbedder(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Embeddings.TextModel)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &AppContext{
		Config:   cfg,
		Logger:   appLogger,
		Database: database,
		Embedder: embedder,
		closers:  []func(){database.Close},
	}, nil
}

// Close releases everything the context opened, newest first
func (ac *AppContext) Close() {
	for i := len(ac.closers) - 1; i >= 0; i-- {
		ac.closers[i]()
	}
	ac.closers = nil
}

// NewOrchestrator assembles the chat pipeline from the configuration
func (ac *AppContext) NewOrchestrator() (*chat.Orchestrator, error) {
	cfg := ac.Config

	client, err := llm.NewOpenAIClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.ChatModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}

	store, err := ac.newMemoryStore()
	if err != nil {
		return nil, err
	}

	var counter rag.TokenCounter
	if tc, err := rag.NewTiktokenCounter(); err != nil {
		ac.Logger.Warn("token counter unavailable, estimating context size", "err", err)
		counter = rag.EstimateCounter{}
	} else {
		counter = tc
	}

	retriever := rag.NewRetriever(ac.Embedder, ac.Database, cfg.Database.Table, cfg.Processing.TopK)
	builder := rag.NewContextBuilder(cfg.Processing.MaxContextTokens, counter)

	return chat.NewOrchestrator(retriever, builder, client, tools.Default(), store,
		chat.WithRetryPolicy(retry.Policy{MaxRetries: cfg.Retry.MaxRetries, Delay: cfg.Retry.Delay}),
		chat.WithLogger(ac.Logger),
	), nil
}

func (ac *AppContext) newMemoryStore() (memory.Store, error) {
	cfg := ac.Config.Memory
	switch cfg.Backend {
	case "", "memory":
		return memory.NewInMemoryStore(cfg.MaxTurns), nil
	case "badger":
		store, err := memory.OpenBadgerStore(cfg.BadgerPath, cfg.MaxTurns)
		if err != nil {
			return nil, err
		}
		ac.closers = append(ac.closers, func() {
			if err := store.Close(); err != nil {
				ac.Logger.Warn("failed to close session store", "err", err)
			}
		})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.Backend)
	}
}
