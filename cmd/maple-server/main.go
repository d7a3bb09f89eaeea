// Command maple-server runs the Maple companion API server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mapleai/maple/internal/auth"
	"github.com/mapleai/maple/internal/backup"
	"github.com/mapleai/maple/internal/chat"
	"github.com/mapleai/maple/internal/companion"
	"github.com/mapleai/maple/internal/config"
	"github.com/mapleai/maple/internal/llm"
	"github.com/mapleai/maple/internal/logging"
	"github.com/mapleai/maple/internal/memory"
	"github.com/mapleai/maple/internal/persona"
	"github.com/mapleai/maple/internal/server"
	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/internal/storage/postgres"
	"github.com/mapleai/maple/internal/storage/sqlite"
	"github.com/mapleai/maple/internal/tts"
)

func main() {
	envFile := flag.String("env", "", "Path to .env file (optional)")
	flag.Parse()

	// Load environment from .env when present; real env vars win.
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("failed to load env file", "path", *envFile, "error", err)
			os.Exit(1)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closeLogs := logging.Setup(cfg.Logging.File, logging.ParseLevel(cfg.Logging.Level))
	defer closeLogs()
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	dbPath := cfg.Storage.DataPath + "/maple.db"

	store, err := sqlite.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Re-read config with database-backed settings layered on top.
	cfg, err = config.LoadConfigFromDB(store.DB())
	if err != nil {
		logger.Error("failed to load config from database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Conversation memory lives in SQLite by default; Postgres with pgvector
	// enables similarity recall.
	var memoryStore storage.MemoryStore = store
	if cfg.Storage.StorageEngine == "postgres" && cfg.Storage.PostgresDSN != "" {
		pgStore, err := postgres.NewMemoryStore(cfg.Storage.PostgresDSN, logger)
		if err != nil {
			logger.Error("failed to open postgres memory store", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		memoryStore = pgStore
	}

	llmCfg := llmConfigFor(cfg)
	generator, err := llm.NewTextGenerator(llmCfg)
	if err != nil {
		logger.Error("failed to create text generator", "error", err)
		os.Exit(1)
	}
	embedder, err := llm.NewEmbeddingGenerator(llmCfg, cfg.LLM.OllamaEmbeddingModel)
	if err != nil {
		logger.Error("failed to create embedding generator", "error", err)
		os.Exit(1)
	}

	// Persona packs customize the system prompt, emotion keywords, and
	// canned replies. The watcher keeps the manager current; the active pack
	// is bound at startup.
	personas, err := persona.NewManager(cfg.Persona.Dir, cfg.Persona.Active, logger)
	if err != nil {
		logger.Error("failed to load personas", "error", err)
		os.Exit(1)
	}
	if err := personas.Watch(); err != nil {
		logger.Warn("persona hot reload unavailable", "error", err)
	}
	defer personas.Stop()

	classifier := emotionClassifier(personas)
	prompts := promptBuilder(personas)

	engine := companion.NewEngine(store, logger)
	orchestrator := chat.NewOrchestrator(chat.Config{
		Classifier:   classifier,
		Engine:       engine,
		Generator:    generator,
		Prompts:      prompts,
		Memories:     memory.NewContextBuilder(memoryStore, embedder, logger),
		Messages:     store,
		Logger:       logger,
		FallbackPool: fallbackPool(personas),
	})

	var synth tts.Synthesizer
	if cfg.TTS.Enabled {
		synth = tts.NewEdgeClient(tts.EdgeConfig{BaseURL: cfg.TTS.BaseURL}, logger)
	}

	var backups *backup.Service
	if cfg.Backup.Enabled {
		interval, err := time.ParseDuration(cfg.Backup.Interval)
		if err != nil {
			interval = 24 * time.Hour
		}
		backups, err = backup.NewService(backup.Config{
			DBPath:   dbPath,
			Dir:      cfg.Backup.Path,
			Interval: interval,
			Verify:   cfg.Backup.Verify,
			Retention: backup.Policy{
				Hourly:  cfg.Backup.RetentionHourly,
				Daily:   cfg.Backup.RetentionDaily,
				Weekly:  cfg.Backup.RetentionWeekly,
				Monthly: cfg.Backup.RetentionMonthly,
			},
		}, logger)
		if err != nil {
			logger.Error("failed to create backup service", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := backups.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("backup service stopped", "error", err)
			}
		}()
	}

	tokens := auth.NewTokenIssuer([]byte(cfg.Security.TokenSecret), cfg.Security.TokenTTL)
	resets := auth.NewResetTokens(auth.DefaultResetTTL)

	addr, _, err := server.Start(ctx, cfg, server.Deps{
		Store:        store,
		DB:           store.DB(),
		Engine:       engine,
		Orchestrator: orchestrator,
		Tokens:       tokens,
		Resets:       resets,
		Synth:        synth,
		Backups:      backups,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	logger.Info("maple server running", "addr", addr, "provider", cfg.LLM.Provider)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()
	time.Sleep(time.Second)
}

func llmConfigFor(cfg *config.Config) llm.Config {
	switch cfg.LLM.Provider {
	case "openai":
		return llm.Config{Provider: "openai", APIKey: cfg.LLM.OpenAIAPIKey, Model: cfg.LLM.OpenAIModel}
	case "anthropic":
		return llm.Config{Provider: "anthropic", APIKey: cfg.LLM.AnthropicAPIKey, Model: cfg.LLM.AnthropicModel}
	default:
		return llm.Config{Provider: "ollama", BaseURL: cfg.LLM.OllamaURL, Model: cfg.LLM.OllamaModel}
	}
}
