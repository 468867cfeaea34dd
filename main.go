package main

import (
	"log"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/catalogmind/attribute-engine/pkg/cache"
	"github.com/catalogmind/attribute-engine/pkg/config"
	"github.com/catalogmind/attribute-engine/pkg/handlers"
	"github.com/catalogmind/attribute-engine/pkg/llm"
	"github.com/catalogmind/attribute-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.Model),
		zap.Int("max_concurrency", cfg.Generation.MaxConcurrency),
		zap.Int("cache_ttl_minutes", cfg.Generation.CacheTTLMinutes))

	client, err := llm.NewCompletionClient(cfg.AI.Provider, &llm.Config{
		Endpoint:    cfg.AI.Endpoint,
		Model:       cfg.AI.Model,
		APIKey:      cfg.AI.APIKey,
		Temperature: cfg.AI.Temperature,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create completion client", zap.Error(err))
	}

	pool := llm.NewWorkerPool(llm.WorkerPoolConfig{
		MaxConcurrent: cfg.Generation.MaxConcurrency,
	}, logger)

	generationService := services.NewAttributeGenerationService(
		client, pool, cache.New(), cfg.Generation, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	attributesHandler := handlers.NewAttributesHandler(generationService, logger)
	attributesHandler.RegisterRoutes(mux)

	// Serve the demo UI
	fs := http.FileServer(http.Dir("./ui"))
	mux.Handle("/", fs)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting attribute-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
