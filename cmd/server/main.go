package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/HemantSudarshan/restock-agent/internal/api"
	"github.com/HemantSudarshan/restock-agent/internal/cache"
	"github.com/HemantSudarshan/restock-agent/internal/config"
	"github.com/HemantSudarshan/restock-agent/internal/decision"
	"github.com/HemantSudarshan/restock-agent/internal/inventory"
	"github.com/HemantSudarshan/restock-agent/internal/reasoning"
	"github.com/HemantSudarshan/restock-agent/internal/repository"
	"github.com/HemantSudarshan/restock-agent/internal/repository/postgres"
	"github.com/HemantSudarshan/restock-agent/internal/service"
	"github.com/HemantSudarshan/restock-agent/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(os.Getenv("LOG_LEVEL"))

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	providers, cleanup, err := buildProviders(context.Background(), cfg.Reasoning)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize reasoning providers")
	}
	defer cleanup()
	if len(providers) == 0 {
		log.Warn().Msg("no reasoning providers configured; shortage decisions will fail until credentials are set")
	}

	orchestrator := reasoning.NewOrchestrator(providers, reasoning.OrchestratorConfig{
		Policy: reasoning.RetryPolicy{
			MaxAttempts: cfg.Reasoning.MaxAttempts,
			BackoffBase: cfg.Reasoning.BackoffBase,
			BackoffCap:  cfg.Reasoning.BackoffCap,
		},
		CallTimeout:     cfg.Reasoning.CallTimeout,
		MaxProductIDLen: cfg.Reasoning.MaxProductIDLen,
		Prompt: reasoning.PromptConfig{
			HomeLocation:      cfg.Decision.HomeLocation,
			AlternateLocation: cfg.Decision.AlternateLocation,
		},
	})

	previewCache, err := cache.NewPreviewCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("preview cache unavailable, continuing without caching")
		previewCache = cache.NewNoopPreviewCache()
	}

	var orders repository.OrderRepository
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		orders = postgres.NewOrderRepository(db)
	}

	dataProvider := inventory.NewProvider(inventory.NewFixtureStore(cfg.Data.FixtureDir))
	decisions := service.NewDecisionService(
		dataProvider,
		orchestrator,
		previewCache,
		cfg.Decision.ConfidenceThreshold,
		decision.GeneratorConfig{
			HomeLocation:      cfg.Decision.HomeLocation,
			AlternateLocation: cfg.Decision.AlternateLocation,
		},
	)

	router := api.NewRouter(decisions, orders, cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Strs("providers", providerNames(providers)).Msg("server starting")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// buildProviders assembles the failover chain in configured priority order,
// skipping providers without credentials.
func buildProviders(ctx context.Context, cfg config.ReasoningConfig) ([]reasoning.Provider, func(), error) {
	var (
		providers []reasoning.Provider
		closers   []func() error
	)

	for _, name := range cfg.ProviderOrder {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				log.Warn().Msg("gemini provider skipped: no API key")
				continue
			}
			gemini, err := reasoning.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return nil, nil, err
			}
			providers = append(providers, gemini)
			closers = append(closers, gemini.Close)
		case "groq":
			if cfg.GroqAPIKey == "" {
				log.Warn().Msg("groq provider skipped: no API key")
				continue
			}
			providers = append(providers, reasoning.NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL))
		default:
			log.Warn().Str("provider", name).Msg("unknown provider in LLM_PROVIDER_ORDER, skipping")
		}
	}

	cleanup := func() {
		for _, close := range closers {
			if err := close(); err != nil {
				log.Warn().Err(err).Msg("failed to close provider client")
			}
		}
	}
	return providers, cleanup, nil
}

func providerNames(providers []reasoning.Provider) []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	return names
}
