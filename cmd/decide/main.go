package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/HemantSudarshan/restock-agent/internal/cache"
	"github.com/HemantSudarshan/restock-agent/internal/config"
	"github.com/HemantSudarshan/restock-agent/internal/decision"
	"github.com/HemantSudarshan/restock-agent/internal/domain"
	"github.com/HemantSudarshan/restock-agent/internal/inventory"
	"github.com/HemantSudarshan/restock-agent/internal/reasoning"
	"github.com/HemantSudarshan/restock-agent/internal/service"
	"github.com/HemantSudarshan/restock-agent/pkg/logger"
)

func newDBURLFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: required,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	logger.SetLevel(os.Getenv("LOG_LEVEL"))

	app := &cli.App{
		Name:  "decide",
		Usage: "Run a single restock decision from the command line",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Evaluate one product and print the decision as JSON",
				Flags:  runFlags(),
				Action: runDecision,
			},
			{
				Name:  "preview",
				Usage: "Print computed thresholds for a product without calling any reasoning provider",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product-id", Usage: "Product identifier", Required: true},
					&cli.StringFlag{Name: "fixture-dir", Usage: "Directory with mock CSV fixtures"},
				},
				Action: runPreview,
			},
			{
				Name:  "init-db",
				Usage: "Create the orders and audit_events tables",
				Flags: []cli.Flag{
					newDBURLFlag(true),
				},
				Action: initSchema,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "product-id", Usage: "Product identifier", Required: true},
		&cli.StringFlag{Name: "mode", Usage: "Data mode: mock or realtime", Value: domain.ModeMock},
		&cli.IntFlag{Name: "current-stock", Usage: "Current stock on hand (realtime mode)"},
		&cli.StringFlag{Name: "demand", Usage: "Comma-separated demand history (realtime mode)"},
		&cli.IntFlag{Name: "lead-time", Usage: "Supplier lead time in days (realtime mode)"},
		&cli.Float64Flag{Name: "service-level", Usage: "Target service level (realtime mode)"},
		&cli.Float64Flag{Name: "unit-price", Usage: "Unit price for cost estimates (realtime mode)"},
		&cli.StringFlag{Name: "fixture-dir", Usage: "Directory with mock CSV fixtures"},
		newDBURLFlag(false),
	}
}

func buildService(c *cli.Context) (*service.DecisionService, func(), error) {
	cfg := config.Load()

	fixtureDir := cfg.Data.FixtureDir
	if dir := c.String("fixture-dir"); dir != "" {
		fixtureDir = dir
	}

	var (
		providers []reasoning.Provider
		cleanup   = func() {}
	)
	if cfg.Reasoning.GeminiAPIKey != "" {
		gemini, err := reasoning.NewGeminiProvider(c.Context, cfg.Reasoning.GeminiAPIKey, cfg.Reasoning.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, gemini)
		cleanup = func() { _ = gemini.Close() }
	}
	if cfg.Reasoning.GroqAPIKey != "" {
		providers = append(providers, reasoning.NewGroqProvider(cfg.Reasoning.GroqAPIKey, cfg.Reasoning.GroqModel, cfg.Reasoning.GroqBaseURL))
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

	svc := service.NewDecisionService(
		inventory.NewProvider(inventory.NewFixtureStore(fixtureDir)),
		orchestrator,
		cache.NewNoopPreviewCache(),
		cfg.Decision.ConfidenceThreshold,
		decision.GeneratorConfig{
			HomeLocation:      cfg.Decision.HomeLocation,
			AlternateLocation: cfg.Decision.AlternateLocation,
		},
	)
	return svc, cleanup, nil
}

func buildQuery(c *cli.Context) (domain.InventoryQuery, error) {
	query := domain.InventoryQuery{
		ProductID: c.String("product-id"),
		Mode:      c.String("mode"),
	}
	if query.Mode != domain.ModeRealtime {
		return query, nil
	}

	if c.IsSet("current-stock") {
		v := c.Int("current-stock")
		query.CurrentStock = &v
	}
	if c.IsSet("lead-time") {
		v := c.Int("lead-time")
		query.LeadTimeDays = &v
	}
	if c.IsSet("service-level") {
		v := c.Float64("service-level")
		query.ServiceLevel = &v
	}
	if c.IsSet("unit-price") {
		v := c.Float64("unit-price")
		query.UnitPrice = &v
	}
	if raw := c.String("demand"); raw != "" {
		history, err := parseDemand(raw)
		if err != nil {
			return query, err
		}
		query.DemandHistory = history
	}
	return query, nil
}

func parseDemand(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	history := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid demand value %q: %w", part, err)
		}
		history = append(history, v)
	}
	return history, nil
}

func runDecision(c *cli.Context) error {
	svc, cleanup, err := buildService(c)
	if err != nil {
		return err
	}
	defer cleanup()

	query, err := buildQuery(c)
	if err != nil {
		return err
	}

	outcome, err := svc.Decide(c.Context, query)
	if err != nil {
		return err
	}

	if dbURL := c.String("db-url"); dbURL != "" && outcome.Order != nil {
		if err := persistOrder(c.Context, dbURL, outcome); err != nil {
			return fmt.Errorf("failed to persist order: %w", err)
		}
	}

	return printJSON(outcome)
}

func runPreview(c *cli.Context) error {
	svc, cleanup, err := buildService(c)
	if err != nil {
		return err
	}
	defer cleanup()

	preview, err := svc.Preview(c.Context, domain.InventoryQuery{
		ProductID: c.String("product-id"),
		Mode:      domain.ModeMock,
	})
	if err != nil {
		return err
	}
	return printJSON(preview)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func persistOrder(ctx context.Context, dbURL string, outcome *domain.DecisionOutcome) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	order := outcome.Order
	quantity := 0
	productID := ""
	if len(order.Items) > 0 {
		quantity = order.Items[0].Quantity
		productID = order.Items[0].MaterialID
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO orders (
			order_number, trace_id, product_id, order_type,
			quantity, cost, status, confidence, reasoning, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_number) DO NOTHING`,
		order.OrderNumber,
		outcome.TraceID,
		productID,
		order.Type,
		quantity,
		order.EstimatedCost.String(),
		outcome.Status,
		outcome.ConfidenceScore,
		outcome.Reasoning,
		order.CreatedAt,
	)
	return err
}

func initSchema(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			order_number TEXT PRIMARY KEY,
			trace_id     TEXT NOT NULL,
			product_id   TEXT NOT NULL,
			order_type   TEXT NOT NULL,
			quantity     BIGINT NOT NULL,
			cost         NUMERIC(14,2) NOT NULL DEFAULT 0,
			status       TEXT NOT NULL,
			confidence   DOUBLE PRECISION NOT NULL DEFAULT 0,
			reasoning    TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_product_id ON orders (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			id                 BIGSERIAL PRIMARY KEY,
			trace_id           TEXT NOT NULL,
			product_id         TEXT NOT NULL,
			status             TEXT NOT NULL,
			shortage           DOUBLE PRECISION NOT NULL DEFAULT 0,
			recommended_action TEXT NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_trace_id ON audit_events (trace_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	fmt.Println("schema ready")
	return nil
}
