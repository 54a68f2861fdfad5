package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/HemantSudarshan/restock-agent/internal/cache"
	"github.com/HemantSudarshan/restock-agent/internal/decision"
	"github.com/HemantSudarshan/restock-agent/internal/domain"
	"github.com/HemantSudarshan/restock-agent/internal/inventory"
	"github.com/HemantSudarshan/restock-agent/internal/safety"
)

// defaultBatchConcurrency bounds batch fan-out. Providers stay strictly
// sequential within one decision; only independent decisions run in
// parallel.
const defaultBatchConcurrency = 4

// Reasoner is the reasoning orchestrator capability the service depends on.
type Reasoner interface {
	Analyze(ctx context.Context, rc domain.ReasoningContext) (domain.Recommendation, error)
}

// DecisionService runs the full pipeline: fetch, compute, evaluate,
// maybe-reason, route, maybe-generate. Every invocation is independent;
// nothing is shared across calls beyond the fixture cache.
type DecisionService struct {
	data     *inventory.Provider
	reasoner Reasoner
	cache    cache.PreviewCache

	confidenceThreshold float64
	generatorCfg        decision.GeneratorConfig

	now func() time.Time
}

func NewDecisionService(data *inventory.Provider, reasoner Reasoner, previewCache cache.PreviewCache, confidenceThreshold float64, generatorCfg decision.GeneratorConfig) *DecisionService {
	if previewCache == nil {
		previewCache = cache.NewNoopPreviewCache()
	}
	if confidenceThreshold <= 0 {
		confidenceThreshold = decision.DefaultConfidenceThreshold
	}
	return &DecisionService{
		data:                data,
		reasoner:            reasoner,
		cache:               previewCache,
		confidenceThreshold: confidenceThreshold,
		generatorCfg:        generatorCfg,
		now:                 time.Now,
	}
}

// Decide runs one decision. When the stock sits at or above the reorder
// point no reasoning backend is invoked and the outcome is no_action.
func (s *DecisionService) Decide(ctx context.Context, query domain.InventoryQuery) (*domain.DecisionOutcome, error) {
	dataset, err := s.data.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	stats, thresholds, err := safety.Analyze(dataset)
	if err != nil {
		return nil, err
	}
	trigger := safety.EvaluateTrigger(dataset.CurrentStock, thresholds)

	outcome := &domain.DecisionOutcome{
		TraceID:      uuid.NewString(),
		SafetyStock:  thresholds.SafetyStock,
		ReorderPoint: thresholds.ReorderPoint,
		CurrentStock: dataset.CurrentStock,
		Shortage:     trigger.Shortage,
	}

	if !trigger.NeedsAction {
		outcome.Status = domain.StatusNoAction
		outcome.RecommendedAction = domain.ActionNone
		outcome.Reasoning = fmt.Sprintf("current stock %d is at or above the reorder point %.0f; no replenishment needed",
			dataset.CurrentStock, thresholds.ReorderPoint)
		log.Info().Str("trace_id", outcome.TraceID).Str("product_id", dataset.ProductID).
			Msg("no shortage, reasoning skipped")
		return outcome, nil
	}

	rec, err := s.reasoner.Analyze(ctx, domain.ReasoningContext{
		ProductID:     dataset.ProductID,
		CurrentStock:  dataset.CurrentStock,
		SafetyStock:   thresholds.SafetyStock,
		ReorderPoint:  thresholds.ReorderPoint,
		Shortage:      trigger.Shortage,
		MeanDemand:    stats.MeanDemand,
		StdDev:        stats.StdDev,
		LeadTimeDays:  dataset.LeadTimeDays,
		DemandHistory: dataset.DemandHistory,
		UnitPrice:     dataset.UnitPrice,
	})
	if err != nil {
		// Total reasoning failure is surfaced, never replaced with a
		// rule-based default.
		return nil, err
	}

	outcome.RecommendedAction = rec.Action
	outcome.RecommendedQuantity = rec.Quantity
	outcome.ConfidenceScore = rec.Confidence
	outcome.Reasoning = rec.Rationale
	outcome.Status = decision.Route(trigger, rec.Confidence, s.confidenceThreshold)

	if rec.Action != domain.ActionNone {
		order, err := decision.GenerateOrder(dataset.ProductID, rec, dataset.UnitPrice, s.generatorCfg, s.now())
		if err != nil {
			return nil, err
		}
		outcome.Order = order
	}

	log.Info().
		Str("trace_id", outcome.TraceID).
		Str("product_id", dataset.ProductID).
		Str("status", outcome.Status).
		Str("action", rec.Action).
		Str("provider", rec.ProviderUsed).
		Float64("confidence", rec.Confidence).
		Msg("decision completed")

	return outcome, nil
}

// BatchItem is the per-query result of a batch decision.
type BatchItem struct {
	ProductID string                  `json:"product_id"`
	Outcome   *domain.DecisionOutcome `json:"outcome,omitempty"`
	ErrorKind domain.ErrorKind        `json:"error_kind,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// DecideBatch fans independent decisions out with bounded concurrency.
// Per-item failures are recorded, not propagated, so one bad product never
// cancels its siblings.
func (s *DecisionService) DecideBatch(ctx context.Context, queries []domain.InventoryQuery) []BatchItem {
	items := make([]BatchItem, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultBatchConcurrency)
	for i, query := range queries {
		g.Go(func() error {
			outcome, err := s.Decide(ctx, query)
			item := BatchItem{ProductID: query.ProductID, Outcome: outcome}
			if err != nil {
				item.Outcome = nil
				item.ErrorKind = domain.KindOf(err)
				item.Error = err.Error()
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	return items
}

// Preview computes the deterministic threshold view without any reasoning
// call. Results are cached (redis when enabled, noop otherwise): the math is
// pure, so a cached entry is always identical to a fresh one within the TTL.
func (s *DecisionService) Preview(ctx context.Context, query domain.InventoryQuery) (*domain.ThresholdPreview, error) {
	if cached, ok, err := s.cache.Get(ctx, query); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("preview cache get failed")
	}

	dataset, err := s.data.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	stats, thresholds, err := safety.Analyze(dataset)
	if err != nil {
		return nil, err
	}
	trigger := safety.EvaluateTrigger(dataset.CurrentStock, thresholds)

	mode := query.Mode
	if mode == "" {
		mode = domain.ModeMock
	}
	preview := &domain.ThresholdPreview{
		ProductID:    dataset.ProductID,
		Mode:         mode,
		Statistics:   stats,
		Thresholds:   thresholds,
		CurrentStock: dataset.CurrentStock,
		WouldTrigger: trigger.NeedsAction,
		Shortage:     trigger.Shortage,
	}

	if err := s.cache.Set(ctx, query, preview); err != nil {
		log.Warn().Err(err).Msg("preview cache set failed")
	}

	return preview, nil
}
