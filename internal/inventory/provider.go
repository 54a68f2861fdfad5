package inventory

import (
	"context"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
	"github.com/HemantSudarshan/restock-agent/internal/safety"
)

// DefaultServiceLevel is applied when a realtime query omits service_level.
const DefaultServiceLevel = 0.95

// DefaultUnitPrice is applied when neither the query nor the fixture carries
// a unit price.
const DefaultUnitPrice = 100

// Provider resolves an InventoryQuery into a normalized dataset, either from
// the fixture store (mock mode) or from the caller-supplied fields
// (realtime mode).
type Provider struct {
	fixtures *FixtureStore
}

func NewProvider(fixtures *FixtureStore) *Provider {
	return &Provider{fixtures: fixtures}
}

// Fetch resolves the dataset for one query. The only side effect is the
// idempotent fixture cache population in mock mode.
func (p *Provider) Fetch(ctx context.Context, query domain.InventoryQuery) (domain.InventoryDataset, error) {
	if query.ProductID == "" {
		return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput, "product_id is required")
	}

	switch query.Mode {
	case domain.ModeMock, "":
		return p.fixtures.Dataset(ctx, query.ProductID)
	case domain.ModeRealtime:
		return resolveRealtime(query)
	default:
		return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput,
			"mode must be %q or %q, got %q", domain.ModeMock, domain.ModeRealtime, query.Mode)
	}
}

func resolveRealtime(query domain.InventoryQuery) (domain.InventoryDataset, error) {
	if query.CurrentStock == nil {
		return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput,
			"current_stock is required in %q mode", domain.ModeRealtime)
	}
	if *query.CurrentStock < 0 {
		return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput,
			"current_stock must be non-negative, got %d", *query.CurrentStock)
	}
	if len(query.DemandHistory) < safety.MinDemandPoints {
		return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput,
			"demand_history must have at least %d data points, got %d", safety.MinDemandPoints, len(query.DemandHistory))
	}
	if query.LeadTimeDays == nil {
		return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput,
			"lead_time_days is required in %q mode", domain.ModeRealtime)
	}
	if *query.LeadTimeDays <= 0 {
		return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput,
			"lead_time_days must be positive, got %d", *query.LeadTimeDays)
	}

	serviceLevel := DefaultServiceLevel
	if query.ServiceLevel != nil {
		serviceLevel = *query.ServiceLevel
		if serviceLevel < 0.5 || serviceLevel > 0.999 {
			return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput,
				"service_level must be in [0.5, 0.999], got %g", serviceLevel)
		}
	}

	unitPrice := float64(DefaultUnitPrice)
	if query.UnitPrice != nil {
		unitPrice = *query.UnitPrice
		if unitPrice < 0 {
			return domain.InventoryDataset{}, domain.NewError(domain.KindInvalidInput,
				"unit_price must be non-negative, got %g", unitPrice)
		}
	}

	// Copy the history so the dataset stays immutable even if the caller
	// reuses the query slice.
	history := make([]float64, len(query.DemandHistory))
	copy(history, query.DemandHistory)

	return domain.InventoryDataset{
		ProductID:     query.ProductID,
		CurrentStock:  *query.CurrentStock,
		DemandHistory: history,
		LeadTimeDays:  *query.LeadTimeDays,
		ServiceLevel:  serviceLevel,
		UnitPrice:     unitPrice,
	}, nil
}
