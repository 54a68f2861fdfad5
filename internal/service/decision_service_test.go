package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HemantSudarshan/restock-agent/internal/decision"
	"github.com/HemantSudarshan/restock-agent/internal/domain"
	"github.com/HemantSudarshan/restock-agent/internal/inventory"
)

type fakeReasoner struct {
	rec   domain.Recommendation
	err   error
	calls int
}

func (f *fakeReasoner) Analyze(ctx context.Context, rc domain.ReasoningContext) (domain.Recommendation, error) {
	f.calls++
	if f.err != nil {
		return domain.Recommendation{}, f.err
	}
	return f.rec, nil
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// STEEL_SHEETS is deep in shortage; ALUMINUM_RODS holds plenty of stock.
	inventoryCSV := `product_id,current_stock,lead_time_days,service_level,unit_price
STEEL_SHEETS,150,7,0.95,500
ALUMINUM_RODS,100000,10,0.90,75
`
	demandCSV := `product_id,quantity
STEEL_SHEETS,100
STEEL_SHEETS,120
STEEL_SHEETS,110
STEEL_SHEETS,130
STEEL_SHEETS,125
STEEL_SHEETS,115
STEEL_SHEETS,140
ALUMINUM_RODS,200
ALUMINUM_RODS,195
ALUMINUM_RODS,205
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mock_inventory.csv"), []byte(inventoryCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mock_demand.csv"), []byte(demandCSV), 0o644))
	return dir
}

func newTestService(t *testing.T, reasoner Reasoner) *DecisionService {
	t.Helper()
	provider := inventory.NewProvider(inventory.NewFixtureStore(fixtureDir(t)))
	return NewDecisionService(provider, reasoner, nil, 0.6,
		decision.GeneratorConfig{HomeLocation: "WAREHOUSE_A", AlternateLocation: "WAREHOUSE_B"})
}

func TestDecide_NoShortageSkipsReasoning(t *testing.T) {
	reasoner := &fakeReasoner{}
	svc := newTestService(t, reasoner)

	outcome, err := svc.Decide(context.Background(), domain.InventoryQuery{ProductID: "ALUMINUM_RODS"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNoAction, outcome.Status)
	assert.Equal(t, domain.ActionNone, outcome.RecommendedAction)
	assert.Nil(t, outcome.Order)
	assert.Zero(t, outcome.Shortage)
	assert.Zero(t, reasoner.calls, "reasoning backend must never run without a shortage")
	assert.NotEmpty(t, outcome.TraceID)
	assert.NotEmpty(t, outcome.Reasoning)
}

func TestDecide_HighConfidenceExecutes(t *testing.T) {
	reasoner := &fakeReasoner{rec: domain.Recommendation{
		Action: domain.ActionRestock, Quantity: 800, Confidence: 0.92,
		Rationale: "demand is rising", ProviderUsed: "gemini",
	}}
	svc := newTestService(t, reasoner)

	outcome, err := svc.Decide(context.Background(), domain.InventoryQuery{ProductID: "STEEL_SHEETS"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusExecuted, outcome.Status)
	assert.Equal(t, domain.ActionRestock, outcome.RecommendedAction)
	assert.Equal(t, 800, outcome.RecommendedQuantity)
	assert.Equal(t, 1, reasoner.calls)
	assert.Greater(t, outcome.Shortage, 0.0)
	assert.GreaterOrEqual(t, outcome.ReorderPoint, outcome.SafetyStock)

	require.NotNil(t, outcome.Order)
	assert.Equal(t, domain.OrderTypePurchase, outcome.Order.Type)
	assert.Contains(t, outcome.Order.OrderNumber, "PO-")
	assert.Contains(t, outcome.Order.OrderNumber, "STEEL_SHEETS")
}

func TestDecide_LowConfidencePendsButStillGeneratesOrder(t *testing.T) {
	reasoner := &fakeReasoner{rec: domain.Recommendation{
		Action: domain.ActionRestock, Quantity: 500, Confidence: 0.45, Rationale: "uncertain trend",
	}}
	svc := newTestService(t, reasoner)

	outcome, err := svc.Decide(context.Background(), domain.InventoryQuery{ProductID: "STEEL_SHEETS"})
	require.NoError(t, err)

	// The order is generated but flagged for review, not auto-dispatched.
	assert.Equal(t, domain.StatusPendingReview, outcome.Status)
	assert.Equal(t, 0.45, outcome.ConfidenceScore)
	require.NotNil(t, outcome.Order)
	assert.Equal(t, 500, outcome.Order.Items[0].Quantity)
}

func TestDecide_TransferOrderUsesAlternateLocation(t *testing.T) {
	reasoner := &fakeReasoner{rec: domain.Recommendation{
		Action: domain.ActionTransfer, Quantity: 400, Confidence: 0.85, Rationale: "alternate has surplus",
	}}
	svc := newTestService(t, reasoner)

	outcome, err := svc.Decide(context.Background(), domain.InventoryQuery{ProductID: "STEEL_SHEETS"})
	require.NoError(t, err)

	require.NotNil(t, outcome.Order)
	assert.Equal(t, domain.OrderTypeTransfer, outcome.Order.Type)
	assert.Equal(t, "WAREHOUSE_B", outcome.Order.Items[0].Source)
	assert.Equal(t, "WAREHOUSE_A", outcome.Order.Items[0].Destination)
}

func TestDecide_NoneRecommendationProducesNoOrder(t *testing.T) {
	reasoner := &fakeReasoner{rec: domain.Recommendation{
		Action: domain.ActionNone, Quantity: 0, Confidence: 0.8, Rationale: "demand collapsing",
	}}
	svc := newTestService(t, reasoner)

	outcome, err := svc.Decide(context.Background(), domain.InventoryQuery{ProductID: "STEEL_SHEETS"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusExecuted, outcome.Status)
	assert.Nil(t, outcome.Order)
}

func TestDecide_ReasoningFailureIsSurfaced(t *testing.T) {
	reasoner := &fakeReasoner{err: domain.NewError(domain.KindAllProvidersFailed, "all 2 reasoning providers failed")}
	svc := newTestService(t, reasoner)

	outcome, err := svc.Decide(context.Background(), domain.InventoryQuery{ProductID: "STEEL_SHEETS"})
	require.Error(t, err)
	assert.Nil(t, outcome, "no partial decision on total reasoning failure")
	assert.True(t, domain.IsKind(err, domain.KindAllProvidersFailed))
}

func TestDecide_UnknownProduct(t *testing.T) {
	svc := newTestService(t, &fakeReasoner{})
	_, err := svc.Decide(context.Background(), domain.InventoryQuery{ProductID: "MISSING"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestDecideBatch_IsolatesFailures(t *testing.T) {
	reasoner := &fakeReasoner{rec: domain.Recommendation{
		Action: domain.ActionRestock, Quantity: 100, Confidence: 0.9, Rationale: "r",
	}}
	svc := newTestService(t, reasoner)

	items := svc.DecideBatch(context.Background(), []domain.InventoryQuery{
		{ProductID: "STEEL_SHEETS"},
		{ProductID: "MISSING"},
		{ProductID: "ALUMINUM_RODS"},
	})

	require.Len(t, items, 3)
	assert.NotNil(t, items[0].Outcome)
	assert.Nil(t, items[1].Outcome)
	assert.Equal(t, domain.KindNotFound, items[1].ErrorKind)
	require.NotNil(t, items[2].Outcome)
	assert.Equal(t, domain.StatusNoAction, items[2].Outcome.Status)
}

func TestPreview_NoReasoningInvolved(t *testing.T) {
	reasoner := &fakeReasoner{}
	svc := newTestService(t, reasoner)

	preview, err := svc.Preview(context.Background(), domain.InventoryQuery{ProductID: "STEEL_SHEETS"})
	require.NoError(t, err)

	assert.Zero(t, reasoner.calls)
	assert.True(t, preview.WouldTrigger)
	assert.InDelta(t, 120.0, preview.Statistics.MeanDemand, 1e-9)
	assert.GreaterOrEqual(t, preview.Thresholds.ReorderPoint, preview.Thresholds.SafetyStock)
}
