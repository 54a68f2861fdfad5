package decision

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

func TestRoute(t *testing.T) {
	shortage := domain.TriggerResult{NeedsAction: true, Shortage: 747}
	surplus := domain.TriggerResult{NeedsAction: false}

	cases := []struct {
		name       string
		trigger    domain.TriggerResult
		confidence float64
		threshold  float64
		want       string
	}{
		{"no shortage", surplus, 0.99, 0.6, domain.StatusNoAction},
		{"high confidence", shortage, 0.92, 0.6, domain.StatusExecuted},
		{"low confidence", shortage, 0.45, 0.6, domain.StatusPendingReview},
		{"exactly at threshold executes", shortage, 0.6, 0.6, domain.StatusExecuted},
		{"just below threshold", shortage, 0.5999, 0.6, domain.StatusPendingReview},
		{"zero threshold falls back to default", shortage, 0.6, 0, domain.StatusExecuted},
		{"custom threshold boundary", shortage, 0.95, 0.95, domain.StatusExecuted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Route(tc.trigger, tc.confidence, tc.threshold))
		})
	}
}

func TestGenerateOrder_Restock(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	cfg := GeneratorConfig{HomeLocation: "WAREHOUSE_A", AlternateLocation: "WAREHOUSE_B"}
	rec := domain.Recommendation{Action: domain.ActionRestock, Quantity: 2000, Confidence: 0.92, Rationale: "r"}

	order, err := GenerateOrder("STEEL_SHEETS", rec, 500, cfg, now)
	require.NoError(t, err)

	assert.Equal(t, "PO-20260831103000-STEEL_SHEETS", order.OrderNumber)
	assert.Equal(t, domain.OrderTypePurchase, order.Type)
	require.Len(t, order.Items, 1)
	assert.Equal(t, domain.OrderItem{MaterialID: "STEEL_SHEETS", Quantity: 2000}, order.Items[0])
	assert.True(t, order.EstimatedCost.Equal(decimal.NewFromInt(1_000_000)), "got %s", order.EstimatedCost)
	assert.Equal(t, now, order.CreatedAt)
}

func TestGenerateOrder_Transfer(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	cfg := GeneratorConfig{HomeLocation: "WAREHOUSE_A", AlternateLocation: "WAREHOUSE_B"}
	rec := domain.Recommendation{Action: domain.ActionTransfer, Quantity: 300, Confidence: 0.88, Rationale: "r"}

	order, err := GenerateOrder("COPPER_WIRE", rec, 120, cfg, now)
	require.NoError(t, err)

	assert.Equal(t, "TR-20260831103000-COPPER_WIRE", order.OrderNumber)
	assert.Equal(t, domain.OrderTypeTransfer, order.Type)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "WAREHOUSE_B", order.Items[0].Source)
	assert.Equal(t, "WAREHOUSE_A", order.Items[0].Destination)
	assert.True(t, order.EstimatedCost.IsZero(), "transfers carry no cost estimate")
}

func TestGenerateOrder_SortableWithinProduct(t *testing.T) {
	cfg := GeneratorConfig{HomeLocation: "A", AlternateLocation: "B"}
	rec := domain.Recommendation{Action: domain.ActionRestock, Quantity: 1}

	earlier, err := GenerateOrder("P1", rec, 1, cfg, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	later, err := GenerateOrder("P1", rec, 1, cfg, time.Date(2026, 8, 31, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Less(t, earlier.OrderNumber, later.OrderNumber)
}

func TestGenerateOrder_NoneRejected(t *testing.T) {
	rec := domain.Recommendation{Action: domain.ActionNone}
	_, err := GenerateOrder("P1", rec, 1, GeneratorConfig{}, time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
}
