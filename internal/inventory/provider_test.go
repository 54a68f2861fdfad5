package inventory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	inventory := `product_id,current_stock,lead_time_days,service_level,unit_price
STEEL_SHEETS,150,7,0.95,500
COPPER_WIRE,820,5,,
`
	demand := `product_id,quantity
STEEL_SHEETS,100
STEEL_SHEETS,120
STEEL_SHEETS,110
STEEL_SHEETS,130
STEEL_SHEETS,125
STEEL_SHEETS,115
STEEL_SHEETS,140
COPPER_WIRE,60
COPPER_WIRE,55
COPPER_WIRE,70
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, inventoryFixtureFile), []byte(inventory), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, demandFixtureFile), []byte(demand), 0o644))
	return dir
}

func TestFetch_MockMode(t *testing.T) {
	provider := NewProvider(NewFixtureStore(writeFixtures(t)))

	dataset, err := provider.Fetch(context.Background(), domain.InventoryQuery{
		ProductID: "STEEL_SHEETS",
		Mode:      domain.ModeMock,
	})
	require.NoError(t, err)

	assert.Equal(t, 150, dataset.CurrentStock)
	assert.Equal(t, 7, dataset.LeadTimeDays)
	assert.Equal(t, 0.95, dataset.ServiceLevel)
	assert.Equal(t, 500.0, dataset.UnitPrice)
	assert.Equal(t, []float64{100, 120, 110, 130, 125, 115, 140}, dataset.DemandHistory)
}

func TestFetch_MockModeDefaults(t *testing.T) {
	provider := NewProvider(NewFixtureStore(writeFixtures(t)))

	dataset, err := provider.Fetch(context.Background(), domain.InventoryQuery{ProductID: "COPPER_WIRE"})
	require.NoError(t, err)

	// Empty columns fall back to defaults.
	assert.Equal(t, DefaultServiceLevel, dataset.ServiceLevel)
	assert.Equal(t, float64(DefaultUnitPrice), dataset.UnitPrice)
}

func TestFetch_MockModeUnknownProduct(t *testing.T) {
	provider := NewProvider(NewFixtureStore(writeFixtures(t)))

	_, err := provider.Fetch(context.Background(), domain.InventoryQuery{
		ProductID: "NO_SUCH_PRODUCT",
		Mode:      domain.ModeMock,
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestFetch_MockModeConcurrentFirstAccess(t *testing.T) {
	provider := NewProvider(NewFixtureStore(writeFixtures(t)))

	var wg sync.WaitGroup
	results := make([]domain.InventoryDataset, 16)
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = provider.Fetch(context.Background(), domain.InventoryQuery{ProductID: "STEEL_SHEETS"})
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
}

func TestFetch_RealtimeMode(t *testing.T) {
	provider := NewProvider(NewFixtureStore(t.TempDir()))

	stock, lead, price := 150, 7, 500.0
	dataset, err := provider.Fetch(context.Background(), domain.InventoryQuery{
		ProductID:     "STEEL_SHEETS",
		Mode:          domain.ModeRealtime,
		CurrentStock:  &stock,
		DemandHistory: []float64{100, 120, 110, 130, 125, 115, 140},
		LeadTimeDays:  &lead,
		UnitPrice:     &price,
	})
	require.NoError(t, err)

	assert.Equal(t, 150, dataset.CurrentStock)
	assert.Equal(t, DefaultServiceLevel, dataset.ServiceLevel)
	assert.Equal(t, 500.0, dataset.UnitPrice)
}

func TestFetch_RealtimeModeValidation(t *testing.T) {
	provider := NewProvider(NewFixtureStore(t.TempDir()))
	ctx := context.Background()

	stock, lead := 150, 7
	badLevel := 0.3
	history := []float64{100, 120, 110}

	cases := []struct {
		name  string
		query domain.InventoryQuery
	}{
		{"missing product id", domain.InventoryQuery{Mode: domain.ModeRealtime}},
		{"missing current stock", domain.InventoryQuery{ProductID: "P", Mode: domain.ModeRealtime, DemandHistory: history, LeadTimeDays: &lead}},
		{"short demand history", domain.InventoryQuery{ProductID: "P", Mode: domain.ModeRealtime, CurrentStock: &stock, DemandHistory: []float64{1, 2}, LeadTimeDays: &lead}},
		{"missing lead time", domain.InventoryQuery{ProductID: "P", Mode: domain.ModeRealtime, CurrentStock: &stock, DemandHistory: history}},
		{"service level out of range", domain.InventoryQuery{ProductID: "P", Mode: domain.ModeRealtime, CurrentStock: &stock, DemandHistory: history, LeadTimeDays: &lead, ServiceLevel: &badLevel}},
		{"unknown mode", domain.InventoryQuery{ProductID: "P", Mode: "stream"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := provider.Fetch(ctx, tc.query)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindInvalidInput), "got %v", err)
		})
	}
}
