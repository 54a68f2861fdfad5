package inventory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

const (
	inventoryFixtureFile = "mock_inventory.csv"
	demandFixtureFile    = "mock_demand.csv"
)

type fixtureRecord struct {
	currentStock int
	leadTimeDays int
	serviceLevel float64
	unitPrice    float64
}

// FixtureStore serves mock-mode datasets from CSV files on disk. The files
// are read once; resolved per-product datasets are cached. Concurrent first
// lookups for the same product are deduplicated with singleflight; the
// computed value is deterministic per key, so a racing populate is harmless.
type FixtureStore struct {
	dir string

	loadOnce sync.Once
	loadErr  error
	records  map[string]fixtureRecord
	demand   map[string][]float64

	group singleflight.Group
	cache sync.Map // product id -> domain.InventoryDataset
}

func NewFixtureStore(dir string) *FixtureStore {
	return &FixtureStore{dir: dir}
}

// Dataset resolves a mock dataset for a product id.
func (s *FixtureStore) Dataset(ctx context.Context, productID string) (domain.InventoryDataset, error) {
	if cached, ok := s.cache.Load(productID); ok {
		return cached.(domain.InventoryDataset), nil
	}

	v, err, _ := s.group.Do(productID, func() (any, error) {
		if err := s.load(); err != nil {
			return nil, err
		}
		dataset, err := s.resolve(productID)
		if err != nil {
			return nil, err
		}
		s.cache.Store(productID, dataset)
		return dataset, nil
	})
	if err != nil {
		return domain.InventoryDataset{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.InventoryDataset{}, err
	}
	return v.(domain.InventoryDataset), nil
}

func (s *FixtureStore) resolve(productID string) (domain.InventoryDataset, error) {
	rec, ok := s.records[productID]
	if !ok {
		return domain.InventoryDataset{}, domain.NewError(domain.KindNotFound,
			"product %q not found in mock inventory data", productID)
	}

	history, ok := s.demand[productID]
	if !ok || len(history) == 0 {
		return domain.InventoryDataset{}, domain.NewError(domain.KindNotFound,
			"no demand history found for product %q", productID)
	}

	return domain.InventoryDataset{
		ProductID:     productID,
		CurrentStock:  rec.currentStock,
		DemandHistory: history,
		LeadTimeDays:  rec.leadTimeDays,
		ServiceLevel:  rec.serviceLevel,
		UnitPrice:     rec.unitPrice,
	}, nil
}

func (s *FixtureStore) load() error {
	s.loadOnce.Do(func() {
		records, err := s.loadInventory()
		if err != nil {
			s.loadErr = err
			return
		}
		demand, err := s.loadDemand()
		if err != nil {
			s.loadErr = err
			return
		}
		s.records = records
		s.demand = demand
	})
	return s.loadErr
}

func (s *FixtureStore) loadInventory() (map[string]fixtureRecord, error) {
	path := filepath.Join(s.dir, inventoryFixtureFile)
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"product_id", "current_stock", "lead_time_days"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", inventoryFixtureFile, col)
		}
	}

	records := make(map[string]fixtureRecord, len(rows))
	for i, row := range rows {
		id := row[header["product_id"]]
		if id == "" {
			continue
		}

		rec := fixtureRecord{serviceLevel: DefaultServiceLevel, unitPrice: DefaultUnitPrice}
		if rec.currentStock, err = strconv.Atoi(row[header["current_stock"]]); err != nil {
			return nil, fmt.Errorf("%s row %d: bad current_stock: %w", inventoryFixtureFile, i+2, err)
		}
		if rec.leadTimeDays, err = strconv.Atoi(row[header["lead_time_days"]]); err != nil {
			return nil, fmt.Errorf("%s row %d: bad lead_time_days: %w", inventoryFixtureFile, i+2, err)
		}
		if col, ok := header["service_level"]; ok && row[col] != "" {
			if rec.serviceLevel, err = strconv.ParseFloat(row[col], 64); err != nil {
				return nil, fmt.Errorf("%s row %d: bad service_level: %w", inventoryFixtureFile, i+2, err)
			}
		}
		if col, ok := header["unit_price"]; ok && row[col] != "" {
			if rec.unitPrice, err = strconv.ParseFloat(row[col], 64); err != nil {
				return nil, fmt.Errorf("%s row %d: bad unit_price: %w", inventoryFixtureFile, i+2, err)
			}
		}
		records[id] = rec
	}
	return records, nil
}

func (s *FixtureStore) loadDemand() (map[string][]float64, error) {
	path := filepath.Join(s.dir, demandFixtureFile)
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"product_id", "quantity"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", demandFixtureFile, col)
		}
	}

	// Row order in the file is the chronological demand order.
	demand := make(map[string][]float64)
	for i, row := range rows {
		id := row[header["product_id"]]
		if id == "" {
			continue
		}
		qty, err := strconv.ParseFloat(row[header["quantity"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad quantity: %w", demandFixtureFile, i+2, err)
		}
		demand[id] = append(demand[id], qty)
	}
	return demand, nil
}

// readCSV reads a whole fixture file, returning data rows and a
// column-name index built from the header row.
func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open fixture %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	headerRow, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read fixture header %s: %w", path, err)
	}
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[name] = i
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read fixture %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}
