package safety

import (
	"math"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

// MinDemandPoints is the minimum demand history length accepted for variance
// estimation. Fewer points make the sample standard deviation meaningless.
const MinDemandPoints = 3

// ComputeStatistics derives the mean and sample standard deviation (n-1
// divisor) of a demand history.
func ComputeStatistics(demandHistory []float64) (domain.DemandStatistics, error) {
	if len(demandHistory) < MinDemandPoints {
		return domain.DemandStatistics{}, domain.NewError(domain.KindInvalidInput,
			"demand_history must have at least %d data points, got %d", MinDemandPoints, len(demandHistory))
	}

	var sum float64
	for _, d := range demandHistory {
		sum += d
	}
	mean := sum / float64(len(demandHistory))

	var sq float64
	for _, d := range demandHistory {
		diff := d - mean
		sq += diff * diff
	}
	stdDev := math.Sqrt(sq / float64(len(demandHistory)-1))

	return domain.DemandStatistics{MeanDemand: mean, StdDev: stdDev}, nil
}

// ComputeThresholds calculates safety stock and reorder point:
//
//	safety_stock  = z * stddev * sqrt(lead_time)
//	reorder_point = mean_demand * lead_time + safety_stock
//
// A zero standard deviation yields zero safety stock, which is valid input,
// not an error.
func ComputeThresholds(stats domain.DemandStatistics, leadTimeDays int, serviceLevel float64) (domain.SafetyThresholds, error) {
	if leadTimeDays <= 0 {
		return domain.SafetyThresholds{}, domain.NewError(domain.KindInvalidInput,
			"lead_time_days must be positive, got %d", leadTimeDays)
	}
	if serviceLevel <= 0 || serviceLevel >= 1 {
		return domain.SafetyThresholds{}, domain.NewError(domain.KindInvalidInput,
			"service_level must be in (0, 1), got %g", serviceLevel)
	}
	if stats.StdDev < 0 {
		return domain.SafetyThresholds{}, domain.NewError(domain.KindInvalidInput,
			"std_dev must be non-negative, got %g", stats.StdDev)
	}

	z := zScore(serviceLevel)
	safetyStock := z * stats.StdDev * math.Sqrt(float64(leadTimeDays))
	// Service levels below 0.5 give a negative z; safety stock never goes
	// below zero.
	safetyStock = math.Max(0, safetyStock)

	return domain.SafetyThresholds{
		SafetyStock:  safetyStock,
		ReorderPoint: stats.MeanDemand*float64(leadTimeDays) + safetyStock,
	}, nil
}

// Analyze runs the full calculation pipeline over a resolved dataset.
func Analyze(dataset domain.InventoryDataset) (domain.DemandStatistics, domain.SafetyThresholds, error) {
	stats, err := ComputeStatistics(dataset.DemandHistory)
	if err != nil {
		return domain.DemandStatistics{}, domain.SafetyThresholds{}, err
	}
	thresholds, err := ComputeThresholds(stats, dataset.LeadTimeDays, dataset.ServiceLevel)
	if err != nil {
		return domain.DemandStatistics{}, domain.SafetyThresholds{}, err
	}
	return stats, thresholds, nil
}
