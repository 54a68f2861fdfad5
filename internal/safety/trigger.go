package safety

import (
	"math"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

// EvaluateTrigger checks the current stock against the reorder point. The
// pipeline short-circuits before any reasoning call when there is no
// shortage; the predicate itself is pure.
func EvaluateTrigger(currentStock int, thresholds domain.SafetyThresholds) domain.TriggerResult {
	shortage := math.Max(0, thresholds.ReorderPoint-float64(currentStock))
	return domain.TriggerResult{
		NeedsAction: float64(currentStock) < thresholds.ReorderPoint,
		Shortage:    shortage,
	}
}
