package decision

import "github.com/HemantSudarshan/restock-agent/internal/domain"

// DefaultConfidenceThreshold gates automatic execution when no threshold is
// configured.
const DefaultConfidenceThreshold = 0.6

// Route assigns the decision status. Without a shortage the pipeline never
// reached reasoning and the status is no_action. The confidence boundary is
// inclusive: a confidence exactly at the threshold executes.
func Route(trigger domain.TriggerResult, confidence, threshold float64) string {
	if !trigger.NeedsAction {
		return domain.StatusNoAction
	}
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if confidence >= threshold {
		return domain.StatusExecuted
	}
	return domain.StatusPendingReview
}
