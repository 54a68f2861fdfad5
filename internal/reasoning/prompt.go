package reasoning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

// DefaultMaxProductIDLen bounds sanitized product ids embedded into prompts.
const DefaultMaxProductIDLen = 100

var productIDPattern = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeProductID strips a product id down to letters, digits, underscore
// and hyphen, then truncates it. Product ids are caller-controlled and get
// embedded into generated prompt text, so everything else is dropped before
// prompt construction.
func SanitizeProductID(productID string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxProductIDLen
	}
	sanitized := productIDPattern.ReplaceAllString(productID, "")
	if len(sanitized) > maxLen {
		sanitized = sanitized[:maxLen]
	}
	return sanitized
}

// PromptConfig carries the deployment-specific names rendered into prompts.
type PromptConfig struct {
	HomeLocation      string
	AlternateLocation string
}

// BuildPrompt renders the restock analysis prompt from a sanitized context.
// The output is fully deterministic for a given context and config.
func BuildPrompt(rc domain.ReasoningContext, cfg PromptConfig) string {
	var b strings.Builder

	b.WriteString("You are an inventory management AI agent. Analyze the following inventory situation and recommend an action.\n\n")

	b.WriteString("## Current Status:\n")
	fmt.Fprintf(&b, "- Product: %s\n", rc.ProductID)
	fmt.Fprintf(&b, "- Current Warehouse (%s): %d units\n", cfg.HomeLocation, rc.CurrentStock)
	fmt.Fprintf(&b, "- Alternate Warehouse (%s): available for transfers\n", cfg.AlternateLocation)
	fmt.Fprintf(&b, "- Safety Stock: %.0f units\n", rc.SafetyStock)
	fmt.Fprintf(&b, "- Reorder Point: %.0f units\n", rc.ReorderPoint)
	fmt.Fprintf(&b, "- Shortage: %.0f units below ROP\n", rc.Shortage)
	fmt.Fprintf(&b, "- Average Daily Demand: %.0f units (std dev %.1f)\n", rc.MeanDemand, rc.StdDev)
	fmt.Fprintf(&b, "- Lead Time: %d days purchase, 1-2 days transfer\n", rc.LeadTimeDays)
	fmt.Fprintf(&b, "- Unit Price: %.2f\n", rc.UnitPrice)

	b.WriteString("\n## Demand Trend:\n")
	b.WriteString(formatDemandHistory(rc.DemandHistory))
	b.WriteString("\n")

	b.WriteString(`
## Decision Rules:
1. Use "transfer" if:
   - The alternate warehouse can plausibly cover the gap
   - Shortage is moderate (<500 units)
   - This is faster and costs nothing

2. Use "restock" if:
   - Emergency shortage (>500 units OR critical stockout)
   - Need a large quantity the alternate warehouse cannot provide

3. Use "none" only if the demand trend shows the shortage resolving on its own.

4. Confidence scoring:
   - High (>0.90): clear shortage and demand data supports the action
   - Medium (0.70-0.90): some uncertainty in the demand trend
   - Low (<0.70): declining demand or unclear situation

## Response Format (JSON only, no markdown):
{
    "action": "restock" or "transfer" or "none",
    "quantity": <number>,
    "confidence": <0.0-1.0>,
    "reasoning": "<brief explanation of why this action was chosen>"
}
`)

	return b.String()
}

func formatDemandHistory(history []float64) string {
	parts := make([]string, len(history))
	for i, v := range history {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
