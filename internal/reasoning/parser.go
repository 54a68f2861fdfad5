package reasoning

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

// rawPrefixLen bounds the diagnostic text carried by parse failures.
const rawPrefixLen = 100

var (
	fencePattern         = regexp.MustCompile("(?i)```[a-zA-Z]*\\s*")
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)
)

type recommendationPayload struct {
	Action     string   `json:"action"`
	Quantity   *float64 `json:"quantity"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// recoveryStages are the normalization passes applied to a candidate JSON
// object, in order, until one parses. Each transform is pure.
var recoveryStages = []struct {
	name      string
	transform func(string) string
}{
	{"strict", func(s string) string { return s }},
	{"normalize_quotes", normalizeQuotes},
	{"strip_trailing_commas", stripTrailingCommas},
	{"combined", func(s string) string { return stripTrailingCommas(normalizeQuotes(s)) }},
}

// ParseRecommendation converts raw backend text into a validated
// recommendation, tolerating markdown fencing, surrounding prose, quoting
// style and dangling separators. The provider tag is left empty; the
// orchestrator fills it in.
func ParseRecommendation(raw string) (domain.Recommendation, error) {
	candidate, ok := extractJSONObject(stripFences(raw))
	if !ok {
		return domain.Recommendation{}, domain.NewError(domain.KindUnparsableResponse,
			"no JSON object found in response: %q", prefix(raw))
	}

	for _, stage := range recoveryStages {
		var payload recommendationPayload
		if err := json.Unmarshal([]byte(stage.transform(candidate)), &payload); err != nil {
			continue
		}
		return validatePayload(payload)
	}

	return domain.Recommendation{}, domain.NewError(domain.KindUnparsableResponse,
		"could not parse JSON after all recovery stages: %q", prefix(raw))
}

func validatePayload(p recommendationPayload) (domain.Recommendation, error) {
	switch p.Action {
	case domain.ActionRestock, domain.ActionTransfer, domain.ActionNone:
	default:
		return domain.Recommendation{}, domain.NewError(domain.KindSchemaViolation,
			"action must be restock, transfer or none, got %q", p.Action)
	}

	if p.Quantity == nil {
		return domain.Recommendation{}, domain.NewError(domain.KindSchemaViolation, "quantity is missing")
	}
	if *p.Quantity < 0 || *p.Quantity != math.Trunc(*p.Quantity) {
		return domain.Recommendation{}, domain.NewError(domain.KindSchemaViolation,
			"quantity must be a non-negative integer, got %g", *p.Quantity)
	}

	if p.Confidence == nil {
		return domain.Recommendation{}, domain.NewError(domain.KindSchemaViolation, "confidence is missing")
	}
	if *p.Confidence < 0 || *p.Confidence > 1 {
		return domain.Recommendation{}, domain.NewError(domain.KindSchemaViolation,
			"confidence must be in [0, 1], got %g", *p.Confidence)
	}

	if strings.TrimSpace(p.Reasoning) == "" {
		return domain.Recommendation{}, domain.NewError(domain.KindSchemaViolation, "reasoning must be non-empty")
	}

	return domain.Recommendation{
		Action:     p.Action,
		Quantity:   int(*p.Quantity),
		Confidence: *p.Confidence,
		Rationale:  strings.TrimSpace(p.Reasoning),
	}, nil
}

func stripFences(s string) string {
	return fencePattern.ReplaceAllString(strings.TrimSpace(s), "")
}

// extractJSONObject pulls the outermost {...} span, tolerating prose before
// and after the object.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

func normalizeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

func stripTrailingCommas(s string) string {
	return trailingCommaPattern.ReplaceAllString(s, "$1")
}

func prefix(s string) string {
	if len(s) > rawPrefixLen {
		return s[:rawPrefixLen]
	}
	return s
}
