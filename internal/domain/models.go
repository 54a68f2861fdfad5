package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Data source mode for an inventory query.
const (
	ModeMock     = "mock"
	ModeRealtime = "realtime"
)

// Recommended actions a reasoning backend may return.
const (
	ActionRestock  = "restock"
	ActionTransfer = "transfer"
	ActionNone     = "none"
)

// Decision statuses.
const (
	StatusExecuted      = "executed"
	StatusPendingReview = "pending_review"
	StatusNoAction      = "no_action"
)

// Order types.
const (
	OrderTypePurchase = "purchase_order"
	OrderTypeTransfer = "transfer"
)

// InventoryQuery is the inbound request for one decision. In mock mode only
// ProductID is required; realtime mode carries the full dataset inline.
type InventoryQuery struct {
	ProductID     string    `json:"product_id"`
	Mode          string    `json:"mode"`
	CurrentStock  *int      `json:"current_stock,omitempty"`
	DemandHistory []float64 `json:"demand_history,omitempty"`
	LeadTimeDays  *int      `json:"lead_time_days,omitempty"`
	ServiceLevel  *float64  `json:"service_level,omitempty"`
	UnitPrice     *float64  `json:"unit_price,omitempty"`
}

// InventoryDataset is the resolved, validated input to the calculation stage.
// Immutable once produced by the data provider.
type InventoryDataset struct {
	ProductID     string    `json:"product_id"`
	CurrentStock  int       `json:"current_stock"`
	DemandHistory []float64 `json:"demand_history"`
	LeadTimeDays  int       `json:"lead_time_days"`
	ServiceLevel  float64   `json:"service_level"`
	UnitPrice     float64   `json:"unit_price"`
}

// DemandStatistics are derived from the demand history. StdDev uses the
// sample convention (n-1 divisor).
type DemandStatistics struct {
	MeanDemand float64 `json:"mean_demand"`
	StdDev     float64 `json:"std_dev"`
}

// SafetyThresholds holds the computed replenishment thresholds.
// Invariant: ReorderPoint >= SafetyStock >= 0.
type SafetyThresholds struct {
	SafetyStock  float64 `json:"safety_stock"`
	ReorderPoint float64 `json:"reorder_point"`
}

// TriggerResult is the outcome of the reorder-point predicate.
type TriggerResult struct {
	NeedsAction bool    `json:"needs_action"`
	Shortage    float64 `json:"shortage"`
}

// ReasoningContext aggregates everything the prompt builder needs. It is
// passed opaquely into prompt construction and never mutated afterwards.
type ReasoningContext struct {
	ProductID     string
	CurrentStock  int
	SafetyStock   float64
	ReorderPoint  float64
	Shortage      float64
	MeanDemand    float64
	StdDev        float64
	LeadTimeDays  int
	DemandHistory []float64
	UnitPrice     float64
}

// Recommendation is the validated output of one reasoning call.
type Recommendation struct {
	Action       string  `json:"action"`
	Quantity     int     `json:"quantity"`
	Confidence   float64 `json:"confidence"`
	Rationale    string  `json:"rationale"`
	ProviderUsed string  `json:"provider_used"`
}

// OrderItem is a single order line.
type OrderItem struct {
	MaterialID  string `json:"material_id"`
	Quantity    int    `json:"quantity"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// OrderAction is the generated purchase order or transfer payload. Ownership
// ends at return to the caller; persistence is a collaborator concern.
type OrderAction struct {
	OrderNumber   string          `json:"order_number"`
	Type          string          `json:"type"`
	Items         []OrderItem     `json:"items"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DecisionOutcome is the full result returned to the caller.
type DecisionOutcome struct {
	TraceID             string       `json:"trace_id"`
	Status              string       `json:"status"`
	SafetyStock         float64      `json:"safety_stock"`
	ReorderPoint        float64      `json:"reorder_point"`
	CurrentStock        int          `json:"current_stock"`
	Shortage            float64      `json:"shortage"`
	RecommendedAction   string       `json:"recommended_action"`
	RecommendedQuantity int          `json:"recommended_quantity"`
	ConfidenceScore     float64      `json:"confidence_score"`
	Order               *OrderAction `json:"order,omitempty"`
	Reasoning           string       `json:"reasoning"`
}

// ThresholdPreview is the deterministic "would this trigger" view, computed
// without invoking any reasoning backend.
type ThresholdPreview struct {
	ProductID    string           `json:"product_id"`
	Mode         string           `json:"mode"`
	Statistics   DemandStatistics `json:"statistics"`
	Thresholds   SafetyThresholds `json:"thresholds"`
	CurrentStock int              `json:"current_stock"`
	WouldTrigger bool             `json:"would_trigger"`
	Shortage     float64          `json:"shortage"`
}
