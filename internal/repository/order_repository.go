package repository

import (
	"context"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

// OrderRecord is the persisted view of a generated order and the decision
// around it.
type OrderRecord struct {
	OrderNumber string  `db:"order_number" json:"order_number"`
	TraceID     string  `db:"trace_id" json:"trace_id"`
	ProductID   string  `db:"product_id" json:"product_id"`
	OrderType   string  `db:"order_type" json:"order_type"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Cost        string  `db:"cost" json:"cost"`
	Status      string  `db:"status" json:"status"`
	Confidence  float64 `db:"confidence" json:"confidence"`
	Reasoning   string  `db:"reasoning" json:"reasoning"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
}

// OrderRepository persists decision outcomes for audit. The decision core
// never touches it; handlers call it after a decision returns.
type OrderRepository interface {
	SaveDecision(ctx context.Context, productID string, outcome *domain.DecisionOutcome) error
	ListOrders(ctx context.Context, limit, offset int) ([]OrderRecord, error)
	GetOrder(ctx context.Context, orderNumber string) (*OrderRecord, error)
	UpdateOrderStatus(ctx context.Context, orderNumber, status string) error
}
