package decision

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
)

const orderTimestampFormat = "20060102150405"

// GeneratorConfig names the warehouses rendered into transfer orders.
type GeneratorConfig struct {
	HomeLocation      string
	AlternateLocation string
}

// GenerateOrder turns a recommendation with action != none into an order
// payload. Restocks become purchase orders costed at quantity x unit price;
// transfers pull from the configured alternate location at zero cost.
//
// The order number is sortable: type prefix, timestamp, product id. Two
// orders for the same product within the same second collide; that
// granularity limitation is accepted here.
func GenerateOrder(productID string, rec domain.Recommendation, unitPrice float64, cfg GeneratorConfig, now time.Time) (*domain.OrderAction, error) {
	stamp := now.Format(orderTimestampFormat)

	switch rec.Action {
	case domain.ActionRestock:
		cost := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(rec.Quantity)))
		return &domain.OrderAction{
			OrderNumber: fmt.Sprintf("PO-%s-%s", stamp, productID),
			Type:        domain.OrderTypePurchase,
			Items: []domain.OrderItem{{
				MaterialID: productID,
				Quantity:   rec.Quantity,
			}},
			EstimatedCost: cost,
			CreatedAt:     now,
		}, nil
	case domain.ActionTransfer:
		return &domain.OrderAction{
			OrderNumber: fmt.Sprintf("TR-%s-%s", stamp, productID),
			Type:        domain.OrderTypeTransfer,
			Items: []domain.OrderItem{{
				MaterialID:  productID,
				Quantity:    rec.Quantity,
				Source:      cfg.AlternateLocation,
				Destination: cfg.HomeLocation,
			}},
			EstimatedCost: decimal.Zero,
			CreatedAt:     now,
		}, nil
	default:
		return nil, domain.NewError(domain.KindInvalidInput,
			"cannot generate an order for action %q", rec.Action)
	}
}
