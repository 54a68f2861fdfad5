package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HemantSudarshan/restock-agent/internal/domain"
	"github.com/HemantSudarshan/restock-agent/internal/repository"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) SaveDecision(ctx context.Context, productID string, outcome *domain.DecisionOutcome) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if outcome.Order != nil {
			query := `
				INSERT INTO orders (
					order_number, trace_id, product_id, order_type,
					quantity, cost, status, confidence, reasoning, created_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`
			quantity := 0
			if len(outcome.Order.Items) > 0 {
				quantity = outcome.Order.Items[0].Quantity
			}
			if _, err := tx.ExecContext(ctx, query,
				outcome.Order.OrderNumber,
				outcome.TraceID,
				productID,
				outcome.Order.Type,
				quantity,
				outcome.Order.EstimatedCost.String(),
				outcome.Status,
				outcome.ConfidenceScore,
				outcome.Reasoning,
				outcome.Order.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert order: %w", err)
			}
		}

		audit := `
			INSERT INTO audit_events (trace_id, product_id, status, shortage, recommended_action, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, audit,
			outcome.TraceID,
			productID,
			outcome.Status,
			outcome.Shortage,
			outcome.RecommendedAction,
			time.Now(),
		); err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
		return nil
	})
}

func (r *orderRepository) ListOrders(ctx context.Context, limit, offset int) ([]repository.OrderRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT order_number, trace_id, product_id, order_type,
		       quantity, cost, status, confidence, reasoning, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	var records []repository.OrderRecord
	if err := r.db.SelectContext(ctx, &records, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return records, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderNumber string) (*repository.OrderRecord, error) {
	query := `
		SELECT order_number, trace_id, product_id, order_type,
		       quantity, cost, status, confidence, reasoning, created_at
		FROM orders
		WHERE order_number = $1
	`
	var record repository.OrderRecord
	if err := r.db.GetContext(ctx, &record, query, orderNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindNotFound, "order %q not found", orderNumber)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &record, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderNumber, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE order_number = $2`, status, orderNumber)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.NewError(domain.KindNotFound, "order %q not found", orderNumber)
	}
	return nil
}
