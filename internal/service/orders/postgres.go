package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
)

const ordersSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id          UUID        PRIMARY KEY,
	branch_id   TEXT        NOT NULL,
	sender_id   TEXT        NOT NULL,
	cart        JSONB       NOT NULL,
	total_cents BIGINT      NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresSink writes finalized orders to the orders table.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink wraps an open database handle.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Migrate creates the orders table when missing.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ordersSchema); err != nil {
		return fmt.Errorf("migrate orders: %w", err)
	}
	return nil
}

// FinalizeOrder inserts the cart and returns the generated id.
func (s *PostgresSink) FinalizeOrder(ctx context.Context, branchID, senderID string, cart order.Cart) (string, error) {
	if cart.IsEmpty() {
		return "", ErrEmptyCart
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, branch_id, sender_id, cart, total_cents)
		VALUES ($1, $2, $3, $4, $5)
	`, id, branchID, senderID, raw, int64(cart.Subtotal()))
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}
