// Package orders hands confirmed carts to whatever records and fulfils them.
package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
)

// ErrEmptyCart is returned when finalizing a cart without lines.
var ErrEmptyCart = errors.New("cannot finalize an empty cart")

// Sink receives confirmed orders.
type Sink interface {
	FinalizeOrder(ctx context.Context, branchID, senderID string, cart order.Cart) (string, error)
}

// Order is a finalized cart.
type Order struct {
	ID        string     `json:"id"`
	BranchID  string     `json:"branchId"`
	SenderID  string     `json:"senderId"`
	Cart      order.Cart `json:"cart"`
	Total     string     `json:"total"`
	CreatedAt time.Time  `json:"createdAt"`
}

// MemorySink keeps finalized orders in memory.
type MemorySink struct {
	mu     sync.RWMutex
	orders []Order
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// FinalizeOrder stores a copy of cart and returns its new id.
func (s *MemorySink) FinalizeOrder(_ context.Context, branchID, senderID string, cart order.Cart) (string, error) {
	if cart.IsEmpty() {
		return "", ErrEmptyCart
	}

	o := Order{
		ID:        uuid.NewString(),
		BranchID:  branchID,
		SenderID:  senderID,
		Cart:      cart.Clone(),
		Total:     cart.Subtotal().String(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()
	return o.ID, nil
}

// List returns the finalized orders of a branch, oldest first. An empty
// branchID lists every order.
func (s *MemorySink) List(branchID string) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		if branchID == "" || o.BranchID == branchID {
			out = append(out, o)
		}
	}
	return out
}
