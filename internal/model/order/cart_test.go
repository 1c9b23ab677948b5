package order

import (
	"errors"
	"testing"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
)

var (
	cafe    = catalog.Entry{Name: "Café", Price: 3500}
	frappe  = catalog.Entry{Name: "Frappé de Café", Price: 6500}
	chilaqs = catalog.Entry{Name: "Chilaquiles Verdes", Price: 9500}
)

func TestCartAddAggregatesSameProduct(t *testing.T) {
	var cart Cart
	if err := cart.Add(cafe, 2); err != nil {
		t.Fatalf("Add err: %v", err)
	}
	if err := cart.Add(cafe, 1); err != nil {
		t.Fatalf("Add err: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 3 || cart.Lines[0].LineTotal != 10500 {
		t.Fatalf("unexpected line %+v", cart.Lines[0])
	}
}

func TestCartRejectsNonPositiveQuantity(t *testing.T) {
	var cart Cart
	for _, qty := range []int{0, -1} {
		if err := cart.Add(cafe, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("Add(%d) expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
	if !cart.IsEmpty() {
		t.Fatal("cart must stay empty")
	}
}

func TestCartMergeKeepsExistingLines(t *testing.T) {
	var pending Cart
	_ = pending.Add(cafe, 1)
	_ = pending.Add(chilaqs, 1)

	var next Cart
	_ = next.Add(frappe, 2)
	_ = next.Add(cafe, 1)

	pending.Merge(next)

	if len(pending.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(pending.Lines))
	}
	if pending.Lines[0].Quantity != 2 {
		t.Fatalf("expected café quantity 2, got %d", pending.Lines[0].Quantity)
	}
	if pending.Items() != 5 {
		t.Fatalf("expected 5 items, got %d", pending.Items())
	}
}

func TestCartSubtotalMatchesLines(t *testing.T) {
	var cart Cart
	_ = cart.Add(cafe, 2)
	_ = cart.Add(frappe, 1)

	var sum catalog.Money
	for _, line := range cart.Lines {
		sum += line.LineTotal
	}
	if cart.Subtotal() != sum || sum != 13500 {
		t.Fatalf("subtotal %d does not match line sum %d", cart.Subtotal(), sum)
	}
}

func TestCartSummary(t *testing.T) {
	var cart Cart
	_ = cart.Add(frappe, 1)

	want := "• 1 x Frappé de Café — $65.00\nSubtotal: $65.00"
	if got := cart.Summary(); got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
	if (Cart{}).Summary() != "" {
		t.Fatal("empty cart summary must be empty")
	}
}

func TestCartCapsLineQuantity(t *testing.T) {
	var cart Cart
	_ = cart.Add(cafe, 1_000_000)
	var next Cart
	_ = next.Add(cafe, 50)
	cart.Merge(next)

	if cart.Lines[0].Quantity != MaxQuantity {
		t.Fatalf("expected quantity capped at %d, got %d", MaxQuantity, cart.Lines[0].Quantity)
	}
	if cart.Subtotal() != cafe.Price.Times(MaxQuantity) {
		t.Fatalf("unexpected subtotal %s", cart.Subtotal())
	}
}
