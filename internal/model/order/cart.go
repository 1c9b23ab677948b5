package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
)

// ErrInvalidQuantity is returned when a line would carry a non-positive quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// MaxQuantity caps the units of a single line.
const MaxQuantity = 99

// CartLine is a product with its quantity and totals.
type CartLine struct {
	Product   catalog.Entry `json:"product"`
	Quantity  int           `json:"quantity"`
	UnitPrice catalog.Money `json:"unitPrice"`
	LineTotal catalog.Money `json:"lineTotal"`
}

// Cart is an ordered list of lines. Lines are keyed by the product's
// canonical name, so the same product never appears twice.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Add appends qty units of entry, summing into an existing line for the
// same product. A line never holds more than MaxQuantity units.
func (c *Cart) Add(entry catalog.Entry, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: %d x %s", ErrInvalidQuantity, qty, entry.Name)
	}
	qty = min(qty, MaxQuantity)
	for i := range c.Lines {
		if c.Lines[i].Product.Name == entry.Name {
			c.Lines[i].Quantity = min(c.Lines[i].Quantity+qty, MaxQuantity)
			c.Lines[i].LineTotal = c.Lines[i].UnitPrice.Times(c.Lines[i].Quantity)
			return nil
		}
	}
	c.Lines = append(c.Lines, CartLine{
		Product:   entry,
		Quantity:  qty,
		UnitPrice: entry.Price,
		LineTotal: entry.Price.Times(qty),
	})
	return nil
}

// Merge adds every line of other into c. Existing lines are never dropped.
func (c *Cart) Merge(other Cart) {
	for _, line := range other.Lines {
		if line.Quantity <= 0 {
			continue
		}
		_ = c.Add(line.Product, line.Quantity)
	}
}

// Subtotal is the sum of line totals.
func (c Cart) Subtotal() catalog.Money {
	var total catalog.Money
	for _, line := range c.Lines {
		total += line.LineTotal
	}
	return total
}

// Items returns the total number of units in the cart.
func (c Cart) Items() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	return Cart{Lines: append([]CartLine(nil), c.Lines...)}
}

// Summary renders one line per product followed by the subtotal.
func (c Cart) Summary() string {
	if c.IsEmpty() {
		return ""
	}
	var b strings.Builder
	for _, line := range c.Lines {
		fmt.Fprintf(&b, "• %d x %s — %s\n", line.Quantity, line.Product.Name, line.LineTotal)
	}
	fmt.Fprintf(&b, "Subtotal: %s", c.Subtotal())
	return b.String()
}
