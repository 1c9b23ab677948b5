package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrCatalogUnavailable is returned when a branch catalog cannot be read.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Accessor is the read-only view over a branch catalog the engine consumes.
type Accessor interface {
	GetCatalog(ctx context.Context, branchID string) ([]Entry, error)
	GetMenuText(ctx context.Context, branchID string) (string, error)
}

// Entry is one orderable product of a branch.
type Entry struct {
	Name     string   `json:"name" yaml:"name"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Price    Money    `json:"price" yaml:"price"`
	Category string   `json:"category" yaml:"category"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Names returns the canonical name followed by every alias.
func (e Entry) Names() []string {
	names := make([]string, 0, len(e.Aliases)+1)
	names = append(names, e.Name)
	for _, alias := range e.Aliases {
		if strings.TrimSpace(alias) != "" {
			names = append(names, alias)
		}
	}
	return names
}

// Money is an amount in cents.
type Money int64

// ParseMoney reads a decimal amount such as "45.50" or "$45".
func ParseMoney(raw string) (Money, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, nil
	}
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid price %q: negative", raw)
	}
	return Money(math.Round(val * 100)), nil
}

// Times multiplies the amount by a quantity.
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

// String renders the amount as "$45.50", or "-$45.50" when negative.
func (m Money) String() string {
	if m < 0 {
		return "-$" + m.decimal()[1:]
	}
	return "$" + m.decimal()
}

// MarshalJSON writes the amount as a decimal number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.decimal()), nil
}

func (m Money) decimal() string {
	sign, cents := "", uint64(m)
	if m < 0 {
		sign, cents = "-", uint64(-(m + 1))+1
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// UnmarshalJSON accepts a decimal number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseMoney(node.Value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
