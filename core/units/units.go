// Package units computes the number of shippable boxes for a shipment.
package units

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shipment-cost/core/normalize"
)

// ErrEmptyQuantity is returned by ParseQuantity for a missing quantity
var ErrEmptyQuantity = errors.New("empty quantity")

// DefaultRuleTag is the tag of the one-box-per-unit rule
const DefaultRuleTag = "default"

// Rule is a packaging rule for a product family. Products whose name
// contains Marker (case-insensitive) ship PerBox units per box.
type Rule struct {
	Tag    string
	Marker string
	PerBox int64
}

// Applied describes the rule used for one shipment
type Applied struct {
	Tag     string
	Formula string
}

// Calculator applies packaging rules in order; the first rule whose marker
// matches wins and unmatched products fall back to one box per unit.
type Calculator struct {
	rules []Rule
}

// NewCalculator creates a calculator. Rules need a tag, a marker and a
// positive units-per-box figure.
func NewCalculator(rules []Rule) (*Calculator, error) {
	for _, r := range rules {
		if r.Tag == "" || normalize.Normalize(r.Marker) == "" {
			return nil, fmt.Errorf("packaging rule needs a tag and a marker: %+v", r)
		}
		if r.PerBox < 1 {
			return nil, fmt.Errorf("packaging rule %q: per_box must be at least 1", r.Tag)
		}
	}
	out := make([]Rule, len(rules))
	copy(out, rules)
	return &Calculator{rules: out}, nil
}

// Rules returns the packaging rules in evaluation order
func (c *Calculator) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Compute returns the box count for a quantity of a product
func (c *Calculator) Compute(productName string, quantity decimal.Decimal) (decimal.Decimal, Applied) {
	for _, r := range c.rules {
		if !normalize.Contains(productName, r.Marker) {
			continue
		}
		boxes := quantity.Div(decimal.NewFromInt(r.PerBox)).Ceil()
		return boxes, Applied{
			Tag:     r.Tag,
			Formula: fmt.Sprintf("ceil(%s/%d)", quantity, r.PerBox),
		}
	}
	return quantity, Applied{Tag: DefaultRuleTag, Formula: "quantity"}
}

// ParseQuantity parses comma-grouped quantity text. Empty text yields zero
// and ErrEmptyQuantity; negative quantities are rejected.
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, ErrEmptyQuantity
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if q.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative quantity %s", q)
	}
	return q, nil
}
