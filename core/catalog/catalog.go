// Package catalog - Product cost index
// Maps normalized product names from the master reference table to unit
// costs. A fixed override table is consulted before the master entries.
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shipment-cost/core/normalize"
	"shipment-cost/core/types"
)

// Index is the product cost index for one run. It is read-only once built.
type Index struct {
	entries   map[string]decimal.Decimal
	overrides map[string]decimal.Decimal
}

// ParseAmount parses comma-grouped numeric text such as "1,308" or "12.5".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return decimal.NewFromString(s)
}

// Build creates an index from master rows. Every non-empty name column of a
// row maps to the row's cost; when two rows share a key the later row wins.
// Rows with an empty cost are skipped silently, rows with an unparsable cost
// are skipped with a bad-cost-format warning.
func Build(rows []types.MasterRow, overrides map[string]decimal.Decimal) (*Index, []types.Warning) {
	idx := &Index{
		entries:   make(map[string]decimal.Decimal),
		overrides: make(map[string]decimal.Decimal, len(overrides)),
	}
	for name, cost := range overrides {
		if key := normalize.Normalize(name); key != "" {
			idx.overrides[key] = cost
		}
	}

	var warnings []types.Warning
	for _, row := range rows {
		if strings.TrimSpace(row.Cost) == "" {
			continue
		}
		cost, err := ParseAmount(row.Cost)
		if err != nil {
			warnings = append(warnings, types.Warning{
				Reason:  types.ReasonBadCostFormat,
				Input:   "master",
				Row:     row.Row,
				Message: fmt.Sprintf("cannot parse cost %q for %s", row.Cost, strings.Join(row.Names, " / ")),
			})
			continue
		}
		for _, name := range row.Names {
			if key := normalize.Normalize(name); key != "" {
				idx.entries[key] = cost
			}
		}
	}
	return idx, warnings
}

// Lookup resolves the unit cost of a product. Overrides take precedence
// over master entries.
func (i *Index) Lookup(productName string) (decimal.Decimal, types.CostMethod, bool) {
	key := normalize.Normalize(productName)
	if key == "" {
		return decimal.Zero, types.CostUnresolved, false
	}
	if cost, ok := i.overrides[key]; ok {
		return cost, types.CostOverride, true
	}
	if cost, ok := i.entries[key]; ok {
		return cost, types.CostMaster, true
	}
	return decimal.Zero, types.CostUnresolved, false
}

// Has reports whether a product resolves through either table
func (i *Index) Has(productName string) bool {
	_, _, ok := i.Lookup(productName)
	return ok
}

// Len returns the number of master keys
func (i *Index) Len() int {
	return len(i.entries)
}
