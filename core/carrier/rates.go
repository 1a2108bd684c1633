// Package carrier resolves the logistics carrier of a shipment and its
// per-box rate.
package carrier

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"shipment-cost/core/normalize"
)

// Rate is the per-box cost of one canonical carrier. Aliases are other
// spellings of the same carrier found in ledger data.
type Rate struct {
	Provider string
	PerBox   decimal.Decimal
	Aliases  []string
}

// RateTable maps carrier names and aliases to canonical carriers and their
// per-box cost. Names are matched by normalized key.
type RateTable struct {
	canonical map[string]string
	rates     map[string]decimal.Decimal
}

// NewRateTable builds a rate table. A key claimed by two different
// carriers, an empty name or a negative rate is an error.
func NewRateTable(rates []Rate) (*RateTable, error) {
	t := &RateTable{
		canonical: make(map[string]string),
		rates:     make(map[string]decimal.Decimal, len(rates)),
	}
	for _, r := range rates {
		if normalize.Normalize(r.Provider) == "" {
			return nil, fmt.Errorf("carrier rate with empty provider name")
		}
		if r.PerBox.IsNegative() {
			return nil, fmt.Errorf("carrier %q: negative per-box rate %s", r.Provider, r.PerBox)
		}
		if _, dup := t.rates[r.Provider]; dup {
			return nil, fmt.Errorf("carrier %q defined twice", r.Provider)
		}
		t.rates[r.Provider] = r.PerBox

		for _, name := range append([]string{r.Provider}, r.Aliases...) {
			key := normalize.Normalize(name)
			if key == "" {
				return nil, fmt.Errorf("carrier %q: empty alias", r.Provider)
			}
			if owner, ok := t.canonical[key]; ok && owner != r.Provider {
				return nil, fmt.Errorf("alias %q claimed by both %q and %q", name, owner, r.Provider)
			}
			t.canonical[key] = r.Provider
		}
	}
	return t, nil
}

// Canonical maps a carrier name or alias to its canonical name
func (t *RateTable) Canonical(name string) (string, bool) {
	key := normalize.Normalize(name)
	if key == "" {
		return "", false
	}
	c, ok := t.canonical[key]
	return c, ok
}

// Rate returns the canonical name and per-box cost of a carrier
func (t *RateTable) Rate(name string) (string, decimal.Decimal, bool) {
	c, ok := t.Canonical(name)
	if !ok {
		return "", decimal.Zero, false
	}
	return c, t.rates[c], true
}

// Providers returns the canonical carrier names in sorted order
func (t *RateTable) Providers() []string {
	names := make([]string, 0, len(t.rates))
	for name := range t.rates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns every alias of a canonical carrier, sorted by key
func (t *RateTable) Aliases(provider string) []string {
	var keys []string
	for key, owner := range t.canonical {
		if owner == provider && key != normalize.Normalize(provider) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
