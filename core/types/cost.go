// Package types - Cost attribution types
package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code. Amounts are never converted; the
// currency only labels report output.
type Currency string

const (
	CurrencyJPY Currency = "JPY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// CostMethod records how a unit cost was resolved
type CostMethod string

const (
	// CostOverride means the unit cost came from the override table
	CostOverride CostMethod = "override"

	// CostMaster means the unit cost came from the master reference table
	CostMaster CostMethod = "master"

	// CostUnresolved means no unit cost could be found
	CostUnresolved CostMethod = "unresolved"
)

// ProviderMethod records how a logistics carrier was identified
type ProviderMethod string

const (
	ProviderExplicit         ProviderMethod = "explicit"
	ProviderInferredRemarks  ProviderMethod = "inferred:remarks"
	ProviderInferredTracking ProviderMethod = "inferred:tracking"
	ProviderInferredMethod   ProviderMethod = "inferred:method"
	ProviderUnresolved       ProviderMethod = "unresolved"
)

// Inferred builds the method tag for an inference signal
func Inferred(signal string) ProviderMethod {
	return ProviderMethod("inferred:" + signal)
}

// UnknownProvider is the provider reported when no rule identifies a carrier
const UnknownProvider = "unknown"

// ProviderState classifies the outcome of carrier resolution for costing
type ProviderState string

const (
	// ProviderCosted means a carrier was found and has a per-box rate
	ProviderCosted ProviderState = "costed"

	// ProviderUncosted means a carrier was found but has no rate entry
	ProviderUncosted ProviderState = "uncosted"

	// ProviderUnidentified means no rule identified a carrier
	ProviderUnidentified ProviderState = "unidentified"
)

// Period is a target accounting month
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// String returns the period as YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// CostLineage tracks how a figure was calculated
type CostLineage struct {
	// Formula describes how the cost was calculated
	Formula string `json:"formula"`

	// Assumptions lists assumptions made during calculation
	Assumptions []string `json:"assumptions,omitempty"`
}

// Totals are the grand totals of a period
type Totals struct {
	Sales     decimal.Decimal `json:"sales"`
	GoodsCost decimal.Decimal `json:"goods_cost"`
	Logistics decimal.Decimal `json:"logistics"`
}
