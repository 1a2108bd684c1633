// Package types - Monthly report types
package types

import "github.com/shopspring/decimal"

// ReasonCode classifies a warning
type ReasonCode string

const (
	ReasonBadDate            ReasonCode = "bad-date"
	ReasonBadQuantity        ReasonCode = "bad-quantity"
	ReasonBadCostFormat      ReasonCode = "bad-cost-format"
	ReasonBadAmount          ReasonCode = "bad-amount"
	ReasonUnresolvedProvider ReasonCode = "unresolved-provider"
	ReasonUnresolvedCost     ReasonCode = "unresolved-cost"
)

// Warning is one entry of a run's structured warning stream
type Warning struct {
	Reason ReasonCode `json:"reason"`

	// Input names the table the row came from ("master" or "ledger")
	Input    string `json:"input"`
	Row      int    `json:"row"`
	RecordID string `json:"record_id,omitempty"`
	Message  string `json:"message"`
}

// ProviderBreakdown is the per-carrier roll-up of a period
type ProviderBreakdown struct {
	Provider  string          `json:"provider"`
	Shipments int             `json:"shipments"`
	Units     decimal.Decimal `json:"units"`
	Rate      decimal.Decimal `json:"rate"`
	Cost      decimal.Decimal `json:"cost"`
}

// UnresolvedItem is a shipment left for manual completion
type UnresolvedItem struct {
	Row      int    `json:"row"`
	RecordID string `json:"record_id"`

	ProductText  string `json:"product_text"`
	ProviderText string `json:"provider_text"`

	// BestGuessProvider is whatever the resolver found, or "unknown"
	BestGuessProvider string        `json:"best_guess_provider"`
	ProviderState     ProviderState `json:"provider_state"`

	Reasons []ReasonCode `json:"reasons"`
}

// RunStats counts ledger rows by outcome
type RunStats struct {
	RowsRead     int `json:"rows_read"`
	InPeriod     int `json:"in_period"`
	OutOfPeriod  int `json:"out_of_period"`
	SkippedDates int `json:"skipped_dates"`
	Unresolved   int `json:"unresolved"`
}

// ReportMetadata identifies the inputs a report was computed from
type ReportMetadata struct {
	// RunID is derived from the input fingerprint, so identical inputs
	// produce identical IDs
	RunID            string `json:"run_id"`
	InputFingerprint string `json:"input_fingerprint"`
	MasterEntries    int    `json:"master_entries"`
}

// MonthlyReport is the aggregate of one period. It is recomputed from
// scratch on every run.
type MonthlyReport struct {
	Period   Period   `json:"period"`
	Currency Currency `json:"currency"`
	Totals   Totals   `json:"totals"`

	// Providers is sorted by canonical provider name
	Providers []ProviderBreakdown `json:"providers"`

	// Unresolved is in ledger order, one entry per shipment
	Unresolved []UnresolvedItem `json:"unresolved"`

	Results  []AttributionResult `json:"results,omitempty"`
	Warnings []Warning           `json:"warnings,omitempty"`
	Stats    RunStats            `json:"stats"`
	Metadata ReportMetadata      `json:"metadata"`
}
