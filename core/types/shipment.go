// Package types - Shipment ledger types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentRecord is one row of the shipment ledger. All fields hold the
// raw source text; parsing happens in the pipeline.
type ShipmentRecord struct {
	// Row is the 1-based source line; the header is row 1
	Row int `json:"row"`

	ID          string `json:"id"`
	Date        string `json:"date"`
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	SalesAmount string `json:"sales_amount"`

	// Carrier is the declared logistics carrier, possibly empty or "-"
	Carrier string `json:"carrier"`

	Remarks  string `json:"remarks"`
	Tracking string `json:"tracking"`
	Method   string `json:"method"`
}

// MasterRow is one row of the master reference table
type MasterRow struct {
	Row int `json:"row"`

	// Names holds the product name in each naming system, in column order
	Names []string `json:"names"`

	// Cost is the raw unit cost text, possibly comma-grouped
	Cost string `json:"cost"`
}

// AttributionResult is the costing outcome for one in-period shipment
type AttributionResult struct {
	Row         int       `json:"row"`
	RecordID    string    `json:"record_id"`
	Date        time.Time `json:"date"`
	ProductName string    `json:"product_name"`

	Quantity decimal.Decimal `json:"quantity"`

	// Sales is the declared sales amount, taken verbatim
	Sales         decimal.Decimal `json:"sales"`
	SalesResolved bool            `json:"sales_resolved"`

	UnitCost   decimal.Decimal `json:"unit_cost"`
	CostMethod CostMethod      `json:"cost_method"`
	GoodsCost  decimal.Decimal `json:"goods_cost"`

	// ProviderText is the declared carrier as found in the ledger
	ProviderText   string         `json:"provider_text"`
	Provider       string         `json:"provider"`
	ProviderMethod ProviderMethod `json:"provider_method"`
	ProviderState  ProviderState  `json:"provider_state"`

	Units    decimal.Decimal `json:"units"`
	UnitRule string          `json:"unit_rule"`

	Rate          decimal.Decimal `json:"rate"`
	LogisticsCost decimal.Decimal `json:"logistics_cost"`

	GoodsLineage     CostLineage `json:"goods_lineage"`
	LogisticsLineage CostLineage `json:"logistics_lineage"`
}

// CostResolved reports whether a unit cost was found
func (r *AttributionResult) CostResolved() bool {
	return r.CostMethod != CostUnresolved
}

// LogisticsResolved reports whether the shipment has a costed carrier
func (r *AttributionResult) LogisticsResolved() bool {
	return r.ProviderState == ProviderCosted
}

// Unresolved reports whether the shipment needs manual remediation
func (r *AttributionResult) Unresolved() bool {
	return !r.CostResolved() || !r.LogisticsResolved()
}
