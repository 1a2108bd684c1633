package tabular

import (
	"strings"

	"shipment-cost/core/types"
	"shipment-cost/internal/errors"
)

// LedgerColumns names the shipment ledger headers
type LedgerColumns struct {
	ID       string `json:"id" mapstructure:"id"`
	Date     string `json:"date" mapstructure:"date"`
	Product  string `json:"product" mapstructure:"product"`
	Quantity string `json:"quantity" mapstructure:"quantity"`
	Sales    string `json:"sales" mapstructure:"sales"`
	Carrier  string `json:"carrier" mapstructure:"carrier"`
	Remarks  string `json:"remarks" mapstructure:"remarks"`
	Tracking string `json:"tracking" mapstructure:"tracking"`
	Method   string `json:"method" mapstructure:"method"`
}

// MasterColumns names the master reference headers. Names lists one
// column per product naming system.
type MasterColumns struct {
	Names []string `json:"names" mapstructure:"names"`
	Cost  string   `json:"cost" mapstructure:"cost"`
}

// DefaultLedgerColumns are the CRM dashboard export headers
func DefaultLedgerColumns() LedgerColumns {
	return LedgerColumns{
		ID:       "Unique ID",
		Date:     "出荷日",
		Product:  "商品名",
		Quantity: "数量",
		Sales:    "合計金額",
		Carrier:  "物流業者",
		Remarks:  "備考",
		Tracking: "追跡URL",
		Method:   "物流方法",
	}
}

// DefaultMasterColumns are the product master headers
func DefaultMasterColumns() MasterColumns {
	return MasterColumns{
		Names: []string{"品名", "产品名称"},
		Cost:  "包装単位\n'@薬価\n（JPY）",
	}
}

// ShipmentRecords maps ledger rows to records. The date, product and
// quantity columns are required; other columns read as empty when absent.
// Blank rows are skipped.
func ShipmentRecords(t *Table, cols LedgerColumns) ([]types.ShipmentRecord, error) {
	idx := map[string]int{}
	for _, c := range []struct {
		key, name string
		required  bool
	}{
		{"id", cols.ID, false},
		{"date", cols.Date, true},
		{"product", cols.Product, true},
		{"quantity", cols.Quantity, true},
		{"sales", cols.Sales, false},
		{"carrier", cols.Carrier, false},
		{"remarks", cols.Remarks, false},
		{"tracking", cols.Tracking, false},
		{"method", cols.Method, false},
	} {
		i, ok := t.Column(c.name)
		if !ok && c.required {
			return nil, missingColumn(t, c.name)
		}
		idx[c.key] = i
	}

	records := make([]types.ShipmentRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		if blank(row) {
			continue
		}
		records = append(records, types.ShipmentRecord{
			Row:         RowNumber(i),
			ID:          strings.TrimSpace(cell(row, idx["id"])),
			Date:        cell(row, idx["date"]),
			ProductName: cell(row, idx["product"]),
			Quantity:    cell(row, idx["quantity"]),
			SalesAmount: cell(row, idx["sales"]),
			Carrier:     cell(row, idx["carrier"]),
			Remarks:     cell(row, idx["remarks"]),
			Tracking:    cell(row, idx["tracking"]),
			Method:      cell(row, idx["method"]),
		})
	}
	return records, nil
}

// MasterRows maps master rows. The cost column and at least one name
// column are required.
func MasterRows(t *Table, cols MasterColumns) ([]types.MasterRow, error) {
	costIdx, ok := t.Column(cols.Cost)
	if !ok {
		return nil, missingColumn(t, cols.Cost)
	}
	var nameIdx []int
	for _, name := range cols.Names {
		if i, ok := t.Column(name); ok {
			nameIdx = append(nameIdx, i)
		}
	}
	if len(nameIdx) == 0 {
		return nil, missingColumn(t, strings.Join(cols.Names, " / "))
	}

	rows := make([]types.MasterRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		if blank(row) {
			continue
		}
		names := make([]string, len(nameIdx))
		for j, ni := range nameIdx {
			names[j] = cell(row, ni)
		}
		rows = append(rows, types.MasterRow{
			Row:   RowNumber(i),
			Names: names,
			Cost:  cell(row, costIdx),
		})
	}
	return rows, nil
}

func missingColumn(t *Table, name string) error {
	return errors.Input(t.Name, t.Path, errors.NotFound("column", name))
}
