package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"shipment-cost/core/types"
)

// CSVFormatter renders the summary report: totals, the provider
// breakdown and the unresolved list, as consecutive CSV sections
type CSVFormatter struct{}

// Format implements Formatter
func (f *CSVFormatter) Format() Format { return FormatCSV }

// Render implements Formatter
func (f *CSVFormatter) Render(w io.Writer, rep *types.MonthlyReport) error {
	cw := csv.NewWriter(w)
	for _, rec := range summaryRows(rep) {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func summaryRows(rep *types.MonthlyReport) [][]string {
	rows := [][]string{
		{"period", rep.Period.String()},
		{"currency", rep.Currency.String()},
		{"run_id", rep.Metadata.RunID},
		{},
		{"total", "amount"},
		{"sales", money(rep.Totals.Sales)},
		{"goods_cost", money(rep.Totals.GoodsCost)},
		{"logistics", money(rep.Totals.Logistics)},
		{},
		providerHeader,
	}
	rows = append(rows, providerRows(rep)...)
	rows = append(rows, []string{}, unresolvedHeader)
	rows = append(rows, unresolvedRows(rep)...)
	return rows
}

var providerHeader = []string{"provider", "shipments", "boxes", "rate", "cost"}

func providerRows(rep *types.MonthlyReport) [][]string {
	return lo.Map(rep.Providers, func(pb types.ProviderBreakdown, _ int) []string {
		return []string{pb.Provider, fmt.Sprintf("%d", pb.Shipments), pb.Units.String(), money(pb.Rate), money(pb.Cost)}
	})
}

var unresolvedHeader = []string{"row", "record_id", "product", "declared_provider", "best_guess_provider", "provider_state", "reasons"}

func unresolvedRows(rep *types.MonthlyReport) [][]string {
	return lo.Map(rep.Unresolved, func(u types.UnresolvedItem, _ int) []string {
		return []string{
			fmt.Sprintf("%d", u.Row), u.RecordID, u.ProductText, u.ProviderText,
			u.BestGuessProvider, string(u.ProviderState), reasons(u.Reasons),
		}
	})
}

// DetailsFormatter renders one CSV row per in-period shipment followed by
// a totals footer
type DetailsFormatter struct{}

// Format implements Formatter
func (f *DetailsFormatter) Format() Format { return FormatDetails }

// Render implements Formatter
func (f *DetailsFormatter) Render(w io.Writer, rep *types.MonthlyReport) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(detailRows(rep)); err != nil {
		return err
	}
	return cw.Error()
}

var detailHeader = []string{
	"row", "record_id", "date", "product", "quantity", "sales",
	"unit_cost", "cost_method", "goods_cost",
	"declared_provider", "provider", "provider_method", "provider_state",
	"boxes", "box_rule", "rate", "logistics_cost", "goods_formula", "logistics_formula",
}

func detailRows(rep *types.MonthlyReport) [][]string {
	rows := [][]string{detailHeader}
	var qty decimal.Decimal
	for _, r := range rep.Results {
		qty = qty.Add(r.Quantity)
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Row),
			r.RecordID,
			r.Date.Format("2006-01-02"),
			r.ProductName,
			r.Quantity.String(),
			optional(r.Sales, r.SalesResolved),
			optional(r.UnitCost, r.CostResolved()),
			string(r.CostMethod),
			optional(r.GoodsCost, r.CostResolved()),
			r.ProviderText,
			r.Provider,
			string(r.ProviderMethod),
			string(r.ProviderState),
			r.Units.String(),
			r.UnitRule,
			optional(r.Rate, r.LogisticsResolved()),
			optional(r.LogisticsCost, r.LogisticsResolved()),
			r.GoodsLineage.Formula,
			r.LogisticsLineage.Formula,
		})
	}

	footer := make([]string, len(detailHeader))
	footer[0] = "TOTAL"
	footer[4] = qty.String()
	footer[5] = money(rep.Totals.Sales)
	footer[8] = money(rep.Totals.GoodsCost)
	footer[16] = money(rep.Totals.Logistics)
	return append(rows, footer)
}
