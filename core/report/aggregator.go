// Package report aggregates attribution results into a monthly report.
package report

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"shipment-cost/core/determinism"
	"shipment-cost/core/types"
)

// Aggregator accumulates the results of one run. It is not safe for
// concurrent use; each run owns its own aggregator.
type Aggregator struct {
	report    types.MonthlyReport
	providers map[string]*types.ProviderBreakdown
}

// NewAggregator creates an empty aggregator for a period
func NewAggregator(p types.Period, currency types.Currency) *Aggregator {
	return &Aggregator{
		report: types.MonthlyReport{
			Period:   p,
			Currency: currency,
			Totals: types.Totals{
				Sales:     decimal.Zero,
				GoodsCost: decimal.Zero,
				Logistics: decimal.Zero,
			},
		},
		providers: make(map[string]*types.ProviderBreakdown),
	}
}

// Stats exposes the run counters for the pipeline to update
func (a *Aggregator) Stats() *types.RunStats {
	return &a.report.Stats
}

// Warn appends entries to the warning stream
func (a *Aggregator) Warn(w ...types.Warning) {
	a.report.Warnings = append(a.report.Warnings, w...)
}

// Add folds one result into the totals. Costed carriers add to their
// breakdown and the logistics total, resolved unit costs add to COGS, and
// the declared sales amount is always added. A result with any unresolved
// part is listed once for manual completion.
func (a *Aggregator) Add(res types.AttributionResult) {
	a.report.Results = append(a.report.Results, res)

	if res.SalesResolved {
		a.report.Totals.Sales = a.report.Totals.Sales.Add(res.Sales)
	}
	if res.CostResolved() {
		a.report.Totals.GoodsCost = a.report.Totals.GoodsCost.Add(res.GoodsCost)
	}
	if res.LogisticsResolved() {
		b, ok := a.providers[res.Provider]
		if !ok {
			b = &types.ProviderBreakdown{
				Provider: res.Provider,
				Units:    decimal.Zero,
				Rate:     res.Rate,
				Cost:     decimal.Zero,
			}
			a.providers[res.Provider] = b
		}
		b.Shipments++
		b.Units = b.Units.Add(res.Units)
		b.Cost = b.Cost.Add(res.LogisticsCost)
		a.report.Totals.Logistics = a.report.Totals.Logistics.Add(res.LogisticsCost)
	}

	if !res.Unresolved() {
		return
	}

	item := types.UnresolvedItem{
		Row:               res.Row,
		RecordID:          res.RecordID,
		ProductText:       res.ProductName,
		ProviderText:      res.ProviderText,
		BestGuessProvider: res.Provider,
		ProviderState:     res.ProviderState,
	}
	if !res.LogisticsResolved() {
		item.Reasons = append(item.Reasons, types.ReasonUnresolvedProvider)
		msg := fmt.Sprintf("no carrier identified for %q", res.ProductName)
		if res.ProviderState == types.ProviderUncosted {
			msg = fmt.Sprintf("carrier %q found (%s) but has no per-box rate", res.Provider, res.ProviderMethod)
		}
		a.Warn(types.Warning{
			Reason:   types.ReasonUnresolvedProvider,
			Input:    "ledger",
			Row:      res.Row,
			RecordID: res.RecordID,
			Message:  msg,
		})
	}
	if !res.CostResolved() {
		item.Reasons = append(item.Reasons, types.ReasonUnresolvedCost)
		a.Warn(types.Warning{
			Reason:   types.ReasonUnresolvedCost,
			Input:    "ledger",
			Row:      res.Row,
			RecordID: res.RecordID,
			Message:  fmt.Sprintf("no unit cost for product %q", res.ProductName),
		})
	}
	a.report.Unresolved = append(a.report.Unresolved, item)
	a.report.Stats.Unresolved++
}

// Report finalizes the report. The provider breakdown is sorted by
// canonical name so identical inputs render identically.
func (a *Aggregator) Report(meta types.ReportMetadata) *types.MonthlyReport {
	out := a.report
	out.Metadata = meta

	names := determinism.SortedKeys(a.providers)
	out.Providers = lo.Map(names, func(name string, _ int) types.ProviderBreakdown {
		return *a.providers[name]
	})
	if out.Unresolved == nil {
		out.Unresolved = []types.UnresolvedItem{}
	}
	return &out
}

// Validate checks the accounting invariants of a finished report: the
// logistics total equals both the sum over costed results and the sum over
// the provider breakdown, COGS equals the sum over resolved unit costs, and
// the unresolved list holds exactly the unresolved results, once each, in
// result order. Results are matched by position, so source rows need not
// be unique.
func Validate(r *types.MonthlyReport) error {
	logistics, goods := decimal.Zero, decimal.Zero
	next := 0
	for i := range r.Results {
		res := &r.Results[i]
		if res.LogisticsResolved() {
			logistics = logistics.Add(res.LogisticsCost)
		}
		if res.CostResolved() {
			goods = goods.Add(res.GoodsCost)
		}
		if !res.Unresolved() {
			continue
		}
		if next >= len(r.Unresolved) {
			return fmt.Errorf("result %d (row %d) is unresolved but not listed", i, res.Row)
		}
		item := r.Unresolved[next]
		if item.Row != res.Row || item.RecordID != res.RecordID {
			return fmt.Errorf("unresolved item %d (row %d) does not match result %d (row %d)", next, item.Row, i, res.Row)
		}
		next++
	}
	if next != len(r.Unresolved) {
		return fmt.Errorf("%d unresolved results but %d unresolved items", next, len(r.Unresolved))
	}

	breakdown := lo.Reduce(r.Providers, func(sum decimal.Decimal, b types.ProviderBreakdown, _ int) decimal.Decimal {
		return sum.Add(b.Cost)
	}, decimal.Zero)

	if !logistics.Equal(r.Totals.Logistics) {
		return fmt.Errorf("logistics total %s differs from sum of results %s", r.Totals.Logistics, logistics)
	}
	if !breakdown.Equal(r.Totals.Logistics) {
		return fmt.Errorf("logistics total %s differs from provider breakdown %s", r.Totals.Logistics, breakdown)
	}
	if !goods.Equal(r.Totals.GoodsCost) {
		return fmt.Errorf("goods cost total %s differs from sum of results %s", r.Totals.GoodsCost, goods)
	}
	return nil
}
