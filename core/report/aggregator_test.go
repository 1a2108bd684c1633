package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"shipment-cost/core/types"
)

func result(row int, provider string, state types.ProviderState, logistics, goods int64, method types.CostMethod) types.AttributionResult {
	return types.AttributionResult{
		Row:           row,
		ProductName:   "p",
		Sales:         decimal.NewFromInt(100),
		SalesResolved: true,
		CostMethod:    method,
		GoodsCost:     decimal.NewFromInt(goods),
		Provider:      provider,
		ProviderState: state,
		Units:         decimal.NewFromInt(1),
		Rate:          decimal.NewFromInt(logistics),
		LogisticsCost: decimal.NewFromInt(logistics),
	}
}

func TestAggregatorTotalsAndOrdering(t *testing.T) {
	agg := NewAggregator(types.Period{Year: 2025, Month: 7}, types.CurrencyJPY)
	agg.Add(result(2, "要町", types.ProviderCosted, 1304, 10, types.CostMaster))
	agg.Add(result(3, "EMS", types.ProviderCosted, 1308, 20, types.CostOverride))
	agg.Add(result(4, "EMS", types.ProviderCosted, 1308, 0, types.CostUnresolved))
	agg.Add(result(5, types.UnknownProvider, types.ProviderUnidentified, 0, 5, types.CostMaster))

	rep := agg.Report(types.ReportMetadata{RunID: "r"})

	if !rep.Totals.Sales.Equal(decimal.NewFromInt(400)) {
		t.Errorf("sales = %s, want 400", rep.Totals.Sales)
	}
	if !rep.Totals.GoodsCost.Equal(decimal.NewFromInt(35)) {
		t.Errorf("goods = %s, want 35", rep.Totals.GoodsCost)
	}
	if !rep.Totals.Logistics.Equal(decimal.NewFromInt(3920)) {
		t.Errorf("logistics = %s, want 3920", rep.Totals.Logistics)
	}
	if len(rep.Providers) != 2 || rep.Providers[0].Provider != "EMS" || rep.Providers[0].Shipments != 2 {
		t.Fatalf("providers = %+v", rep.Providers)
	}
	if !rep.Providers[0].Units.Equal(decimal.NewFromInt(2)) {
		t.Errorf("EMS units = %s", rep.Providers[0].Units)
	}
	if len(rep.Unresolved) != 2 || rep.Unresolved[0].Row != 4 || rep.Unresolved[1].Row != 5 {
		t.Errorf("unresolved = %+v", rep.Unresolved)
	}
	if rep.Stats.Unresolved != 2 {
		t.Errorf("stats.unresolved = %d", rep.Stats.Unresolved)
	}
	if err := Validate(rep); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateDetectsBrokenTotals(t *testing.T) {
	agg := NewAggregator(types.Period{Year: 2025, Month: 7}, types.CurrencyJPY)
	agg.Add(result(2, "EMS", types.ProviderCosted, 1308, 10, types.CostMaster))
	rep := agg.Report(types.ReportMetadata{})

	rep.Totals.Logistics = rep.Totals.Logistics.Add(decimal.NewFromInt(1))
	if err := Validate(rep); err == nil {
		t.Error("expected logistics mismatch")
	}

	rep = agg.Report(types.ReportMetadata{})
	rep.Unresolved = append(rep.Unresolved, types.UnresolvedItem{Row: 2})
	if err := Validate(rep); err == nil {
		t.Error("expected error for costed row listed as unresolved")
	}
}

func TestEmptyReport(t *testing.T) {
	rep := NewAggregator(types.Period{Year: 2025, Month: 7}, types.CurrencyJPY).Report(types.ReportMetadata{})
	if rep.Unresolved == nil || len(rep.Providers) != 0 {
		t.Errorf("unexpected empty report %+v", rep)
	}
	if err := Validate(rep); err != nil {
		t.Error(err)
	}
}

func TestValidateMatchesUnresolvedByPosition(t *testing.T) {
	agg := NewAggregator(types.Period{Year: 2025, Month: 7}, types.CurrencyJPY)
	agg.Add(result(0, types.UnknownProvider, types.ProviderUnidentified, 0, 5, types.CostMaster))
	agg.Add(result(0, types.UnknownProvider, types.ProviderUnidentified, 0, 5, types.CostMaster))
	rep := agg.Report(types.ReportMetadata{})

	if len(rep.Unresolved) != 2 {
		t.Fatalf("unresolved = %d, want 2", len(rep.Unresolved))
	}
	if err := Validate(rep); err != nil {
		t.Errorf("shared row numbers should validate: %v", err)
	}

	rep.Unresolved = rep.Unresolved[:1]
	if err := Validate(rep); err == nil {
		t.Error("expected error for a missing unresolved item")
	}
}
