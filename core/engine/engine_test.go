package engine

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"shipment-cost/core/determinism"
	"shipment-cost/core/report"
	"shipment-cost/core/rules"
	"shipment-cost/core/types"
)

const testRules = `
carrier "EMS" {
  per_box = 1000
}
carrier "神戸物流" {
  per_box = 248
  aliases = ["神戸"]
}
infer "remarks" {
  match    = "神戸"
  provider = "神戸物流"
}
infer "tracking" {
  match    = "post.japanpost.jp"
  provider = "EMS"
}
override "pinned" {
  unit_cost = 1000
}
packaging "mounjaro" {
  marker  = "mounjaro"
  per_box = 2
}
`

func newEngine(t *testing.T) *Engine {
	t.Helper()
	rs, err := rules.Parse([]byte(testRules), "test.hcl")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	e, err := New(rs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func july() types.Period {
	return types.Period{Year: 2025, Month: 7}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEndToEndScenario(t *testing.T) {
	e := newEngine(t)
	rep, err := e.Run(Input{
		Period: july(),
		Master: []types.MasterRow{{Row: 2, Names: []string{"ABC"}, Cost: "100"}},
		Ledger: []types.ShipmentRecord{
			{Row: 2, ID: "S1", Date: "2025/07/15", ProductName: "abc", Quantity: "3", SalesAmount: "5,000", Carrier: "EMS"},
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(rep.Results))
	}
	res := rep.Results[0]
	if !res.GoodsCost.Equal(dec("300")) || res.CostMethod != types.CostMaster {
		t.Errorf("goods cost = %s via %s, want 300 via master", res.GoodsCost, res.CostMethod)
	}
	if !res.Units.Equal(dec("3")) || res.UnitRule != "default" {
		t.Errorf("units = %s (%s), want 3 (default)", res.Units, res.UnitRule)
	}
	if !res.LogisticsCost.Equal(dec("3000")) || res.ProviderMethod != types.ProviderExplicit {
		t.Errorf("logistics = %s via %s, want 3000 via explicit", res.LogisticsCost, res.ProviderMethod)
	}
	if !rep.Totals.Sales.Equal(dec("5000")) || !rep.Totals.GoodsCost.Equal(dec("300")) || !rep.Totals.Logistics.Equal(dec("3000")) {
		t.Errorf("totals = %+v", rep.Totals)
	}
	if len(rep.Unresolved) != 0 || len(rep.Warnings) != 0 {
		t.Errorf("unexpected unresolved %v / warnings %v", rep.Unresolved, rep.Warnings)
	}
}

func TestOutOfPeriodRowIsExcludedWithoutWarning(t *testing.T) {
	rep, err := newEngine(t).Run(Input{
		Period: july(),
		Master: []types.MasterRow{{Row: 2, Names: []string{"ABC"}, Cost: "100"}},
		Ledger: []types.ShipmentRecord{
			{Row: 2, Date: "2025/06/30", ProductName: "abc", Quantity: "3", SalesAmount: "900", Carrier: "EMS"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Results) != 0 || len(rep.Warnings) != 0 || !rep.Totals.Sales.IsZero() {
		t.Errorf("out-of-period row leaked into report: %+v", rep)
	}
	if rep.Stats.OutOfPeriod != 1 || rep.Stats.RowsRead != 1 {
		t.Errorf("stats = %+v", rep.Stats)
	}
}

func TestUnresolvedShipmentAppearsOnce(t *testing.T) {
	rep, err := newEngine(t).Run(Input{
		Period: july(),
		Ledger: []types.ShipmentRecord{
			{Row: 5, ID: "U1", Date: "2025/07/03", ProductName: "mystery", Quantity: "2", SalesAmount: "700", Carrier: "-", Remarks: "至急"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Totals.GoodsCost.IsZero() || !rep.Totals.Logistics.IsZero() || len(rep.Providers) != 0 {
		t.Errorf("unresolved shipment contributed to cost totals: %+v", rep.Totals)
	}
	if !rep.Totals.Sales.Equal(dec("700")) {
		t.Errorf("sales must still be counted, got %s", rep.Totals.Sales)
	}
	if len(rep.Unresolved) != 1 {
		t.Fatalf("expected 1 unresolved item, got %d", len(rep.Unresolved))
	}
	item := rep.Unresolved[0]
	if item.Row != 5 || item.BestGuessProvider != types.UnknownProvider || len(item.Reasons) != 2 {
		t.Errorf("unexpected item %+v", item)
	}
	reasons := map[types.ReasonCode]int{}
	for _, w := range rep.Warnings {
		reasons[w.Reason]++
	}
	if reasons[types.ReasonUnresolvedProvider] != 1 || reasons[types.ReasonUnresolvedCost] != 1 {
		t.Errorf("warnings = %+v", rep.Warnings)
	}
}

func TestFoundButUncostedCarrier(t *testing.T) {
	rep, err := newEngine(t).Run(Input{
		Period: july(),
		Master: []types.MasterRow{{Row: 2, Names: []string{"abc"}, Cost: "10"}},
		Ledger: []types.ShipmentRecord{
			{Row: 2, Date: "2025/07/03", ProductName: "abc", Quantity: "1", Carrier: "佐川"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Unresolved) != 1 {
		t.Fatalf("expected 1 unresolved item, got %d", len(rep.Unresolved))
	}
	item := rep.Unresolved[0]
	if item.ProviderState != types.ProviderUncosted || item.BestGuessProvider != "佐川" {
		t.Errorf("unexpected item %+v", item)
	}
	if !rep.Totals.GoodsCost.Equal(dec("10")) {
		t.Errorf("goods cost should still count, got %s", rep.Totals.GoodsCost)
	}
}

func TestRowDefectsBecomeWarnings(t *testing.T) {
	rep, err := newEngine(t).Run(Input{
		Period: july(),
		Master: []types.MasterRow{
			{Row: 2, Names: []string{"abc"}, Cost: "10"},
			{Row: 3, Names: []string{"bad"}, Cost: "ten"},
		},
		Ledger: []types.ShipmentRecord{
			{Row: 2, Date: "", ProductName: "abc", Quantity: "1", Carrier: "EMS"},
			{Row: 3, Date: "2025-07-01", ProductName: "abc", Quantity: "1", Carrier: "EMS"},
			{Row: 4, Date: "2025/07/01", ProductName: "abc", Quantity: "", Carrier: "EMS"},
			{Row: 5, Date: "2025/07/01", ProductName: "abc", Quantity: "1", SalesAmount: "abc", Carrier: "EMS"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := map[types.ReasonCode]int{}
	for _, w := range rep.Warnings {
		got[w.Reason]++
	}
	want := map[types.ReasonCode]int{
		types.ReasonBadCostFormat: 1,
		types.ReasonBadDate:       2,
		types.ReasonBadQuantity:   1,
		types.ReasonBadAmount:     1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("warnings by reason = %v, want %v", got, want)
	}
	if rep.Stats.SkippedDates != 2 || rep.Stats.InPeriod != 2 {
		t.Errorf("stats = %+v", rep.Stats)
	}
	if !rep.Totals.Logistics.Equal(dec("1000")) {
		t.Errorf("logistics = %s, want 1000 (empty quantity ships 0 boxes)", rep.Totals.Logistics)
	}
}

func TestInferenceOverridesAndBoxRule(t *testing.T) {
	rep, err := newEngine(t).Run(Input{
		Period: july(),
		Master: []types.MasterRow{
			{Row: 2, Names: []string{"Pinned"}, Cost: "99999"},
			{Row: 3, Names: []string{"Mounjaro 5mg"}, Cost: "2,000"},
		},
		Ledger: []types.ShipmentRecord{
			{Row: 2, Date: "2025/07/01", ProductName: "pinned", Quantity: "2", Remarks: "神戸倉庫"},
			{Row: 3, Date: "2025/07/02", ProductName: "Mounjaro 5mg", Quantity: "5", Tracking: "https://trackings.post.japanpost.jp/?n=1"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	pinned, mounjaro := rep.Results[0], rep.Results[1]

	if pinned.CostMethod != types.CostOverride || !pinned.GoodsCost.Equal(dec("2000")) {
		t.Errorf("override: %s %s", pinned.CostMethod, pinned.GoodsCost)
	}
	if pinned.Provider != "神戸物流" || pinned.ProviderMethod != types.ProviderInferredRemarks || !pinned.LogisticsCost.Equal(dec("496")) {
		t.Errorf("remarks inference: %s %s %s", pinned.Provider, pinned.ProviderMethod, pinned.LogisticsCost)
	}

	if !mounjaro.Units.Equal(dec("3")) || mounjaro.UnitRule != "mounjaro" {
		t.Errorf("box rule: %s (%s)", mounjaro.Units, mounjaro.UnitRule)
	}
	if mounjaro.ProviderMethod != types.ProviderInferredTracking || !mounjaro.LogisticsCost.Equal(dec("3000")) {
		t.Errorf("tracking inference: %s %s", mounjaro.ProviderMethod, mounjaro.LogisticsCost)
	}
	if !mounjaro.GoodsCost.Equal(dec("10000")) {
		t.Errorf("COGS uses quantity, not boxes: %s", mounjaro.GoodsCost)
	}

	if len(rep.Providers) != 2 || rep.Providers[0].Provider != "EMS" || rep.Providers[1].Provider != "神戸物流" {
		t.Fatalf("providers = %+v", rep.Providers)
	}
	if err := report.Validate(rep); err != nil {
		t.Error(err)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	in := Input{
		Period:      july(),
		Master:      []types.MasterRow{{Row: 2, Names: []string{"a"}, Cost: "1"}, {Row: 3, Names: []string{"b"}, Cost: "2"}},
		Fingerprint: determinism.NewFingerprint().Add("ledger", []byte("x")).Sum(),
		Ledger: []types.ShipmentRecord{
			{Row: 2, Date: "2025/07/01", ProductName: "a", Quantity: "1", Carrier: "神戸"},
			{Row: 3, Date: "2025/07/01", ProductName: "b", Quantity: "1", Carrier: "EMS"},
			{Row: 4, Date: "2025/07/01", ProductName: "c", Quantity: "1", Carrier: "?"},
		},
	}
	a, err := newEngine(t).Run(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newEngine(t).Run(in)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different reports")
	}
	if a.Metadata.RunID == "" || a.Metadata.RunID != b.Metadata.RunID {
		t.Errorf("run IDs differ: %q vs %q", a.Metadata.RunID, b.Metadata.RunID)
	}
}

func TestUnmatchedProducts(t *testing.T) {
	e := newEngine(t)
	p := july()
	master := []types.MasterRow{{Row: 2, Names: []string{"known"}, Cost: "1"}}
	ledger := []types.ShipmentRecord{
		{Date: "2025/07/01", ProductName: "zeta"},
		{Date: "2025/07/02", ProductName: "Known"},
		{Date: "2025/07/03", ProductName: "alpha"},
		{Date: "2025/07/04", ProductName: "zeta"},
		{Date: "2025/07/05", ProductName: "PINNED"},
		{Date: "2025/08/01", ProductName: "august-only"},
	}

	got := e.UnmatchedProducts(master, ledger, &p)
	if !reflect.DeepEqual(got, []string{"alpha", "zeta"}) {
		t.Errorf("UnmatchedProducts(july) = %v", got)
	}
	got = e.UnmatchedProducts(master, ledger, nil)
	if !reflect.DeepEqual(got, []string{"alpha", "august-only", "zeta"}) {
		t.Errorf("UnmatchedProducts(all) = %v", got)
	}
}

func TestUnresolvedRecordsSharingRowNumber(t *testing.T) {
	e := newEngine(t)
	rep, err := e.Run(Input{
		Period: july(),
		Ledger: []types.ShipmentRecord{
			{ID: "a", Date: "2025/07/01", ProductName: "x", Quantity: "1", Carrier: "-"},
			{ID: "b", Date: "2025/07/02", ProductName: "y", Quantity: "1", Carrier: "-"},
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Unresolved) != 2 {
		t.Fatalf("unresolved = %d, want 2", len(rep.Unresolved))
	}
	if rep.Unresolved[0].RecordID != "a" || rep.Unresolved[1].RecordID != "b" {
		t.Errorf("unresolved order = %+v", rep.Unresolved)
	}
	if rep.Stats.Unresolved != 2 {
		t.Errorf("stats.unresolved = %d, want 2", rep.Stats.Unresolved)
	}
}
