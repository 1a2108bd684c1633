package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"shipment-cost/core/carrier"
	"shipment-cost/core/normalize"
	"shipment-cost/core/types"
	"shipment-cost/internal/errors"
)

func TestDefaultRuleSet(t *testing.T) {
	rs, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(rs.Rates) != 8 {
		t.Errorf("expected 8 carriers, got %d", len(rs.Rates))
	}
	if len(rs.Inferences) != 8 {
		t.Errorf("expected 8 inference rules, got %d", len(rs.Inferences))
	}
	if cost := rs.Overrides[normalize.Normalize("救心丸 60粒")]; !cost.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("override cost = %s, want 1000", cost)
	}

	table, resolver, calc, err := rs.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for alias, want := range map[string]string{
		"神戸": "神戸物流", "神户物流": "神戸物流", "大阪神洲物流": "神洲", "要町SF": "要町", "JD": "JD(madme)", "SF": "SF CN",
	} {
		if got, _ := table.Canonical(alias); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", alias, got, want)
		}
	}
	if _, rate, _ := table.Rate("FedEx転送"); !rate.Equal(decimal.NewFromInt(12190)) {
		t.Errorf("FedEx転送 rate = %s", rate)
	}

	res := resolver.Resolve(types.ShipmentRecord{Carrier: "-", Method: "日本輸送"})
	if res.Provider != "ヤマト" || res.Method != types.ProviderInferredMethod {
		t.Errorf("method inference: %+v", res)
	}
	if rules := calc.Rules(); len(rules) != 1 || rules[0].PerBox != 2 {
		t.Errorf("packaging rules = %+v", rules)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.hcl")
	src := `
carrier "Sagawa" {
  per_box = 820.5
  aliases = ["佐川"]
}
infer "tracking" {
  match    = "sagawa-exp.co.jp"
  provider = "Sagawa"
}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.Filename != path || len(rs.Rates) != 1 {
		t.Fatalf("unexpected rule set %+v", rs)
	}
	if !rs.Rates[0].PerBox.Equal(decimal.RequireFromString("820.5")) {
		t.Errorf("per_box = %s", rs.Rates[0].PerBox)
	}
	if rs.Inferences[0].Signal != carrier.SignalTracking {
		t.Errorf("signal = %s", rs.Inferences[0].Signal)
	}
}

func TestParseRejectsInvalidRules(t *testing.T) {
	cases := map[string]string{
		"unknown signal": `infer "subject" {
  match = "x"
  provider = "EMS"
}`,
		"bad per_box": `carrier "EMS" {
  per_box = "abc"
}`,
		"alias conflict": `carrier "A" {
  per_box = 1
  aliases = ["X"]
}
carrier "B" {
  per_box = 2
  aliases = ["X"]
}`,
		"duplicate override": `override "a b" {
  unit_cost = 1
}
override "ab" {
  unit_cost = 2
}`,
		"bad packaging": `packaging "p" {
  marker = "m"
  per_box = 0
}`,
		"syntax": `carrier "EMS" {`,
	}
	for name, src := range cases {
		_, err := Parse([]byte(src), name+".hcl")
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !errors.IsType(err, errors.TypeRules) {
			t.Errorf("%s: error type = %v", name, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	if !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error, got %v", err)
	}
}
