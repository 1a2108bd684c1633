// Package rules loads the costing rule set: carrier rates and aliases,
// carrier inference rules, unit cost overrides and packaging rules.
// Rule sets are HCL files; a default set is compiled in.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"shipment-cost/core/carrier"
	"shipment-cost/core/normalize"
	"shipment-cost/core/units"
	"shipment-cost/internal/errors"
)

//go:embed default.hcl
var defaultSource []byte

// DefaultFilename is reported as the source of the compiled-in rule set
const DefaultFilename = "default.hcl"

// RuleSet is a decoded rule file
type RuleSet struct {
	Filename   string
	Rates      []carrier.Rate
	Inferences []carrier.Inference
	Overrides  map[string]decimal.Decimal
	Packaging  []units.Rule

	// Source is the raw file content, kept for input fingerprinting
	Source []byte
}

type ruleFile struct {
	Carriers   []carrierBlock   `hcl:"carrier,block"`
	Inferences []inferBlock     `hcl:"infer,block"`
	Overrides  []overrideBlock  `hcl:"override,block"`
	Packaging  []packagingBlock `hcl:"packaging,block"`
}

type carrierBlock struct {
	Name    string   `hcl:"name,label"`
	PerBox  string   `hcl:"per_box"`
	Aliases []string `hcl:"aliases,optional"`
}

type inferBlock struct {
	Signal   string `hcl:"signal,label"`
	Match    string `hcl:"match"`
	Provider string `hcl:"provider"`
}

type overrideBlock struct {
	Product  string `hcl:"product,label"`
	UnitCost string `hcl:"unit_cost"`
}

type packagingBlock struct {
	Tag    string `hcl:"tag,label"`
	Marker string `hcl:"marker"`
	PerBox int64  `hcl:"per_box"`
}

// Default returns the compiled-in rule set
func Default() (*RuleSet, error) {
	return Parse(defaultSource, DefaultFilename)
}

// Load reads a rule set from path. An empty path selects the default set.
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default()
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Input("rule set", path, err)
	}
	return Parse(src, path)
}

// Parse decodes and validates rule set source
func Parse(src []byte, filename string) (*RuleSet, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Rules("cannot parse rule set", diags)
	}

	var raw ruleFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, errors.Rules("cannot decode rule set", diags)
	}

	rs, err := raw.build()
	if err != nil {
		return nil, errors.Rules(fmt.Sprintf("invalid rule set %s", filename), err)
	}
	rs.Filename = filename
	rs.Source = src
	return rs, nil
}

func (f *ruleFile) build() (*RuleSet, error) {
	rs := &RuleSet{Overrides: make(map[string]decimal.Decimal, len(f.Overrides))}

	for _, c := range f.Carriers {
		perBox, err := decimal.NewFromString(c.PerBox)
		if err != nil {
			return nil, fmt.Errorf("carrier %q: per_box %q: %w", c.Name, c.PerBox, err)
		}
		rs.Rates = append(rs.Rates, carrier.Rate{Provider: c.Name, PerBox: perBox, Aliases: c.Aliases})
	}

	for _, inf := range f.Inferences {
		signal := carrier.Signal(inf.Signal)
		if !carrier.ValidSignal(signal) {
			return nil, fmt.Errorf("infer %q: unknown signal (want remarks, tracking or method)", inf.Signal)
		}
		if inf.Match == "" || inf.Provider == "" {
			return nil, fmt.Errorf("infer %q: match and provider are required", inf.Signal)
		}
		rs.Inferences = append(rs.Inferences, carrier.Inference{
			Signal:   signal,
			Match:    inf.Match,
			Provider: inf.Provider,
		})
	}

	for _, o := range f.Overrides {
		key := normalize.Normalize(o.Product)
		if key == "" {
			return nil, fmt.Errorf("override with empty product name")
		}
		if _, dup := rs.Overrides[key]; dup {
			return nil, fmt.Errorf("override %q defined twice", o.Product)
		}
		cost, err := decimal.NewFromString(o.UnitCost)
		if err != nil {
			return nil, fmt.Errorf("override %q: unit_cost %q: %w", o.Product, o.UnitCost, err)
		}
		if cost.IsNegative() {
			return nil, fmt.Errorf("override %q: negative unit_cost", o.Product)
		}
		rs.Overrides[key] = cost
	}

	for _, p := range f.Packaging {
		rs.Packaging = append(rs.Packaging, units.Rule{Tag: p.Tag, Marker: p.Marker, PerBox: p.PerBox})
	}

	if _, err := carrier.NewRateTable(rs.Rates); err != nil {
		return nil, err
	}
	if _, err := units.NewCalculator(rs.Packaging); err != nil {
		return nil, err
	}
	return rs, nil
}

// Compile builds the runtime tables of a rule set
func (rs *RuleSet) Compile() (*carrier.RateTable, *carrier.Resolver, *units.Calculator, error) {
	table, err := carrier.NewRateTable(rs.Rates)
	if err != nil {
		return nil, nil, nil, errors.Rules("invalid carrier rates", err)
	}
	calc, err := units.NewCalculator(rs.Packaging)
	if err != nil {
		return nil, nil, nil, errors.Rules("invalid packaging rules", err)
	}
	return table, carrier.NewResolver(table, rs.Inferences), calc, nil
}
