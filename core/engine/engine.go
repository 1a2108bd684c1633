// Package engine runs the cost attribution pipeline.
// The CLI is a thin wrapper around this engine.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipment-cost/core/carrier"
	"shipment-cost/core/catalog"
	"shipment-cost/core/determinism"
	"shipment-cost/core/period"
	"shipment-cost/core/report"
	"shipment-cost/core/rules"
	"shipment-cost/core/types"
	"shipment-cost/core/units"
	apperrors "shipment-cost/internal/errors"
)

// Engine attributes goods and logistics costs to ledger shipments. The rule
// tables are read-only after construction, so one engine may serve
// several runs.
type Engine struct {
	rules    *rules.RuleSet
	rates    *carrier.RateTable
	resolver *carrier.Resolver
	units    *units.Calculator
	currency types.Currency
	logger   *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the debug logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCurrency sets the currency label of reports
func WithCurrency(c types.Currency) Option {
	return func(e *Engine) {
		if c != "" {
			e.currency = c
		}
	}
}

// New compiles a rule set into an engine
func New(rs *rules.RuleSet, opts ...Option) (*Engine, error) {
	if rs == nil {
		return nil, apperrors.New(apperrors.TypeRules, "no rule set")
	}
	rates, resolver, calc, err := rs.Compile()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		rules:    rs,
		rates:    rates,
		resolver: resolver,
		units:    calc,
		currency: types.CurrencyJPY,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Input is everything one run reads
type Input struct {
	Period types.Period
	Master []types.MasterRow
	Ledger []types.ShipmentRecord

	// Fingerprint identifies the raw inputs; it seeds the run ID
	Fingerprint determinism.ContentHash
}

// Run attributes costs to every in-period shipment and aggregates them.
// Row-level defects become warnings; only a broken report invariant is
// returned as an error.
func (e *Engine) Run(in Input) (*types.MonthlyReport, error) {
	idx, warnings := e.BuildIndex(in.Master)

	agg := report.NewAggregator(in.Period, e.currency)
	agg.Warn(warnings...)
	stats := agg.Stats()

	for _, rec := range in.Ledger {
		stats.RowsRead++

		date, inPeriod, err := period.Classify(in.Period, rec.Date)
		if err != nil {
			stats.SkippedDates++
			agg.Warn(types.Warning{
				Reason:   types.ReasonBadDate,
				Input:    "ledger",
				Row:      rec.Row,
				RecordID: rec.ID,
				Message:  fmt.Sprintf("shipment date %q: %v", rec.Date, err),
			})
			continue
		}
		if !inPeriod {
			stats.OutOfPeriod++
			e.logger.Debug("out of period",
				zap.Int("row", rec.Row),
				zap.String("date", rec.Date),
				zap.String("period", in.Period.String()),
			)
			continue
		}
		stats.InPeriod++

		res, rowWarnings := e.Attribute(idx, rec, date)
		agg.Warn(rowWarnings...)
		agg.Add(res)

		e.logger.Debug("attributed",
			zap.Int("row", res.Row),
			zap.String("provider", res.Provider),
			zap.String("provider_method", string(res.ProviderMethod)),
			zap.String("cost_method", string(res.CostMethod)),
			zap.String("units", res.Units.String()),
			zap.String("unit_rule", res.UnitRule),
			zap.String("logistics", res.LogisticsCost.String()),
		)
	}

	rep := agg.Report(types.ReportMetadata{
		RunID:            determinism.RunID(in.Fingerprint),
		InputFingerprint: in.Fingerprint.Hex(),
		MasterEntries:    idx.Len(),
	})
	if err := report.Validate(rep); err != nil {
		return nil, apperrors.Internal("report failed reconciliation", err)
	}
	return rep, nil
}

// BuildIndex builds the product cost index from master rows and the rule
// set's overrides
func (e *Engine) BuildIndex(master []types.MasterRow) (*catalog.Index, []types.Warning) {
	return catalog.Build(master, e.rules.Overrides)
}

// Attribute computes the costs of one in-period shipment
func (e *Engine) Attribute(idx *catalog.Index, rec types.ShipmentRecord, date time.Time) (types.AttributionResult, []types.Warning) {
	var warnings []types.Warning
	warn := func(reason types.ReasonCode, format string, args ...interface{}) {
		warnings = append(warnings, types.Warning{
			Reason:   reason,
			Input:    "ledger",
			Row:      rec.Row,
			RecordID: rec.ID,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	res := types.AttributionResult{
		Row:          rec.Row,
		RecordID:     rec.ID,
		Date:         date,
		ProductName:  rec.ProductName,
		ProviderText: rec.Carrier,
	}

	qty, err := units.ParseQuantity(rec.Quantity)
	if err != nil {
		if errors.Is(err, units.ErrEmptyQuantity) {
			warn(types.ReasonBadQuantity, "empty quantity, counted as 0")
		} else {
			warn(types.ReasonBadQuantity, "quantity %q: %v, counted as 0", rec.Quantity, err)
		}
	}
	res.Quantity = qty

	if rec.SalesAmount == "" {
		res.Sales, res.SalesResolved = decimal.Zero, true
	} else if sales, err := catalog.ParseAmount(rec.SalesAmount); err != nil {
		warn(types.ReasonBadAmount, "sales amount %q: %v, excluded from sales total", rec.SalesAmount, err)
	} else {
		res.Sales, res.SalesResolved = sales, true
	}

	unitCost, method, ok := idx.Lookup(rec.ProductName)
	res.CostMethod = method
	if ok {
		res.UnitCost = unitCost
		res.GoodsCost = qty.Mul(unitCost)
		res.GoodsLineage = types.CostLineage{
			Formula: fmt.Sprintf("%s x %s (%s)", qty, unitCost, method),
		}
	}

	resolution := e.resolver.Resolve(rec)
	res.Provider = resolution.Provider
	res.ProviderMethod = resolution.Method
	res.ProviderState = resolution.State

	boxes, applied := e.units.Compute(rec.ProductName, qty)
	res.Units = boxes
	res.UnitRule = applied.Tag

	if resolution.State == types.ProviderCosted {
		res.Rate = resolution.Rate
		res.LogisticsCost = boxes.Mul(resolution.Rate)
		lineage := types.CostLineage{
			Formula: fmt.Sprintf("%s boxes x %s (%s, %s)", applied.Formula, resolution.Rate, resolution.Provider, resolution.Method),
		}
		if resolution.Match != "" {
			lineage.Assumptions = append(lineage.Assumptions, fmt.Sprintf("carrier inferred from %q", resolution.Match))
		}
		res.LogisticsLineage = lineage
	}

	return res, warnings
}

// UnmatchedProducts lists the distinct ledger product names that resolve
// through neither the override table nor the master index, sorted. When p
// is non-nil only shipments dated in that period are considered.
func (e *Engine) UnmatchedProducts(master []types.MasterRow, ledger []types.ShipmentRecord, p *types.Period) []string {
	idx, _ := e.BuildIndex(master)

	candidates := lo.Filter(ledger, func(rec types.ShipmentRecord, _ int) bool {
		if rec.ProductName == "" {
			return false
		}
		if p == nil {
			return true
		}
		_, in, err := period.Classify(*p, rec.Date)
		return err == nil && in
	})
	names := lo.Uniq(lo.Map(candidates, func(rec types.ShipmentRecord, _ int) string {
		return rec.ProductName
	}))
	missing := lo.Reject(names, func(name string, _ int) bool {
		return idx.Has(name)
	})
	sort.Strings(missing)
	return missing
}

// Rules returns the engine's rule set
func (e *Engine) Rules() *rules.RuleSet {
	return e.rules
}

// Rates returns the compiled carrier rate table
func (e *Engine) Rates() *carrier.RateTable {
	return e.rates
}

// Resolver returns the compiled carrier resolver
func (e *Engine) Resolver() *carrier.Resolver {
	return e.resolver
}

// Units returns the compiled packaging calculator
func (e *Engine) Units() *units.Calculator {
	return e.units
}
