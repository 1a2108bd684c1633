package carrier

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"shipment-cost/core/types"
)

// Signal names a secondary ledger field the resolver can infer a carrier from
type Signal string

const (
	SignalRemarks  Signal = "remarks"
	SignalTracking Signal = "tracking"
	SignalMethod   Signal = "method"
)

// signalTier orders signals from most to least reliable
var signalTier = map[Signal]int{
	SignalRemarks:  0,
	SignalTracking: 1,
	SignalMethod:   2,
}

// ValidSignal reports whether s is a known signal
func ValidSignal(s Signal) bool {
	_, ok := signalTier[s]
	return ok
}

// Inference maps a substring of one ledger field to a carrier
type Inference struct {
	Signal   Signal
	Match    string
	Provider string
}

// Placeholder is the declared-carrier value that means "not filled in"
const Placeholder = "-"

// Resolution is the outcome of carrier resolution for one shipment
type Resolution struct {
	// Provider is the canonical carrier when one is costed, the found
	// text when it is not, or types.UnknownProvider
	Provider string
	Method   types.ProviderMethod
	State    types.ProviderState
	Rate     decimal.Decimal

	// Match is the inference substring that fired, empty for explicit
	Match string
}

// Resolver identifies carriers through an explicit value and then an
// ordered chain of inference rules.
type Resolver struct {
	rates *RateTable
	chain []Inference
}

// NewResolver creates a resolver. Inferences are evaluated remarks first,
// then tracking, then method; within a signal the given order is kept.
func NewResolver(rates *RateTable, inferences []Inference) *Resolver {
	chain := make([]Inference, len(inferences))
	copy(chain, inferences)
	sort.SliceStable(chain, func(i, j int) bool {
		return signalTier[chain[i].Signal] < signalTier[chain[j].Signal]
	})
	return &Resolver{rates: rates, chain: chain}
}

// Resolve determines the carrier of a shipment. The first match wins:
// explicit carrier, remarks keyword, tracking domain, method keyword.
func (r *Resolver) Resolve(rec types.ShipmentRecord) Resolution {
	if declared := strings.TrimSpace(rec.Carrier); declared != "" && declared != Placeholder {
		return r.cost(declared, types.ProviderExplicit, "")
	}

	for _, inf := range r.chain {
		if inf.Match == "" {
			continue
		}
		if strings.Contains(field(rec, inf.Signal), inf.Match) {
			return r.cost(inf.Provider, types.Inferred(string(inf.Signal)), inf.Match)
		}
	}

	return Resolution{
		Provider: types.UnknownProvider,
		Method:   types.ProviderUnresolved,
		State:    types.ProviderUnidentified,
	}
}

// Chain returns the evaluation order of the inference rules
func (r *Resolver) Chain() []Inference {
	out := make([]Inference, len(r.chain))
	copy(out, r.chain)
	return out
}

func (r *Resolver) cost(provider string, method types.ProviderMethod, match string) Resolution {
	canonical, rate, ok := r.rates.Rate(provider)
	if !ok {
		return Resolution{
			Provider: provider,
			Method:   method,
			State:    types.ProviderUncosted,
			Match:    match,
		}
	}
	return Resolution{
		Provider: canonical,
		Method:   method,
		State:    types.ProviderCosted,
		Rate:     rate,
		Match:    match,
	}
}

func field(rec types.ShipmentRecord, s Signal) string {
	switch s {
	case SignalRemarks:
		return rec.Remarks
	case SignalTracking:
		return rec.Tracking
	case SignalMethod:
		return rec.Method
	}
	return ""
}
