package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipment-cost/adapters/tabular"
	"shipment-cost/core/determinism"
	"shipment-cost/core/engine"
	"shipment-cost/core/period"
	"shipment-cost/core/rules"
	"shipment-cost/core/types"
	"shipment-cost/internal/config"
	"shipment-cost/internal/errors"
	"shipment-cost/internal/logging"
)

// inputFlags are shared by every command that reads the two tables
type inputFlags struct {
	master      string
	ledger      string
	masterSheet string
	ledgerSheet string
	rules       string
	year        int
	month       int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.master, "master", "", "product master table (.csv or .xlsx)")
	cmd.Flags().StringVar(&f.ledger, "ledger", "", "shipment ledger table (.csv or .xlsx)")
	cmd.Flags().StringVar(&f.masterSheet, "master-sheet", "", "worksheet of an .xlsx master")
	cmd.Flags().StringVar(&f.ledgerSheet, "ledger-sheet", "", "worksheet of an .xlsx ledger")
	cmd.Flags().StringVar(&f.rules, "rules", "", "rule set file (default: built-in rules)")
	cmd.Flags().IntVar(&f.year, "year", 0, "target year")
	cmd.Flags().IntVar(&f.month, "month", 0, "target month (1-12)")
}

// merge fills unset flags from the loaded configuration
func (f *inputFlags) merge(cfg *config.Config) {
	if f.master == "" {
		f.master = cfg.Inputs.Master
	}
	if f.ledger == "" {
		f.ledger = cfg.Inputs.Ledger
	}
	if f.masterSheet == "" {
		f.masterSheet = cfg.Inputs.MasterSheet
	}
	if f.ledgerSheet == "" {
		f.ledgerSheet = cfg.Inputs.LedgerSheet
	}
	if f.rules == "" {
		f.rules = cfg.Rules
	}
	if f.year == 0 {
		f.year = cfg.Period.Year
	}
	if f.month == 0 {
		f.month = cfg.Period.Month
	}
}

func (f *inputFlags) period() (types.Period, error) {
	if f.year == 0 || f.month == 0 {
		return types.Period{}, errors.Config("target period required: pass --year and --month")
	}
	p, err := period.New(f.year, f.month)
	if err != nil {
		return types.Period{}, errors.Wrap(errors.TypeConfig, "invalid target period", err)
	}
	return p, nil
}

// loaded holds everything read from disk for one run
type loaded struct {
	rules  *rules.RuleSet
	master []types.MasterRow
	ledger []types.ShipmentRecord
	hash   determinism.ContentHash
}

func (f *inputFlags) load(cfg *config.Config, p types.Period) (*loaded, error) {
	if f.master == "" {
		return nil, errors.Config("master table required: pass --master or set inputs.master")
	}
	if f.ledger == "" {
		return nil, errors.Config("ledger table required: pass --ledger or set inputs.ledger")
	}

	rs, err := rules.Load(f.rules)
	if err != nil {
		return nil, err
	}

	masterTable, err := tabular.Open("master", f.master, tabular.Options{Sheet: f.masterSheet})
	if err != nil {
		return nil, err
	}
	master, err := tabular.MasterRows(masterTable, cfg.Columns.Master)
	if err != nil {
		return nil, err
	}

	ledgerTable, err := tabular.Open("ledger", f.ledger, tabular.Options{Sheet: f.ledgerSheet})
	if err != nil {
		return nil, err
	}
	ledger, err := tabular.ShipmentRecords(ledgerTable, cfg.Columns.Ledger)
	if err != nil {
		return nil, err
	}

	logging.Debug(fmt.Sprintf("loaded %d master rows and %d ledger rows", len(master), len(ledger)))

	hash := determinism.NewFingerprint().
		Add("master", masterTable.Raw).
		Add("ledger", ledgerTable.Raw).
		Add("rules", rs.Source).
		Add("period", []byte(p.String())).
		Sum()

	return &loaded{rules: rs, master: master, ledger: ledger, hash: hash}, nil
}

func newEngine(cfg *config.Config, rs *rules.RuleSet) (*engine.Engine, error) {
	return engine.New(rs,
		engine.WithLogger(logging.Logger),
		engine.WithCurrency(cfg.Currency),
	)
}
