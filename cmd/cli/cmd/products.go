// Package cmd - products command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipment-cost/core/types"
	"shipment-cost/internal/config"
)

var (
	productInputs inputFlags
	allPeriods    bool
)

// productsCmd groups product master commands
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Inspect ledger products against the master",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// unmatchedCmd lists ledger products with no unit cost
var unmatchedCmd = &cobra.Command{
	Use:   "unmatched",
	Short: "List ledger products with no master entry or override",
	Long: `List the distinct ledger product names that resolve to no unit cost,
sorted, one per line. These are the products to add to the master before
re-running the report.

Examples:
  shipment-cost products unmatched --master master.xlsx --ledger ledger.csv --year 2025 --month 7
  shipment-cost products unmatched --all`,
	Args: cobra.NoArgs,
	RunE: runUnmatched,
}

func init() {
	productInputs.register(unmatchedCmd)
	unmatchedCmd.Flags().BoolVar(&allPeriods, "all", false, "consider every ledger row regardless of date")
	productsCmd.AddCommand(unmatchedCmd)
}

func runUnmatched(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		return err
	}
	productInputs.merge(cfg)

	var scope *types.Period
	var p types.Period
	if !allPeriods {
		var err error
		if p, err = productInputs.period(); err != nil {
			return err
		}
		scope = &p
	}

	in, err := productInputs.load(cfg, p)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, in.rules)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range eng.UnmatchedProducts(in.master, in.ledger, scope) {
		fmt.Fprintln(out, name)
	}
	return nil
}
