// Package cmd - rules command
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shipment-cost/core/determinism"
	"shipment-cost/core/engine"
	"shipment-cost/core/rules"
	"shipment-cost/internal/config"
)

var rulesFile string

// rulesCmd groups rule set commands
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the rule set",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// rulesShowCmd prints the compiled rule set
var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print carrier rates, inference chain, overrides and packaging rules",
	Args:  cobra.NoArgs,
	RunE:  runRulesShow,
}

func init() {
	rulesShowCmd.Flags().StringVar(&rulesFile, "rules", "", "rule set file (default: built-in rules)")
	rulesCmd.AddCommand(rulesShowCmd)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	path := rulesFile
	if path == "" {
		path = cfg.Rules
	}

	rs, err := rules.Load(path)
	if err != nil {
		return err
	}
	eng, err := engine.New(rs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rule set: %s\n\n", rs.Filename)

	fmt.Fprintln(out, "Carriers:")
	rates := eng.Rates()
	for _, name := range rates.Providers() {
		_, rate, _ := rates.Rate(name)
		line := fmt.Sprintf("  %-20s %10s %s/box", name, rate.StringFixed(2), cfg.Currency)
		if aliases := rates.Aliases(name); len(aliases) > 0 {
			line += "  aliases: " + strings.Join(aliases, ", ")
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out, "\nInference chain:")
	for i, inf := range eng.Resolver().Chain() {
		fmt.Fprintf(out, "  %d. %-8s contains %q -> %s\n", i+1, inf.Signal, inf.Match, inf.Provider)
	}

	fmt.Fprintln(out, "\nUnit cost overrides:")
	products := determinism.SortedKeys(rs.Overrides)
	for _, product := range products {
		fmt.Fprintf(out, "  %s = %s\n", product, rs.Overrides[product].StringFixed(2))
	}

	fmt.Fprintln(out, "\nPackaging rules:")
	for _, r := range eng.Units().Rules() {
		fmt.Fprintf(out, "  %-12s marker %q, %d per box\n", r.Tag, r.Marker, r.PerBox)
	}
	return nil
}
