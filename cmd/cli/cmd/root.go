// Package cmd provides the CLI commands for shipment-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shipment-cost/internal/config"
	"shipment-cost/internal/logging"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shipment-cost",
	Short: "Attribute goods and logistics costs to shipments",
	Long: `shipment-cost reconciles a shipment ledger against a product master
and a carrier rate table, producing a monthly cost report.

Every run recomputes the report from its inputs; identical inputs produce
identical reports.

Examples:
  shipment-cost report --master master.xlsx --ledger ledger.csv --year 2025 --month 7
  shipment-cost report --format xlsx --out report.xlsx --year 2025 --month 7
  shipment-cost products unmatched --year 2025 --month 7
  shipment-cost rules show`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON or YAML; SHIPCOST_* env vars override)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shipment-cost version %s\n", Version)
	},
}
