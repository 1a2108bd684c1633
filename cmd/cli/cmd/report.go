// Package cmd - report command
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shipment-cost/core/engine"
	"shipment-cost/core/output"
	"shipment-cost/core/types"
	"shipment-cost/internal/config"
	"shipment-cost/internal/errors"
	"shipment-cost/internal/logging"
)

var (
	reportInputs inputFlags
	outputFormat string
	outputPath   string
	warningsLog  string
	showDetails  bool
	summaryOnly  bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute the monthly cost report",
	Long: `Attribute goods and logistics costs to every shipment of the target
month and aggregate them into a report.

Shipments that cannot be fully costed are listed for manual completion;
they never abort the run. Row-level warnings are written once at the end
of the run.

Examples:
  shipment-cost report --master master.xlsx --ledger ledger.csv --year 2025 --month 7
  shipment-cost report --format details --out details.csv --year 2025 --month 7
  shipment-cost report --format xlsx --out report.xlsx --warnings-log warnings.log`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportInputs.register(reportCmd)
	reportCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, csv, details, xlsx)")
	reportCmd.Flags().StringVarP(&outputPath, "out", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().StringVar(&warningsLog, "warnings-log", "", "write row warnings to a file")
	reportCmd.Flags().BoolVarP(&showDetails, "details", "d", false, "list every shipment in CLI output")
	reportCmd.Flags().BoolVar(&summaryOnly, "summary-only", false, "omit per-shipment results from JSON output")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		return err
	}
	reportInputs.merge(cfg)
	if outputFormat == "" {
		outputFormat = cfg.Output.Format
	}
	if outputPath == "" {
		outputPath = cfg.Output.Path
	}
	if warningsLog == "" {
		warningsLog = cfg.Output.WarningsLog
	}
	showDetails = showDetails || cfg.Output.ShowDetails

	formatter, err := output.NewRegistry().Get(output.Format(outputFormat))
	if err != nil {
		return errors.Config(err.Error())
	}
	if cli, ok := formatter.(*output.CLIFormatter); ok {
		cli.ShowDetails = showDetails
	}
	if summaryOnly && formatter.Format() != output.FormatJSON {
		return errors.Config("--summary-only applies to json output only")
	}
	if output.Binary(formatter.Format()) && outputPath == "" {
		return errors.Config("xlsx output needs --out")
	}

	p, err := reportInputs.period()
	if err != nil {
		return err
	}

	in, err := reportInputs.load(cfg, p)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, in.rules)
	if err != nil {
		return err
	}

	rep, err := eng.Run(engine.Input{
		Period:      p,
		Master:      in.master,
		Ledger:      in.ledger,
		Fingerprint: in.hash,
	})
	if err != nil {
		return err
	}

	if err := emitWarnings(rep.Warnings, warningsLog); err != nil {
		return err
	}

	logging.Info("report computed",
		zap.String("period", p.String()),
		zap.String("run_id", rep.Metadata.RunID),
		zap.Int("in_period", rep.Stats.InPeriod),
		zap.Int("unresolved", rep.Stats.Unresolved),
		zap.Int("warnings", len(rep.Warnings)),
	)

	if summaryOnly {
		rep.Results = nil
	}
	return writeReport(cmd.OutOrStdout(), formatter, rep, outputPath)
}

// emitWarnings writes the warning stream once, to its own file when one is
// configured and otherwise to the main logger
func emitWarnings(warnings []types.Warning, path string) error {
	if path == "" {
		logging.EmitWarnings(logging.Logger, warnings)
		return nil
	}

	cfg := logging.DefaultConfig()
	cfg.Format = "json"
	cfg.Level = "warn"
	cfg.Output = path
	sink, closeSink, err := logging.New(cfg)
	if err != nil {
		return errors.Wrapf(errors.TypeConfig, err, "open warnings log %q", path)
	}
	defer closeSink()

	logging.EmitWarnings(sink, warnings)
	return sink.Sync()
}

func writeReport(stdout io.Writer, f output.Formatter, rep *types.MonthlyReport, path string) error {
	if path == "" {
		return f.Render(stdout, rep)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "create report %q", path)
	}
	if err := f.Render(file, rep); err != nil {
		file.Close()
		return errors.Wrapf(errors.TypeInternal, err, "render report %q", path)
	}
	return file.Close()
}
