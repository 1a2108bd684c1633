// Package config provides configuration management.
package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"shipment-cost/adapters/tabular"
	"shipment-cost/core/output"
	"shipment-cost/core/types"
	"shipment-cost/internal/errors"
	"shipment-cost/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. SHIPCOST_OUTPUT_FORMAT
const EnvPrefix = "SHIPCOST"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" mapstructure:"version"`

	// Inputs names the master and ledger tables
	Inputs InputsConfig `json:"inputs" mapstructure:"inputs"`

	// Columns maps table headers to fields
	Columns ColumnsConfig `json:"columns" mapstructure:"columns"`

	// Period is the default target month; zero values must come from flags
	Period PeriodConfig `json:"period" mapstructure:"period"`

	// Rules is the rule set file; empty selects the built-in rules
	Rules string `json:"rules" mapstructure:"rules"`

	// Output contains output configuration
	Output OutputConfig `json:"output" mapstructure:"output"`

	// Currency labels report amounts
	Currency types.Currency `json:"currency" mapstructure:"currency"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging"`
}

// InputsConfig locates the input tables
type InputsConfig struct {
	Master string `json:"master" mapstructure:"master"`
	Ledger string `json:"ledger" mapstructure:"ledger"`

	// Sheets select a worksheet for .xlsx inputs; empty means the active sheet
	MasterSheet string `json:"master_sheet" mapstructure:"master_sheet"`
	LedgerSheet string `json:"ledger_sheet" mapstructure:"ledger_sheet"`
}

// ColumnsConfig holds header names of both tables
type ColumnsConfig struct {
	Master tabular.MasterColumns `json:"master" mapstructure:"master"`
	Ledger tabular.LedgerColumns `json:"ledger" mapstructure:"ledger"`
}

// PeriodConfig is a target accounting month
type PeriodConfig struct {
	Year  int `json:"year" mapstructure:"year"`
	Month int `json:"month" mapstructure:"month"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the report format
	Format string `json:"format" mapstructure:"format"`

	// Path is the report destination; empty writes to stdout
	Path string `json:"path" mapstructure:"path"`

	// WarningsLog receives the run's warning stream; empty uses the main logger
	WarningsLog string `json:"warnings_log" mapstructure:"warnings_log"`

	// ShowDetails lists every shipment in CLI output
	ShowDetails bool `json:"show_details" mapstructure:"show_details"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Columns: ColumnsConfig{
			Master: tabular.DefaultMasterColumns(),
			Ledger: tabular.DefaultLedgerColumns(),
		},
		Output: OutputConfig{
			Format: string(output.FormatCLI),
		},
		Currency: types.CurrencyJPY,
		Logging:  logging.DefaultConfig(),
	}
}

// Load reads configuration from path, then applies SHIPCOST_* environment
// overrides. A missing file yields the defaults; an empty path skips the
// file entirely.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !stderrors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrapf(errors.TypeConfig, err, "read config %q", path)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "unmarshal config", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("version", c.Version)

	v.SetDefault("inputs.master", c.Inputs.Master)
	v.SetDefault("inputs.ledger", c.Inputs.Ledger)
	v.SetDefault("inputs.master_sheet", c.Inputs.MasterSheet)
	v.SetDefault("inputs.ledger_sheet", c.Inputs.LedgerSheet)

	v.SetDefault("columns.master.names", c.Columns.Master.Names)
	v.SetDefault("columns.master.cost", c.Columns.Master.Cost)

	l := c.Columns.Ledger
	for key, val := range map[string]string{
		"id":       l.ID,
		"date":     l.Date,
		"product":  l.Product,
		"quantity": l.Quantity,
		"sales":    l.Sales,
		"carrier":  l.Carrier,
		"remarks":  l.Remarks,
		"tracking": l.Tracking,
		"method":   l.Method,
	} {
		v.SetDefault("columns.ledger."+key, val)
	}

	v.SetDefault("period.year", c.Period.Year)
	v.SetDefault("period.month", c.Period.Month)
	v.SetDefault("rules", c.Rules)

	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.path", c.Output.Path)
	v.SetDefault("output.warnings_log", c.Output.WarningsLog)
	v.SetDefault("output.show_details", c.Output.ShowDetails)

	v.SetDefault("currency", string(c.Currency))

	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.output", c.Logging.Output)
	v.SetDefault("logging.development", c.Logging.Development)
}

// Validate checks the configuration for values no run could use
func (c *Config) Validate() error {
	switch c.Currency {
	case types.CurrencyJPY, types.CurrencyUSD, types.CurrencyEUR:
	default:
		return errors.Config(fmt.Sprintf("unsupported currency %q", c.Currency))
	}

	if _, err := output.NewRegistry().Get(output.Format(c.Output.Format)); err != nil {
		return errors.Config(err.Error())
	}

	if c.Period.Month < 0 || c.Period.Month > 12 {
		return errors.Config(fmt.Sprintf("period month %d out of range", c.Period.Month))
	}
	if c.Period.Year < 0 {
		return errors.Config(fmt.Sprintf("period year %d out of range", c.Period.Year))
	}

	if len(c.Columns.Master.Names) == 0 {
		return errors.Config("columns.master.names must list at least one column")
	}
	if c.Columns.Master.Cost == "" {
		return errors.Config("columns.master.cost is required")
	}
	l := c.Columns.Ledger
	if l.Date == "" || l.Product == "" || l.Quantity == "" {
		return errors.Config("columns.ledger date, product and quantity are required")
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
