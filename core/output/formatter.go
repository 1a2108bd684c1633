// Package output renders monthly reports.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"shipment-cost/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatCSV is the summary report as CSV
	FormatCSV Format = "csv"

	// FormatDetails is one CSV row per shipment with a totals footer
	FormatDetails Format = "details"

	// FormatXLSX is a workbook with summary, provider, unresolved and detail sheets
	FormatXLSX Format = "xlsx"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, rep *types.MonthlyReport) error
}

// Registry maps formats to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding every built-in formatter
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	for _, f := range []Formatter{
		&CLIFormatter{},
		&JSONFormatter{Indent: true},
		&CSVFormatter{},
		&DetailsFormatter{},
		&XLSXFormatter{},
	} {
		r.Register(f)
	}
	return r
}

// Register adds a formatter, replacing any formatter for the same format
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(r.Formats(), ", "))
	}
	return f, nil
}

// Formats lists the registered format names, sorted
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Binary reports whether a format produces non-text output
func Binary(format Format) bool {
	return format == FormatXLSX
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// grouped formats an amount with thousands separators, e.g. 12,190.00
func grouped(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func reasons(rs []types.ReasonCode) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ";")
}

func optional(d decimal.Decimal, ok bool) string {
	if !ok {
		return ""
	}
	return d.String()
}
