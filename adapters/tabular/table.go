// Package tabular reads the master and ledger tables from CSV or XLSX files
// and maps their rows onto domain records by header name.
package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"shipment-cost/internal/errors"
)

// Format identifies a table file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Table is a header row plus data rows. Row i of Rows is source row i+2.
type Table struct {
	Name   string
	Path   string
	Header []string
	Rows   [][]string

	// Raw is the file content, kept for input fingerprinting
	Raw []byte
}

// Options controls how a table file is decoded
type Options struct {
	// Format forces a decoder; empty selects by file extension
	Format Format

	// Sheet names the XLSX worksheet; empty selects the active sheet
	Sheet string
}

// DetectFormat selects a decoder from the file extension
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return FormatCSV
}

// Open reads a table file. Any failure to read or decode the file is an
// input error naming the table.
func Open(name, path string, opts Options) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Input(name, path, err)
	}

	format := opts.Format
	if format == "" {
		format = DetectFormat(path)
	}

	var rows [][]string
	switch format {
	case FormatXLSX:
		rows, err = decodeXLSX(raw, opts.Sheet)
	case FormatCSV:
		rows, err = decodeCSV(raw)
	default:
		return nil, errors.Newf(errors.TypeInput, "%s: unsupported table format %q", name, format)
	}
	if err != nil {
		return nil, errors.Input(name, path, errors.Parsing("decode "+string(format), err))
	}
	if len(rows) == 0 {
		return nil, errors.Input(name, path, errors.Parsing("table has no header row", nil))
	}

	return &Table{
		Name:   name,
		Path:   path,
		Header: rows[0],
		Rows:   rows[1:],
		Raw:    raw,
	}, nil
}

// Column returns the index of a header. Headers match exactly after
// trimming, or failing that with all whitespace (including line breaks
// inside spreadsheet headers) removed.
func (t *Table) Column(name string) (int, bool) {
	want := strings.TrimSpace(name)
	if want == "" {
		return -1, false
	}
	for i, h := range t.Header {
		if strings.TrimSpace(h) == want {
			return i, true
		}
	}
	squeezed := squeeze(want)
	for i, h := range t.Header {
		if squeeze(h) == squeezed {
			return i, true
		}
	}
	return -1, false
}

// RowNumber returns the source row number of data row i
func RowNumber(i int) int {
	return i + 2
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func squeeze(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
