package output

import (
	"bytes"
	"encoding/json"
	"io"

	"shipment-cost/core/types"
)

// JSONFormatter renders the full report, including per-shipment results
// and warnings, as JSON. Output is checked against the report schema
// before it is written.
type JSONFormatter struct {
	Indent bool
}

// Format implements Formatter
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render implements Formatter
func (f *JSONFormatter) Render(w io.Writer, rep *types.MonthlyReport) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rep); err != nil {
		return err
	}
	if err := ValidateJSON(buf.Bytes()); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
