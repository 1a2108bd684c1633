package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed report.schema.json
var reportSchemaSource []byte

const reportSchemaURL = "report.schema.json"

var (
	reportSchemaOnce sync.Once
	reportSchema     *jsonschema.Schema
	reportSchemaErr  error
)

// ReportSchema returns the JSON schema of rendered reports
func ReportSchema() []byte {
	return reportSchemaSource
}

// ValidateJSON checks a rendered JSON report against the report schema
func ValidateJSON(data []byte) error {
	reportSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(reportSchemaURL, bytes.NewReader(reportSchemaSource)); err != nil {
			reportSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		reportSchema, reportSchemaErr = compiler.Compile(reportSchemaURL)
	})
	if reportSchemaErr != nil {
		return fmt.Errorf("compile schema: %w", reportSchemaErr)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := reportSchema.Validate(v); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}
