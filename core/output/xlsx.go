package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"shipment-cost/core/types"
)

// Sheet names of the XLSX workbook
const (
	SheetSummary    = "Summary"
	SheetProviders  = "Providers"
	SheetUnresolved = "Unresolved"
	SheetDetails    = "Details"
)

// XLSXFormatter renders the report as a workbook
type XLSXFormatter struct{}

// Format implements Formatter
func (f *XLSXFormatter) Format() Format { return FormatXLSX }

// Render implements Formatter
func (f *XLSXFormatter) Render(w io.Writer, rep *types.MonthlyReport) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName(wb.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	summary := [][]string{
		{"period", rep.Period.String()},
		{"currency", rep.Currency.String()},
		{"run_id", rep.Metadata.RunID},
		{"sales", money(rep.Totals.Sales)},
		{"goods_cost", money(rep.Totals.GoodsCost)},
		{"logistics", money(rep.Totals.Logistics)},
		{"shipments", fmt.Sprintf("%d", rep.Stats.InPeriod)},
		{"unresolved", fmt.Sprintf("%d", len(rep.Unresolved))},
	}
	if err := writeSheet(wb, SheetSummary, summary); err != nil {
		return err
	}

	sheets := []struct {
		name string
		rows [][]string
	}{
		{SheetProviders, append([][]string{providerHeader}, providerRows(rep)...)},
		{SheetUnresolved, append([][]string{unresolvedHeader}, unresolvedRows(rep)...)},
		{SheetDetails, detailRows(rep)},
	}
	for _, s := range sheets {
		if _, err := wb.NewSheet(s.name); err != nil {
			return err
		}
		if err := writeSheet(wb, s.name, s.rows); err != nil {
			return err
		}
	}

	_ = wb.SetColWidth(SheetSummary, "A", "B", 18)
	_ = wb.SetColWidth(SheetProviders, "A", "E", 16)
	_ = wb.SetColWidth(SheetUnresolved, "C", "C", 40)
	_ = wb.SetColWidth(SheetDetails, "D", "D", 40)
	wb.SetActiveSheet(0)

	if _, err := wb.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeSheet(wb *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := wb.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
