package tabular

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"shipment-cost/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestShipmentRecordsFromCSV(t *testing.T) {
	path := writeFile(t, "ledger.csv", "\ufeffUnique ID,出荷日,商品名,数量,合計金額,物流業者,備考,追跡URL,物流方法\n"+
		"A1,2025/07/15,abc,3,\"1,200\",EMS,,,\n"+
		",,,,,,,,\n"+
		"A2,2025/07/16,Mounjaro,5\n")

	table, err := Open("ledger", path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	records, err := ShipmentRecords(table, DefaultLedgerColumns())
	if err != nil {
		t.Fatalf("ShipmentRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.Row != 2 || first.ID != "A1" || first.SalesAmount != "1,200" || first.Carrier != "EMS" {
		t.Errorf("unexpected first record %+v", first)
	}
	second := records[1]
	if second.Row != 4 || second.Quantity != "5" || second.Carrier != "" {
		t.Errorf("unexpected second record %+v", second)
	}
}

func TestMasterRowsMatchesMultilineHeader(t *testing.T) {
	path := writeFile(t, "master.csv", "品名,产品名称,\"包装単位\n'@薬価\n（JPY）\"\n救心丸 30粒,救心丸30粒装,\"1,250\"\n")

	table, err := Open("master", path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cols := DefaultMasterColumns()
	cols.Cost = "包装単位 '@薬価 （JPY）"
	rows, err := MasterRows(table, cols)
	if err != nil {
		t.Fatalf("MasterRows: %v", err)
	}
	if len(rows) != 1 || rows[0].Cost != "1,250" || len(rows[0].Names) != 2 {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestMissingRequiredColumnIsInputError(t *testing.T) {
	path := writeFile(t, "ledger.csv", "出荷日,数量\n2025/07/01,1\n")
	table, err := Open("ledger", path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = ShipmentRecords(table, DefaultLedgerColumns())
	if !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error, got %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("master", filepath.Join(t.TempDir(), "nope.csv"), Options{})
	if !errors.IsType(err, errors.TypeInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	var e *errors.Error
	if ok := stderrors.As(err, &e); !ok || e.Context["input"] != "master" {
		t.Errorf("error should name the input: %v", err)
	}
}

func TestOpenCorruptXLSXCarriesParsingCause(t *testing.T) {
	path := writeFile(t, "master.xlsx", "not a zip archive")
	_, err := Open("master", path, Options{})
	if !errors.IsType(err, errors.TypeInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if !strings.Contains(err.Error(), string(errors.TypeParsing)) {
		t.Errorf("error should carry the decode failure: %v", err)
	}
}

func TestOpenEmptyTable(t *testing.T) {
	path := writeFile(t, "ledger.csv", "")
	_, err := Open("ledger", path, Options{})
	if err == nil || !strings.Contains(err.Error(), "no header row") {
		t.Errorf("expected header error, got %v", err)
	}
}

func TestOpenXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Unique ID", "出荷日", "商品名", "数量", "物流業者"},
		{"X1", "2025/07/02", "abc", "2", "SF"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	table, err := Open("ledger", path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	records, err := ShipmentRecords(table, DefaultLedgerColumns())
	if err != nil {
		t.Fatalf("ShipmentRecords: %v", err)
	}
	if len(records) != 1 || records[0].Carrier != "SF" || records[0].Date != "2025/07/02" {
		t.Errorf("unexpected records %+v", records)
	}

	if _, err := Open("ledger", path, Options{Sheet: "Missing"}); err == nil {
		t.Error("expected error for missing worksheet")
	}
}
