package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	return sheet, rows
}

func TestPickListWorkbook(t *testing.T) {
	picked := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
	data, err := PickList(picklists.PickList{ID: 12}, []picklists.Line{
		{PartKey: "R10K", PartDescription: "resistor", BoxNo: 1, LocNo: 4, QuantityToPick: 6, Status: picklists.StatusCompleted, PickedAt: &picked},
		{PartKey: "R10K", PartDescription: "resistor", BoxNo: 2, LocNo: 1, QuantityToPick: 2, Status: picklists.StatusOpen},
	})
	if err != nil {
		t.Fatalf("PickList: %v", err)
	}

	sheet, rows := readRows(t, data)
	if sheet != "Pick list 12" {
		t.Fatalf("sheet = %q", sheet)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "part_key" || rows[0][5] != "quantity" {
		t.Fatalf("header = %v", rows[0])
	}
	want := []string{"R10K", "resistor", "1-4", "1", "4", "6", "completed", "2026-03-01 14:30"}
	if strings.Join(rows[1], "|") != strings.Join(want, "|") {
		t.Fatalf("row 1 = %v, want %v", rows[1], want)
	}
	if rows[2][2] != "2-1" || rows[2][6] != "open" {
		t.Fatalf("row 2 = %v", rows[2])
	}
}

func TestShoppingListWorkbook(t *testing.T) {
	data, err := ShoppingList(shopping.List{Name: "order: march/april"}, []shopping.Line{
		{PartKey: "LED1", Needed: 40, Note: "kit blinker"},
	})
	if err != nil {
		t.Fatalf("ShoppingList: %v", err)
	}
	sheet, rows := readRows(t, data)
	if sheet != "order_ march_april" {
		t.Fatalf("sheet = %q", sheet)
	}
	if len(rows) != 2 || rows[1][0] != "LED1" || rows[1][1] != "40" || rows[1][2] != "kit blinker" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestParseStockSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range [][]interface{}{
		{"part_key", "box", "loc", "qty"},
		{"R10K", 1, 2, 50},
		{},
		{" c100n ", "3", "1", "7"},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := ParseStockSheet(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseStockSheet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0] != (StockRow{Line: 2, PartKey: "R10K", BoxNo: 1, LocNo: 2, Qty: 50}) {
		t.Fatalf("row 0 = %+v", got[0])
	}
	if got[1] != (StockRow{Line: 4, PartKey: "c100n", BoxNo: 3, LocNo: 1, Qty: 7}) {
		t.Fatalf("row 1 = %+v", got[1])
	}
}

func TestParseStockSheetRejectsBadNumbers(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := []interface{}{"part_key", "box", "loc", "qty"}
	row := []interface{}{"R10K", "one", 2, 5}
	_ = f.SetSheetRow(sheet, "A1", &header)
	_ = f.SetSheetRow(sheet, "A2", &row)
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	_, err := ParseStockSheet(buf.Bytes())
	if err == nil || !strings.Contains(err.Error(), "row 2 column 2") {
		t.Fatalf("err = %v, want a row/column position", err)
	}
	if _, err := ParseStockSheet([]byte("not a workbook")); err == nil {
		t.Fatal("garbage input accepted")
	}
}
