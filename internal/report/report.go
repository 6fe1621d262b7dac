// Package report renders pick lists and shopping lists as xlsx workbooks and
// reads stock import sheets.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
	"github.com/xuri/excelize/v2"
)

const timeLayout = "2006-01-02 15:04"

// PickList writes one row per line in the order given, plus a header row.
func PickList(pl picklists.PickList, lines []picklists.Line) ([]byte, error) {
	header := []interface{}{"part_key", "description", "location", "box", "loc", "quantity", "status", "picked_at"}
	rows := make([][]interface{}, 0, len(lines))
	for _, l := range lines {
		pickedAt := ""
		if l.PickedAt != nil {
			pickedAt = l.PickedAt.Format(timeLayout)
		}
		rows = append(rows, []interface{}{
			l.PartKey,
			l.PartDescription,
			parts.LocationRef(l.BoxNo, l.LocNo),
			l.BoxNo,
			l.LocNo,
			l.QuantityToPick,
			string(l.Status),
			pickedAt,
		})
	}
	title := fmt.Sprintf("Pick list %d", pl.ID)
	return workbook(title, header, rows)
}

func ShoppingList(l shopping.List, lines []shopping.Line) ([]byte, error) {
	header := []interface{}{"part_key", "needed", "note"}
	rows := make([][]interface{}, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []interface{}{line.PartKey, line.Needed, line.Note})
	}
	return workbook(sheetName(l.Name), header, rows)
}

func workbook(sheet string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims a title to what Excel accepts as a sheet name.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "Sheet1"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// StockRow is one row of a stock import sheet.
type StockRow struct {
	Line    int
	PartKey string
	BoxNo   int
	LocNo   int
	Qty     int
}

// ParseStockSheet reads the first sheet of an xlsx file with columns
// part_key, box, loc, qty. The first row is a header. Blank rows are
// skipped.
func ParseStockSheet(data []byte) ([]StockRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var out []StockRow
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		line := i + 1
		if len(row) < 4 {
			return nil, fmt.Errorf("row %d: want 4 columns (part_key, box, loc, qty), got %d", line, len(row))
		}
		r := StockRow{Line: line, PartKey: strings.TrimSpace(row[0])}
		for j, dst := range []*int{&r.BoxNo, &r.LocNo, &r.Qty} {
			n, err := strconv.Atoi(strings.TrimSpace(row[j+1]))
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %q is not a number", line, j+2, row[j+1])
			}
			*dst = n
		}
		out = append(out, r)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
