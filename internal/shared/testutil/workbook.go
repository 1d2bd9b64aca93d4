package testutil

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// SheetFixture is one sheet of an in-memory workbook. Rows are written from
// A1 downwards; a nil value leaves the cell blank.
type SheetFixture struct {
	Name string
	Rows [][]interface{}
}

// WorkbookBytes builds an .xlsx workbook with the given sheets in order.
func WorkbookBytes(t testing.TB, sheets ...SheetFixture) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				t.Fatalf("rename sheet %q: %v", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, ref, v); err != nil {
					t.Fatalf("set %s!%s: %v", sheet.Name, ref, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// DropoutSheet is a small dropout table in ratio form.
func DropoutSheet(name string) SheetFixture {
	return SheetFixture{
		Name: name,
		Rows: [][]interface{}{
			{"Tasa de deserción anual"},
			{},
			{"Nivel de formación", "2018", "2019"},
			{"Universitario", 0.0879, 0.0845},
			{"Técnico Profesional", 0.1741, 0.1689},
		},
	}
}
