package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyInput is wrapped in a ParseFailure when Parse receives no bytes.
var ErrEmptyInput = errors.New("empty spreadsheet input")

// ParseFailure is returned when the bytes cannot be read as a spreadsheet
// container. Err holds the reader's own error.
type ParseFailure struct {
	Format string
	Err    error
}

func (e *ParseFailure) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("unable to read spreadsheet: %v", e.Err)
	}
	return fmt.Sprintf("unable to read %s spreadsheet: %v", e.Format, e.Err)
}

func (e *ParseFailure) Unwrap() error { return e.Err }

// IsParseFailure reports whether err is or wraps a ParseFailure.
func IsParseFailure(err error) bool {
	var pf *ParseFailure
	return errors.As(err, &pf)
}

// Sheet is the row-major grid of one worksheet.
type Sheet struct {
	Name  string
	Rows  [][]Cell
	Range string
}

// Workbook is an in-memory spreadsheet in sheet order.
type Workbook struct {
	SheetNames []string
	Sheets     map[string]*Sheet
	Format     string
}

// Sheet returns the named sheet or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	if w == nil {
		return nil
	}
	return w.Sheets[name]
}

// Ordered returns the sheets in workbook order.
func (w *Workbook) Ordered() []*Sheet {
	if w == nil {
		return nil
	}
	out := make([]*Sheet, 0, len(w.SheetNames))
	for _, name := range w.SheetNames {
		if s, ok := w.Sheets[name]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (w *Workbook) add(s *Sheet) {
	if _, dup := w.Sheets[s.Name]; !dup {
		w.SheetNames = append(w.SheetNames, s.Name)
	}
	w.Sheets[s.Name] = s
}

const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

var legacyMIMEs = []string{
	"application/vnd.ms-excel",
	"application/x-ole-storage",
}

// DetectFormat sniffs the container type from the leading bytes.
func DetectFormat(data []byte) string {
	mt := mimetype.Detect(data)
	for _, m := range legacyMIMEs {
		if mt.Is(m) {
			return FormatXLS
		}
	}
	return FormatXLSX
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseFailure{Err: err}
	}
	return Parse(data)
}

// Parse reads a spreadsheet container (Office Open XML or legacy BIFF) into
// a Workbook. Every reader failure is reported as *ParseFailure.
func Parse(data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, &ParseFailure{Err: ErrEmptyInput}
	}

	switch format := DetectFormat(data); format {
	case FormatXLS:
		wb, err := parseXLS(data)
		if err != nil {
			return nil, &ParseFailure{Format: format, Err: err}
		}
		return wb, nil
	default:
		wb, err := parseXLSX(data)
		if err != nil {
			return nil, &ParseFailure{Format: format, Err: err}
		}
		return wb, nil
	}
}

func parseXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Sheets: make(map[string]*Sheet), Format: FormatXLSX}
	for _, name := range f.GetSheetList() {
		raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		rows := make([][]Cell, len(raw))
		for r, values := range raw {
			cells := make([]Cell, len(values))
			for c, v := range values {
				if v == "" {
					continue
				}
				cells[c] = classifyXLSX(f, name, c+1, r+1, v)
			}
			rows[r] = cells
		}

		// Files written by some libraries declare "A1" regardless of content.
		grid := gridRange(rows)
		sheetRange, _ := f.GetSheetDimension(name)
		if sheetRange == "" || !coversRange(sheetRange, grid) {
			sheetRange = grid
		}
		wb.add(&Sheet{Name: name, Rows: rows, Range: sheetRange})
	}
	return wb, nil
}

// classifyXLSX uses the stored cell type so that text such as "2018" stays a
// string and numeric values become numbers.
func classifyXLSX(f *excelize.File, sheet string, col, row int, raw string) Cell {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Infer(raw)
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return Infer(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return Boolean(raw == "1" || raw == "TRUE" || raw == "true")
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return Text(raw)
	default:
		return Infer(raw)
	}
}

func parseXLS(data []byte) (wb *Workbook, err error) {
	// The legacy reader panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			wb = nil
			err = fmt.Errorf("malformed legacy workbook: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if book.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}

	wb = &Workbook{Sheets: make(map[string]*Sheet), Format: FormatXLS}
	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}

		rows := make([][]Cell, 0, int(ws.MaxRow)+1)
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]Cell, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = Infer(row.Col(c))
			}
			rows = append(rows, trimTrailingEmpty(cells))
		}
		rows = trimTrailingRows(rows)

		name := ws.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		wb.add(&Sheet{Name: name, Rows: rows, Range: gridRange(rows)})
	}
	return wb, nil
}

func trimTrailingEmpty(cells []Cell) []Cell {
	end := len(cells)
	for end > 0 && cells[end-1].IsEmpty() {
		end--
	}
	return cells[:end]
}

func trimTrailingRows(rows [][]Cell) [][]Cell {
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}

// gridRange computes the smallest A1-style range holding every populated
// cell, or "" when there is none.
func gridRange(rows [][]Cell) string {
	minCol, minRow, maxCol, maxRow := 0, 0, 0, 0
	for r, row := range rows {
		first, last := -1, -1
		for c, cell := range row {
			if cell.IsEmpty() {
				continue
			}
			if first < 0 {
				first = c
			}
			last = c
		}
		if first < 0 {
			continue
		}
		if maxRow == 0 {
			minRow, minCol = r+1, first+1
		}
		minCol = min(minCol, first+1)
		maxCol = max(maxCol, last+1)
		maxRow = r + 1
	}
	if maxRow == 0 {
		return ""
	}
	start, err := excelize.CoordinatesToCellName(minCol, minRow)
	if err != nil {
		return ""
	}
	end, err := excelize.CoordinatesToCellName(maxCol, maxRow)
	if err != nil {
		return ""
	}
	return start + ":" + end
}

// rangeBounds returns the corners of an A1-style reference. A single cell is
// its own range.
func rangeBounds(ref string) (c1, r1, c2, r2 int, err error) {
	first, last, ok := strings.Cut(ref, ":")
	if !ok {
		last = first
	}
	if c1, r1, err = excelize.CellNameToCoordinates(first); err != nil {
		return 0, 0, 0, 0, err
	}
	if c2, r2, err = excelize.CellNameToCoordinates(last); err != nil {
		return 0, 0, 0, 0, err
	}
	return c1, r1, c2, r2, nil
}

// coversRange reports whether declared spans every cell of grid.
func coversRange(declared, grid string) bool {
	if grid == "" {
		return true
	}
	dc1, dr1, dc2, dr2, err := rangeBounds(declared)
	if err != nil {
		return false
	}
	gc1, gr1, gc2, gr2, err := rangeBounds(grid)
	if err != nil {
		return false
	}
	return dc1 <= gc1 && dr1 <= gr1 && dc2 >= gc2 && dr2 >= gr2
}
