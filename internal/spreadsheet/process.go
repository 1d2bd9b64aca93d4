package spreadsheet

import (
	"strings"
)

// Record maps header labels to the cells of one data row.
type Record map[string]Cell

// ProcessedSheet is the normalized view of one sheet.
type ProcessedSheet struct {
	Name     string     `json:"name"`
	RawData  [][]Cell   `json:"raw_data"`
	Headers  []string   `json:"headers"`
	Records  []Record   `json:"processed_data"`
	RowCount int        `json:"row_count"`
	Range    string     `json:"range,omitempty"`
	header   headerSlot
}

type headerSlot struct {
	found bool
	index int
}

// HeaderIndex returns the position of the header row within RawData, or -1.
func (p ProcessedSheet) HeaderIndex() int {
	if !p.header.found {
		return -1
	}
	return p.header.index
}

// Header keywords matched case-insensitively against string cells.
var headerKeywords = []string{"nivel", "formación", "año"}

// yearMarker is matched case-sensitively; any string holding "20" counts,
// which also catches labels such as "Total 2020".
const yearMarker = "20"

const minRowWidth = 2

// rowWidth is the position after the last non-empty cell.
func rowWidth(row []Cell) int {
	for i := len(row) - 1; i >= 0; i-- {
		if !row[i].IsEmpty() {
			return i + 1
		}
	}
	return 0
}

func hasValue(row []Cell) bool {
	return rowWidth(row) > 0
}

// originColumn is the first column holding a value in any row. Sheets laid
// out from column B or later are read relative to it, so a table's first
// column is always index 0.
func originColumn(rows [][]Cell) int {
	origin := -1
	for _, row := range rows {
		for col, c := range row {
			if origin >= 0 && col >= origin {
				break
			}
			if !c.IsEmpty() {
				origin = col
				break
			}
		}
	}
	if origin < 0 {
		return 0
	}
	return origin
}

func fromColumn(row []Cell, origin int) []Cell {
	if origin >= len(row) {
		return nil
	}
	return row[origin:]
}

// IsHeaderRow reports whether row qualifies as a header: at least two cells
// wide and holding a string that contains a year marker or a level keyword.
func IsHeaderRow(row []Cell) bool {
	if rowWidth(row) < minRowWidth {
		return false
	}
	for _, c := range row {
		if !c.IsString() {
			continue
		}
		if strings.Contains(c.Str, yearMarker) || containsAnyFold(c.Str, headerKeywords...) {
			return true
		}
	}
	return false
}

// IsDataRow reports whether row can become a Record.
func IsDataRow(row []Cell) bool {
	return rowWidth(row) >= minRowWidth && hasValue(row)
}

// FindHeaderRow returns the index of the first header row in rows, or -1.
func FindHeaderRow(rows [][]Cell) int {
	for i, row := range rows {
		if IsHeaderRow(row) {
			return i
		}
	}
	return -1
}

// ProcessSheet drops blank rows, locates the header row and turns every
// later data row into a Record. A sheet without a header row yields no
// headers and no records; it is not an error.
func ProcessSheet(sheet *Sheet) ProcessedSheet {
	out := ProcessedSheet{
		RawData: [][]Cell{},
		Headers: []string{},
		Records: []Record{},
	}
	if sheet == nil {
		return out
	}
	out.Name = sheet.Name
	out.Range = sheet.Range

	origin := originColumn(sheet.Rows)
	for _, row := range sheet.Rows {
		row = fromColumn(row, origin)
		if hasValue(row) {
			out.RawData = append(out.RawData, row)
		}
	}
	out.RowCount = len(out.RawData)

	headerIdx := FindHeaderRow(out.RawData)
	if headerIdx < 0 {
		return out
	}

	for _, c := range out.RawData[headerIdx] {
		if !c.IsEmpty() {
			out.Headers = append(out.Headers, c.String())
		}
	}
	out.header = headerSlot{found: true, index: headerIdx}

	// Labels are zipped with cells by position after blank header cells are
	// dropped, so a gap in the header shifts later labels one column left.
	for _, row := range out.RawData[headerIdx+1:] {
		if !IsDataRow(row) {
			continue
		}
		rec := make(Record, len(out.Headers))
		for i, label := range out.Headers {
			if i < len(row) {
				rec[label] = row[i]
			} else {
				rec[label] = Empty()
			}
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

// ProcessedWorkbook holds every processed sheet in workbook order.
type ProcessedWorkbook struct {
	Order  []string
	Sheets map[string]ProcessedSheet
}

// Get returns the processed sheet by name.
func (p ProcessedWorkbook) Get(name string) (ProcessedSheet, bool) {
	s, ok := p.Sheets[name]
	return s, ok
}

// Ordered returns the processed sheets in workbook order.
func (p ProcessedWorkbook) Ordered() []ProcessedSheet {
	out := make([]ProcessedSheet, 0, len(p.Order))
	for _, name := range p.Order {
		out = append(out, p.Sheets[name])
	}
	return out
}

// ProcessWorkbook applies ProcessSheet to every sheet.
func ProcessWorkbook(wb *Workbook) ProcessedWorkbook {
	out := ProcessedWorkbook{Sheets: make(map[string]ProcessedSheet)}
	if wb == nil {
		return out
	}
	for _, sheet := range wb.Ordered() {
		out.Order = append(out.Order, sheet.Name)
		out.Sheets[sheet.Name] = ProcessSheet(sheet)
	}
	return out
}
