package exporter

import (
	"strconv"

	"eduboard/internal/spreadsheet"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatCell renders a raw cell; numbers keep their full precision.
func formatCell(c spreadsheet.Cell) string {
	switch c.Kind {
	case spreadsheet.KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case spreadsheet.KindBool:
		return strconv.FormatBool(c.Bool)
	case spreadsheet.KindString:
		return c.Str
	default:
		return ""
	}
}
