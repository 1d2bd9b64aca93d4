package spreadsheet

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CellKind tags the value held by a Cell.
type CellKind uint8

const (
	KindEmpty CellKind = iota
	KindString
	KindNumber
	KindBool
)

func (k CellKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

// Cell is a single spreadsheet value. Only the field matching Kind is meaningful.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Bool bool
}

// Empty returns the empty cell.
func Empty() Cell { return Cell{} }

// Text returns a string cell. An empty string yields the empty cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: KindString, Str: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: KindNumber, Num: f} }

// Boolean returns a boolean cell.
func Boolean(b bool) Cell { return Cell{Kind: KindBool, Bool: b} }

// Infer classifies a raw textual value: "" is empty, anything strconv can
// read as a float is a number, everything else (whitespace included) is a string.
func Infer(raw string) Cell {
	if raw == "" {
		return Cell{}
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Text(raw)
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool { return c.Kind == KindEmpty }

// IsString reports whether the cell holds text.
func (c Cell) IsString() bool { return c.Kind == KindString }

// IsNumber reports whether the cell holds a number.
func (c Cell) IsNumber() bool { return c.Kind == KindNumber }

// Float returns the numeric value and whether the cell is numeric.
func (c Cell) Float() (float64, bool) {
	if c.Kind != KindNumber {
		return 0, false
	}
	return c.Num, true
}

// String renders the cell as display text.
func (c Cell) String() string {
	switch c.Kind {
	case KindString:
		return c.Str
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// MarshalJSON encodes the cell as null, a string, a number or a bool.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindString:
		return json.Marshal(c.Str)
	case KindNumber:
		return json.Marshal(c.Num)
	case KindBool:
		return json.Marshal(c.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the same four shapes MarshalJSON produces.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*c = Empty()
	case string:
		*c = Text(t)
	case float64:
		*c = Number(t)
	case bool:
		*c = Boolean(t)
	default:
		*c = Text(string(data))
	}
	return nil
}
