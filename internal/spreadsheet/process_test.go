package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(cells ...Cell) []Cell { return cells }

func TestIsHeaderRow(t *testing.T) {
	tests := []struct {
		name string
		row  []Cell
		want bool
	}{
		{"year labels", row(Text("Nivel de formación"), Text("2018"), Text("2019")), true},
		{"keyword only", row(Text("NIVEL"), Number(1)), true},
		{"accented keyword uppercase", row(Text("FORMACIÓN"), Text("x")), true},
		{"año keyword", row(Text("Año"), Text("Valor")), true},
		{"year substring anywhere", row(Text("Total 2020"), Number(3)), true},
		{"single cell", row(Text("Nivel de formación")), false},
		{"single cell with trailing blanks", row(Text("2018"), Empty(), Empty()), false},
		{"numeric years do not count", row(Number(2018), Number(2019)), false},
		{"no marker", row(Text("Categoría"), Text("Valor")), false},
		{"empty", row(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHeaderRow(tt.row))
		})
	}
}

func TestProcessSheet(t *testing.T) {
	t.Run("blank sheet", func(t *testing.T) {
		got := ProcessSheet(&Sheet{Name: "Vacía"})

		assert.Empty(t, got.Headers)
		assert.Empty(t, got.Records)
		assert.Equal(t, 0, got.RowCount)
		assert.Equal(t, -1, got.HeaderIndex())
	})

	t.Run("drops blank rows and keys records by header", func(t *testing.T) {
		sheet := &Sheet{
			Name: "Deserción Técnica",
			Rows: [][]Cell{
				row(Text("Informe anual")),
				row(Empty(), Empty()),
				row(Text("Nivel de formación"), Text("2018"), Text("2019")),
				nil,
				row(Text("Universitario"), Number(0.0879), Number(0.0845)),
				row(Text("Nota al pie")),
			},
			Range: "A1:C6",
		}

		got := ProcessSheet(sheet)

		assert.Equal(t, 4, got.RowCount)
		assert.Equal(t, 1, got.HeaderIndex())
		assert.Equal(t, []string{"Nivel de formación", "2018", "2019"}, got.Headers)
		require.Len(t, got.Records, 1)
		assert.Equal(t, Record{
			"Nivel de formación": Text("Universitario"),
			"2018":               Number(0.0879),
			"2019":               Number(0.0845),
		}, got.Records[0])
		assert.Equal(t, "A1:C6", got.Range)
	})

	t.Run("short rows pad with empty cells", func(t *testing.T) {
		sheet := &Sheet{Rows: [][]Cell{
			row(Text("Nivel"), Text("2018"), Text("2019")),
			row(Text("Especialización"), Number(4.23)),
		}}

		got := ProcessSheet(sheet)

		require.Len(t, got.Records, 1)
		assert.True(t, got.Records[0]["2019"].IsEmpty())
		assert.Equal(t, Number(4.23), got.Records[0]["2018"])
	})

	t.Run("blank header cells shift labels left", func(t *testing.T) {
		sheet := &Sheet{Rows: [][]Cell{
			row(Empty(), Text("Nivel"), Text("2018")),
			row(Text("ignored"), Text("Universitario"), Number(0.1)),
		}}

		got := ProcessSheet(sheet)

		assert.Equal(t, []string{"Nivel", "2018"}, got.Headers)
		require.Len(t, got.Records, 1)
		assert.Equal(t, Record{
			"Nivel": Text("ignored"),
			"2018":  Text("Universitario"),
		}, got.Records[0])
	})

	t.Run("table offset from column A is read from its first column", func(t *testing.T) {
		sheet := &Sheet{Rows: [][]Cell{
			row(Empty(), Text("Tasa de deserción 2018-2019")),
			nil,
			row(Empty(), Text("Nivel de formación"), Text("2018"), Text("2019")),
			row(Empty(), Text("Universitario"), Number(0.0879), Number(0.0845)),
		}}

		got := ProcessSheet(sheet)

		assert.Equal(t, 3, got.RowCount)
		assert.Equal(t, 1, got.HeaderIndex())
		assert.Equal(t, row(Text("Tasa de deserción 2018-2019")), got.RawData[0])
		require.Len(t, got.Records, 1)
		assert.Equal(t, Record{
			"Nivel de formación": Text("Universitario"),
			"2018":               Number(0.0879),
			"2019":               Number(0.0845),
		}, got.Records[0])
	})

	t.Run("zero cells stay numeric", func(t *testing.T) {
		sheet := &Sheet{Rows: [][]Cell{
			row(Text("Nivel"), Text("2018")),
			row(Text("Doctorado"), Number(0)),
		}}

		got := ProcessSheet(sheet)

		require.Len(t, got.Records, 1)
		assert.Equal(t, Number(0), got.Records[0]["2018"])
		assert.False(t, got.Records[0]["2018"].IsEmpty())
	})

	t.Run("duplicate labels keep the later column", func(t *testing.T) {
		sheet := &Sheet{Rows: [][]Cell{
			row(Text("Nivel"), Text("2018"), Text("2018")),
			row(Text("Universitario"), Number(1), Number(2)),
		}}

		got := ProcessSheet(sheet)

		require.Len(t, got.Records, 1)
		assert.Equal(t, Number(2), got.Records[0]["2018"])
	})

	t.Run("single cell rows after header are skipped", func(t *testing.T) {
		sheet := &Sheet{Rows: [][]Cell{
			row(Text("Nivel"), Text("2018")),
			row(Text("solo")),
			row(Text("Universitario"), Number(0.2)),
		}}

		got := ProcessSheet(sheet)
		assert.Len(t, got.Records, 1)
	})

	t.Run("no header row", func(t *testing.T) {
		sheet := &Sheet{Rows: [][]Cell{
			row(Text("Categoría"), Text("Valor")),
			row(Text("A"), Number(1)),
		}}

		got := ProcessSheet(sheet)

		assert.Equal(t, 2, got.RowCount)
		assert.Empty(t, got.Headers)
		assert.Empty(t, got.Records)
	})

	t.Run("header detection is idempotent", func(t *testing.T) {
		sheet := &Sheet{Rows: [][]Cell{
			row(Text("x")),
			row(Text("Año"), Text("Total")),
			row(Text("2018"), Number(5)),
		}}

		first := ProcessSheet(sheet)
		second := ProcessSheet(sheet)

		assert.Equal(t, first.HeaderIndex(), second.HeaderIndex())
		assert.Equal(t, first.Records, second.Records)
	})

	t.Run("nil sheet", func(t *testing.T) {
		got := ProcessSheet(nil)
		assert.Empty(t, got.Records)
	})
}

func TestProcessWorkbook(t *testing.T) {
	wb := &Workbook{
		SheetNames: []string{"B", "A"},
		Sheets: map[string]*Sheet{
			"A": {Name: "A", Rows: [][]Cell{row(Text("Nivel"), Text("2018")), row(Text("x"), Number(1))}},
			"B": {Name: "B"},
		},
	}

	got := ProcessWorkbook(wb)

	assert.Equal(t, []string{"B", "A"}, got.Order)
	require.Len(t, got.Sheets, 2)
	a, ok := got.Get("A")
	require.True(t, ok)
	assert.Len(t, a.Records, 1)
	assert.Equal(t, "B", got.Ordered()[0].Name)
}
