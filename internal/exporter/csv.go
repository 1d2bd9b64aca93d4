package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"eduboard/internal/spreadsheet"
	"eduboard/pkg/contracts/domain"
)

// CategoryColumn is the first column of every education export.
const CategoryColumn = "category"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	bom bool
}

// CSVOption configures a CSVWriter.
type CSVOption func(*CSVWriter)

// WithBOM prefixes every output with a UTF-8 byte order mark.
func WithBOM() CSVOption {
	return func(w *CSVWriter) { w.bom = true }
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(opts ...CSVOption) *CSVWriter {
	w := &CSVWriter{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteOptions is one CSV table.
type WriteOptions struct {
	Headers []string
	Records [][]string
}

// WriteCSV writes the header row followed by every record.
func (w *CSVWriter) WriteCSV(out io.Writer, options WriteOptions) error {
	if w.bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteEducation writes one row per category with the periods sorted
// ascending. A period missing from a category leaves its cell empty.
func (w *CSVWriter) WriteEducation(out io.Writer, dataset domain.EducationDataset) error {
	return w.WriteCSV(out, EducationTable(dataset))
}

// WriteSheet writes the header labels followed by the records of a
// processed sheet, in header order.
func (w *CSVWriter) WriteSheet(out io.Writer, sheet spreadsheet.ProcessedSheet) error {
	records := make([][]string, 0, len(sheet.Records))
	for _, rec := range sheet.Records {
		row := make([]string, len(sheet.Headers))
		for i, label := range sheet.Headers {
			row[i] = formatCell(rec[label])
		}
		records = append(records, row)
	}
	return w.WriteCSV(out, WriteOptions{Headers: sheet.Headers, Records: records})
}

// EducationTable lays the dataset out as a CSV table.
func EducationTable(dataset domain.EducationDataset) WriteOptions {
	periods := dataset.Periods()
	headers := append([]string{CategoryColumn}, periods...)

	records := make([][]string, 0, len(dataset))
	for _, row := range dataset {
		record := make([]string, 0, len(headers))
		record = append(record, row.Category)
		for _, p := range periods {
			if v, ok := row.Series[p]; ok {
				record = append(record, formatFloat(v))
			} else {
				record = append(record, "")
			}
		}
		records = append(records, record)
	}
	return WriteOptions{Headers: headers, Records: records}
}

// WriteFile creates path, including missing parent directories, and hands it
// to write.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return write(f)
}
