package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"eduboard/pkg/contracts/domain"
)

// EducationSheet is the sheet name used by XLSX exports.
const EducationSheet = "Education"

// XLSXWriter renders datasets as Office Open XML workbooks.
type XLSXWriter struct{}

// NewXLSXWriter creates a new XLSX writer.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// WriteEducation writes the dataset to a single sheet with a bold header row
// and numeric value cells. Values are percentages rounded to two decimals by
// the number format only; the stored value keeps full precision.
func (x *XLSXWriter) WriteEducation(out io.Writer, dataset domain.EducationDataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), EducationSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	periods := dataset.Periods()
	header := make([]interface{}, 0, len(periods)+1)
	header = append(header, CategoryColumn)
	for _, p := range periods {
		header = append(header, p)
	}
	if err := f.SetSheetRow(EducationSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range dataset {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, 0, len(periods)+1)
		values = append(values, row.Category)
		for _, p := range periods {
			if v, ok := row.Series[p]; ok {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}
		if err := f.SetSheetRow(EducationSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := x.style(f, len(periods)+1, len(dataset)+1); err != nil {
		return err
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (x *XLSXWriter) style(f *excelize.File, cols, rows int) error {
	lastHeader, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(EducationSheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if cols > 1 && rows > 1 {
		numFmt := "0.00"
		numeric, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return fmt.Errorf("failed to create number style: %w", err)
		}
		lastCell, err := excelize.CoordinatesToCellName(cols, rows)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(EducationSheet, "B2", lastCell, numeric); err != nil {
			return fmt.Errorf("failed to style values: %w", err)
		}
	}

	return f.SetColWidth(EducationSheet, "A", "A", 28)
}
