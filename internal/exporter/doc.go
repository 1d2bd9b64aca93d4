// Package exporter renders the normalized dashboard data as files.
//
// CSVWriter writes the education dataset and individual processed sheets as
// CSV, optionally prefixed with a UTF-8 BOM so that Excel detects the
// encoding of accented category names. XLSXWriter writes the dataset as a
// single-sheet workbook with numeric cells.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(exporter.WithBOM())
//	err := w.WriteEducation(out, dataset)
//
//	err = exporter.NewXLSXWriter().WriteEducation(out, dataset)
package exporter
