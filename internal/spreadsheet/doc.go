// Package spreadsheet normalizes loosely structured workbooks into keyed
// records and an education dropout dataset.
//
// # Pipeline
//
//	bytes → Parse → Workbook → ProcessWorkbook → ProcessedWorkbook
//	                                   ↓
//	             ExtractEducationDataset / Summarize / BuildExport
//
// Parse sniffs the container: legacy BIFF files go through the xls reader,
// everything else through excelize. Any reader error is returned as
// *ParseFailure.
//
// # Header detection
//
// Blank rows are dropped first. The header is the first remaining row that
// is at least two cells wide and holds a string containing "20" or, ignoring
// case, "nivel", "formación" or "año". Rows after it become Records keyed by
// the header labels; a label is paired with the cell in its own column.
// Sheets without such a row produce no records and are not an error.
//
// # Education dataset
//
// The first sheet whose name contains "deserción" or "td" is the source.
// Each record's category comes from "Nivel de formación", "nivel" or "Nivel";
// every other numeric cell goes through Normalize, which scales ratios below
// 1 to percentages.
//
// The package keeps no state: every function returns a fresh value and is
// safe for concurrent use.
package spreadsheet
