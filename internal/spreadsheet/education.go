package spreadsheet

import (
	"math"

	"eduboard/pkg/contracts/domain"
)

// Sheet name fragments that identify the dropout sheet.
var educationSheetMarkers = []string{"deserción", "td"}

// CategoryKeys are the header labels that may hold the education level,
// in priority order. None of them ends up in a row's series.
var CategoryKeys = []string{"Nivel de formación", "nivel", "Nivel"}

// IsEducationSheet reports whether name marks a dropout sheet.
func IsEducationSheet(name string) bool {
	return containsAnyFold(name, educationSheetMarkers...)
}

// FindEducationSheet returns the first dropout sheet name in workbook order.
func FindEducationSheet(names []string) (string, bool) {
	for _, name := range names {
		if IsEducationSheet(name) {
			return name, true
		}
	}
	return "", false
}

// Normalize turns a ratio into a percentage: values below 1 are scaled by
// 100, everything else is returned as is. No rounding is applied, so
// 0.0879 may come back as 8.790000000000001.
func Normalize(v float64) float64 {
	if v < 1 {
		return v * 100
	}
	return v
}

// ExtractEducationDataset builds the chart dataset from the first dropout
// sheet. It returns nil when no sheet matches or the sheet has no records.
// Records without a category are skipped.
func ExtractEducationDataset(wb *Workbook, processed ProcessedWorkbook) domain.EducationDataset {
	names := processed.Order
	if wb != nil {
		names = wb.SheetNames
	}

	name, ok := FindEducationSheet(names)
	if !ok {
		return nil
	}
	sheet, ok := processed.Get(name)
	if !ok || len(sheet.Records) == 0 {
		return nil
	}

	dataset := make(domain.EducationDataset, 0, len(sheet.Records))
	for _, rec := range sheet.Records {
		category, ok := recordCategory(rec)
		if !ok {
			continue
		}

		row := domain.EducationRow{Category: category, Series: make(map[string]float64)}
		for label, cell := range rec {
			if isCategoryKey(label) {
				continue
			}
			if v, ok := cell.Float(); ok {
				row.Series[label] = Normalize(v)
			}
		}
		dataset = append(dataset, row)
	}
	return dataset
}

func recordCategory(rec Record) (string, bool) {
	for _, key := range CategoryKeys {
		if c, ok := rec[key]; ok && truthy(c) {
			return c.String(), true
		}
	}
	return "", false
}

func isCategoryKey(label string) bool {
	for _, key := range CategoryKeys {
		if label == key {
			return true
		}
	}
	return false
}

// truthy rejects the values a spreadsheet user would read as "no category".
func truthy(c Cell) bool {
	switch c.Kind {
	case KindString:
		return c.Str != ""
	case KindNumber:
		return c.Num != 0 && !math.IsNaN(c.Num)
	case KindBool:
		return c.Bool
	default:
		return false
	}
}
