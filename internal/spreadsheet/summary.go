package spreadsheet

import (
	"time"

	"eduboard/pkg/contracts/domain"
)

// Summarize counts sheets, filtered rows and records. Processing succeeded
// when at least one record was produced.
func Summarize(wb *Workbook, processed ProcessedWorkbook) domain.ProcessingSummary {
	var s domain.ProcessingSummary
	if wb != nil {
		s.SheetCount = len(wb.SheetNames)
	} else {
		s.SheetCount = len(processed.Order)
	}
	for _, sheet := range processed.Sheets {
		s.TotalRows += sheet.RowCount
		s.ProcessedRowCount += len(sheet.Records)
	}
	s.Succeeded = s.ProcessedRowCount > 0
	return s
}

// ExportMetadata describes an export bundle.
type ExportMetadata struct {
	Timestamp   time.Time `json:"timestamp"`
	TotalSheets int       `json:"total_sheets"`
	SheetNames  []string  `json:"sheet_names"`
}

// Export is the full result of processing one workbook.
type Export struct {
	Metadata      ExportMetadata            `json:"metadata"`
	Sheets        map[string]ProcessedSheet `json:"sheets"`
	EducationData domain.EducationDataset   `json:"education_data"`
	Summary       domain.ProcessingSummary  `json:"summary"`
}

// BuildExport assembles the export bundle stamped with now.
func BuildExport(wb *Workbook, processed ProcessedWorkbook, now time.Time) Export {
	names := processed.Order
	if wb != nil {
		names = wb.SheetNames
	}
	sheetNames := append([]string{}, names...)

	return Export{
		Metadata: ExportMetadata{
			Timestamp:   now.UTC(),
			TotalSheets: len(sheetNames),
			SheetNames:  sheetNames,
		},
		Sheets:        processed.Sheets,
		EducationData: ExtractEducationDataset(wb, processed),
		Summary:       Summarize(wb, processed),
	}
}
