package spreadsheet

import (
	"eduboard/pkg/contracts/domain"
)

// Result bundles everything derived from one workbook.
type Result struct {
	Workbook  *Workbook
	Processed ProcessedWorkbook
	Education domain.EducationDataset
	Summary   domain.ProcessingSummary
}

// Process parses data and runs the whole normalization pipeline.
func Process(data []byte) (*Result, error) {
	wb, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return FromWorkbook(wb), nil
}

// FromWorkbook runs the normalization pipeline on an already parsed workbook.
func FromWorkbook(wb *Workbook) *Result {
	processed := ProcessWorkbook(wb)
	return &Result{
		Workbook:  wb,
		Processed: processed,
		Education: ExtractEducationDataset(wb, processed),
		Summary:   Summarize(wb, processed),
	}
}

// SheetInfos lists the processed sheets in workbook order without their data.
func (r *Result) SheetInfos() []domain.SheetInfo {
	out := make([]domain.SheetInfo, 0, len(r.Processed.Order))
	for _, s := range r.Processed.Ordered() {
		out = append(out, domain.SheetInfo{
			Name:        s.Name,
			Headers:     s.Headers,
			RowCount:    s.RowCount,
			RecordCount: len(s.Records),
			Range:       s.Range,
		})
	}
	return out
}
