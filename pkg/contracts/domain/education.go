// Package domain contains the data shapes shared between the normalizer,
// the HTTP API and the remote backend.
package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// EducationRow is one category of the dropout dataset with its per-period values.
// Series keys are the header labels of the source sheet, usually years.
type EducationRow struct {
	Category string
	Series   map[string]float64
}

// Periods returns the series keys in ascending order.
func (r EducationRow) Periods() []string {
	keys := make([]string, 0, len(r.Series))
	for k := range r.Series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON flattens the row into {"category": ..., "<period>": value, ...}.
func (r EducationRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Series)+1)
	for k, v := range r.Series {
		out[k] = v
	}
	out["category"] = r.Category
	return json.Marshal(out)
}

// UnmarshalJSON reads the flattened form produced by MarshalJSON.
func (r *EducationRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Category = ""
	r.Series = make(map[string]float64, len(raw))
	for k, v := range raw {
		if k == "category" {
			if err := json.Unmarshal(v, &r.Category); err != nil {
				return fmt.Errorf("category: %w", err)
			}
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("series %q: %w", k, err)
		}
		r.Series[k] = f
	}
	return nil
}

// EducationDataset is the ordered list of categories extracted from a workbook.
type EducationDataset []EducationRow

// Periods returns the union of series keys across all rows, sorted.
func (d EducationDataset) Periods() []string {
	seen := make(map[string]struct{})
	for _, row := range d {
		for k := range row.Series {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ProcessingSummary reports how much of a workbook produced records.
type ProcessingSummary struct {
	SheetCount        int  `json:"total_sheets"`
	TotalRows         int  `json:"total_rows"`
	ProcessedRowCount int  `json:"processed_rows"`
	Succeeded         bool `json:"processing_success"`
}

// SheetInfo describes one processed sheet without its data.
type SheetInfo struct {
	Name        string   `json:"name"`
	Headers     []string `json:"headers"`
	RowCount    int      `json:"row_count"`
	RecordCount int      `json:"record_count"`
	Range       string   `json:"range,omitempty"`
}

// UploadInfo describes the workbook currently held by the dashboard.
type UploadInfo struct {
	ID           string            `json:"id"`
	FileName     string            `json:"file_name"`
	Size         int64             `json:"size"`
	HumanSize    string            `json:"human_size"`
	UploadedAt   time.Time         `json:"uploaded_at"`
	Sheets       []SheetInfo       `json:"sheets"`
	HasEducation bool              `json:"has_education_data"`
	Summary      ProcessingSummary `json:"summary"`
}

// CategoryAverage is the mean of a category across its periods.
type CategoryAverage struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
}

// PeriodAverage is the mean of all categories for one period.
type PeriodAverage struct {
	Period  string  `json:"period"`
	Average float64 `json:"average"`
}

// DatasetOverview bundles a dataset with its aggregate figures.
type DatasetOverview struct {
	Data             EducationDataset  `json:"data"`
	Periods          []string          `json:"periods"`
	CategoryAverages []CategoryAverage `json:"category_averages"`
	PeriodAverages   []PeriodAverage   `json:"period_averages"`
}
