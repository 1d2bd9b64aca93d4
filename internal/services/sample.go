package services

import (
	"github.com/montanaflynn/stats"

	"eduboard/pkg/contracts/domain"
)

var samplePeriods = []string{"2018", "2019", "2020", "2021", "2022"}

// Dropout rates (%) published by the Ministry of Education, shown before any
// workbook is uploaded.
var sampleRates = []struct {
	category string
	values   []float64
}{
	{"Universitario", []float64{8.79, 8.45, 9.12, 8.98, 8.65}},
	{"Técnico y Tecnológico", []float64{13.85, 13.42, 14.15, 13.78, 13.21}},
	{"Técnico Profesional", []float64{17.41, 16.89, 18.24, 17.65, 16.98}},
	{"Especialización", []float64{4.23, 4.12, 4.45, 4.31, 4.18}},
}

// SampleDataset returns the built-in dataset with its averages.
func SampleDataset() domain.DatasetOverview {
	ds := make(domain.EducationDataset, 0, len(sampleRates))
	for _, r := range sampleRates {
		row := domain.EducationRow{Category: r.category, Series: make(map[string]float64, len(r.values))}
		for i, v := range r.values {
			row.Series[samplePeriods[i]] = v
		}
		ds = append(ds, row)
	}
	return Overview(ds)
}

// Overview computes per-category and per-period means, rounded to two
// decimals. Categories without values are left out of the averages.
func Overview(ds domain.EducationDataset) domain.DatasetOverview {
	periods := ds.Periods()
	out := domain.DatasetOverview{
		Data:             ds,
		Periods:          periods,
		CategoryAverages: make([]domain.CategoryAverage, 0, len(ds)),
		PeriodAverages:   make([]domain.PeriodAverage, 0, len(periods)),
	}

	for _, row := range ds {
		values := make(stats.Float64Data, 0, len(row.Series))
		for _, p := range row.Periods() {
			values = append(values, row.Series[p])
		}
		if avg, ok := mean(values); ok {
			out.CategoryAverages = append(out.CategoryAverages, domain.CategoryAverage{Category: row.Category, Average: avg})
		}
	}

	for _, p := range periods {
		var values stats.Float64Data
		for _, row := range ds {
			if v, ok := row.Series[p]; ok {
				values = append(values, v)
			}
		}
		if avg, ok := mean(values); ok {
			out.PeriodAverages = append(out.PeriodAverages, domain.PeriodAverage{Period: p, Average: avg})
		}
	}
	return out
}

func mean(values stats.Float64Data) (float64, bool) {
	m, err := stats.Mean(values)
	if err != nil {
		return 0, false
	}
	rounded, err := stats.Round(m, 2)
	if err != nil {
		return 0, false
	}
	return rounded, true
}
