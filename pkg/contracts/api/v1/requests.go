// Package api contains the HTTP contract of the dashboard API.
// Version v1 represents the current stable API version.
package api

import (
	"eduboard/pkg/contracts/domain"
)

// SubmitRequest asks the server to forward the current dataset to the
// remote backend.
type SubmitRequest struct {
	FileName string `json:"file_name,omitempty" validate:"omitempty,max=255,filename,excelname"`
	Type     string `json:"type,omitempty" validate:"omitempty,max=64"`
}

// SheetQuery narrows a sheet listing.
type SheetQuery struct {
	WithRecordsOnly bool `json:"with_records_only" query:"with_records_only"`
}

// SuccessResponse is the envelope of every successful JSON response.
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  int         `json:"count,omitempty"`
}

// UploadResponse is returned after a workbook has been processed.
type UploadResponse struct {
	Upload        domain.UploadInfo       `json:"upload"`
	EducationData domain.EducationDataset `json:"education_data"`
}

// SubmitResponse reports the outcome of a backend submission.
type SubmitResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message,omitempty"`
	FileName   string `json:"file_name"`
	Records    int    `json:"records"`
}
