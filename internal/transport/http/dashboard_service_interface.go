package http

import (
	"context"

	"eduboard/internal/services"
	"eduboard/internal/spreadsheet"
	"eduboard/pkg/contracts/domain"
)

// DashboardServiceInterface defines the interface for the dashboard service
type DashboardServiceInterface interface {
	LoadUpload(ctx context.Context, fileName, contentType string, data []byte) (*services.Upload, error)
	Current() (*services.Upload, error)
	Sheets() ([]domain.SheetInfo, error)
	Sheet(name string) (spreadsheet.ProcessedSheet, error)
	Education() (domain.EducationDataset, error)
	Summary() (domain.ProcessingSummary, error)
	Export() (spreadsheet.Export, error)
	Submit(ctx context.Context, opts services.SubmitOptions) (services.SubmitResult, error)
}

var _ DashboardServiceInterface = (*services.DashboardService)(nil)
