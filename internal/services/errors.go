package services

import "errors"

// Dashboard service errors. Handlers map them with errors.Is.
var (
	ErrNoWorkbookLoaded   = errors.New("no workbook loaded")
	ErrSheetNotFound      = errors.New("sheet not found")
	ErrNoEducationData    = errors.New("no education data in workbook")
	ErrInvalidUpload      = errors.New("invalid upload")
	ErrSubmissionDisabled = errors.New("backend submission disabled")
)
