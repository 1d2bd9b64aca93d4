// Package validation holds the advisory checks applied to spreadsheet
// uploads and CLI inputs before they reach the normalizer.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFile = errors.New("file is not an Excel workbook")
	ErrFileMissing     = errors.New("file does not exist")
)

// Accepted spreadsheet MIME types.
const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEXLS  = "application/vnd.ms-excel"
)

var excelExtensions = map[string]bool{".xlsx": true, ".xls": true}

// FileValidator checks uploaded and local spreadsheet files.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// IsExcelName reports whether name carries a spreadsheet extension.
func IsExcelName(name string) bool {
	return excelExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsExcelMIME reports whether contentType is one of the spreadsheet types.
// Parameters such as charset are ignored.
func IsExcelMIME(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.ToLower(contentType))
	}
	return mt == MIMEXLSX || mt == MIMEXLS
}

// ValidateUpload accepts a file whose name has an .xlsx/.xls extension or
// whose declared content type is a spreadsheet type. Content is not inspected;
// the parser is the final judge.
func (v *FileValidator) ValidateUpload(name, contentType string) error {
	if IsExcelName(name) || IsExcelMIME(contentType) {
		return nil
	}

	v.logger.Warn("Rejected non-spreadsheet upload",
		slog.String("file", name),
		slog.String("content_type", contentType))
	return fmt.Errorf("%s (%s): %w", filepath.Base(name), contentType, ErrUnsupportedFile)
}

// ValidateFile checks that path exists, is a regular file and can be opened.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("%s: %w", path, ErrFileMissing)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()),
		slog.String("human_size", FormatFileSize(info.Size())))
	return nil
}

// ValidateExcelFile combines ValidateFile with the upload name check.
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	return v.ValidateUpload(path, "")
}

// ValidateOutputDirectory ensures dir exists or can be created.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
