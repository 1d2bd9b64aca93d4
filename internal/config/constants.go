package config

import "time"

const (
	AppName = "eduboard"

	DefaultBackendURL     = "http://localhost:8000/api"
	DefaultSubmitPath     = "/upload-data"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultRequestTimeout = 60 * time.Second

	// 20 MiB comfortably covers statistical workbooks.
	DefaultMaxUploadBytes = 20 << 20
	DefaultUploadField    = "excel_file"

	DefaultLogFile = "logs/eduboard.log"
)
