// Package events contains the WebSocket event contract of the dashboard.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeConnection        MessageType = "connection"
	MessageTypeWorkbookProcessed MessageType = "workbook:processed"
	MessageTypeWorkbookSubmitted MessageType = "workbook:submitted"
	MessageTypeHeartbeat         MessageType = "heartbeat"
	MessageTypeError             MessageType = "error"
)

// WebSocketMessage is the envelope of every message sent to clients.
type WebSocketMessage struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WorkbookProcessedEvent is broadcast after an upload replaced the current workbook.
type WorkbookProcessedEvent struct {
	UploadID      string   `json:"upload_id"`
	FileName      string   `json:"file_name"`
	SheetNames    []string `json:"sheet_names"`
	ProcessedRows int      `json:"processed_rows"`
	EducationRows int      `json:"education_rows"`
	Succeeded     bool     `json:"processing_success"`
}

// WorkbookSubmittedEvent is broadcast after a submission attempt.
type WorkbookSubmittedEvent struct {
	UploadID   string `json:"upload_id"`
	FileName   string `json:"file_name"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message,omitempty"`
}
