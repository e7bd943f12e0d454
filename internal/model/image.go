package model

import "time"

// Image is one persisted metadata row describing a stored image.
// Metadata is immutable after creation; there is no update path.
type Image struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	SavedFilename    string    `json:"saved_filename"`
	FileExtension    string    `json:"file_extension"`
	FileSize         int64     `json:"file_size"`
	Width            int       `json:"width,omitempty"`
	Height           int       `json:"height,omitempty"`
	UploadedAt       time.Time `json:"upload_timestamp"`

	// URL is derived from the saved filename and the configured base URL.
	// It is never persisted, so a base-URL change takes effect everywhere.
	URL string `json:"url,omitempty"`
}

// LogEntry is one row of the application log kept in the database for the
// dashboard's log view.
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// ErrorEntry is an operational error notification surfaced on the dashboard
// until it is resolved.
type ErrorEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Resolved  bool      `json:"resolved"`
}

// DailyCount is the number of uploads on a single calendar day. Days with
// no uploads appear with Count 0 so the client can render a continuous trend.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ExtensionCount is the number of stored images sharing one file extension.
type ExtensionCount struct {
	FileExtension string `json:"file_extension"`
	Count         int    `json:"count"`
}

// Stats is the dashboard statistics payload.
type Stats struct {
	TotalUploads int              `json:"total_uploads"`
	TotalSize    int64            `json:"total_size"`
	DailyUploads []DailyCount     `json:"daily_uploads"`
	FileTypes    []ExtensionCount `json:"file_types"`
	ErrorCount   int              `json:"error_count"`
}
