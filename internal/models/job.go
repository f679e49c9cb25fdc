package models

import "time"

// ExportFormat is the file type produced by an export job.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportHTML ExportFormat = "html"
	ExportXLSX ExportFormat = "xlsx"
)

func (f ExportFormat) Valid() bool {
	switch f {
	case ExportCSV, ExportHTML, ExportXLSX:
		return true
	}
	return false
}

// ContentType is the MIME type of the rendered file.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportHTML:
		return "text/html; charset=utf-8"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ExportJob tracks an asynchronous injection history export.
type ExportJob struct {
	ID        int          `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Format    ExportFormat `json:"format" db:"format"`
	Status    string       `json:"status" db:"status"`
	FilePath  *string      `json:"-" db:"file_path"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

const (
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusCompleted = "completed"
)

// ExportMessage is the Kafka payload for an export job.
type ExportMessage struct {
	ID     int          `json:"id"`
	UserID string       `json:"user_id"`
	Format ExportFormat `json:"format"`
}

type NewExportRequest struct {
	Format ExportFormat `json:"format"`
}
