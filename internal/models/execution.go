package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportType enumerates supported scheduled report categories.
type ReportType string

const (
	ReportTypeAttendance ReportType = "attendance"
	ReportTypeAbsences   ReportType = "absences"
	ReportTypeSchedules  ReportType = "schedules"
	ReportTypeSummary    ReportType = "summary"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ExecutionStatus captures scheduled report job lifecycle states.
type ExecutionStatus string

const (
	ExecutionStatusPending    ExecutionStatus = "PENDING"
	ExecutionStatusInProgress ExecutionStatus = "IN_PROGRESS"
	ExecutionStatusCompleted  ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed     ExecutionStatus = "FAILED"
	ExecutionStatusRetrying   ExecutionStatus = "RETRYING"
	ExecutionStatusCancelled  ExecutionStatus = "CANCELLED"
)

// Valid returns true when the status is a supported value.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionStatusPending, ExecutionStatusInProgress, ExecutionStatusCompleted,
		ExecutionStatusFailed, ExecutionStatusRetrying, ExecutionStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	default:
		return false
	}
}

// ScheduleExecutionHistory is one run record of a scheduled report job.
type ScheduleExecutionHistory struct {
	ID           string          `db:"id" json:"id"`
	ReportType   ReportType      `db:"report_type" json:"report_type"`
	Params       ExecutionParams `db:"params" json:"params"`
	Status       ExecutionStatus `db:"status" json:"status"`
	ScheduledAt  time.Time       `db:"scheduled_at" json:"scheduled_at"`
	StartedAt    *time.Time      `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	DurationMs   *int64          `db:"duration_ms" json:"duration_ms,omitempty"`
	RetryAttempt int             `db:"retry_attempt" json:"retry_attempt"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	StackTrace   *string         `db:"stack_trace" json:"stack_trace,omitempty"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	FileSize     *int64          `db:"file_size" json:"file_size,omitempty"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// IsSuccessful reports whether the run finished without error.
func (h *ScheduleExecutionHistory) IsSuccessful() bool {
	return h.Status == ExecutionStatusCompleted && h.ErrorMessage == nil
}

// DurationSeconds converts the recorded duration to seconds.
// Returns nil when no duration has been recorded.
func (h *ScheduleExecutionHistory) DurationSeconds() *float64 {
	if h.DurationMs == nil {
		return nil
	}
	s := float64(*h.DurationMs) / 1000.0
	return &s
}

// FormattedFileSize renders the result file size in human-readable units.
func (h *ScheduleExecutionHistory) FormattedFileSize() string {
	if h.FileSize == nil {
		return ""
	}
	size := float64(*h.FileSize)
	switch {
	case size >= 1<<30:
		return fmt.Sprintf("%.1f GB", size/(1<<30))
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", size/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", size/(1<<10))
	default:
		return fmt.Sprintf("%d B", *h.FileSize)
	}
}

// ExecutionParams stores request-scoped options persisted as JSONB.
type ExecutionParams struct {
	TermID   string            `json:"termId"`
	CampusID *string           `json:"campusId,omitempty"`
	Format   ReportFormat      `json:"format"`
	Extras   map[string]string `json:"extras,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p ExecutionParams) Value() (driver.Value, error) {
	if p.Extras == nil {
		p.Extras = map[string]string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal execution params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ExecutionParams) Scan(value interface{}) error {
	if value == nil {
		*p = ExecutionParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ExecutionParams", value)
	}
	if len(data) == 0 {
		*p = ExecutionParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal execution params: %w", err)
	}
	return nil
}

// ExecutionFilter scopes listing queries.
type ExecutionFilter struct {
	Status     *ExecutionStatus
	ReportType *ReportType
	CreatedBy  string
	Page       int
	PageSize   int
}
