package dto

import (
	"github.com/campushq/sis-core-api/internal/models"
)

// ScheduleReportRequest captures POST /schedules/reports payload.
type ScheduleReportRequest struct {
	Type     models.ReportType   `json:"type" validate:"required"`
	TermID   string              `json:"termId" validate:"required"`
	CampusID *string             `json:"campusId,omitempty"`
	Format   models.ReportFormat `json:"format" validate:"required"`
}

// ExecutionResponse is returned after scheduling a run.
type ExecutionResponse struct {
	ID     string                 `json:"id"`
	Status models.ExecutionStatus `json:"status"`
}

// ExecutionDetailResponse exposes one run record with derived fields resolved.
type ExecutionDetailResponse struct {
	ID              string                 `json:"id"`
	ReportType      models.ReportType      `json:"report_type"`
	Status          models.ExecutionStatus `json:"status"`
	ScheduledAt     string                 `json:"scheduled_at"`
	StartedAt       *string                `json:"started_at,omitempty"`
	CompletedAt     *string                `json:"completed_at,omitempty"`
	DurationSeconds *float64               `json:"duration_seconds,omitempty"`
	RetryAttempt    int                    `json:"retry_attempt"`
	Successful      bool                   `json:"successful"`
	Error           *string                `json:"error,omitempty"`
	ResultURL       *string                `json:"result_url,omitempty"`
	FileSize        string                 `json:"file_size,omitempty"`
}

// NewExecutionDetailResponse flattens a history record for transport.
func NewExecutionDetailResponse(h *models.ScheduleExecutionHistory) *ExecutionDetailResponse {
	resp := &ExecutionDetailResponse{
		ID:              h.ID,
		ReportType:      h.ReportType,
		Status:          h.Status,
		ScheduledAt:     h.ScheduledAt.Format("2006-01-02T15:04:05Z07:00"),
		DurationSeconds: h.DurationSeconds(),
		RetryAttempt:    h.RetryAttempt,
		Successful:      h.IsSuccessful(),
		Error:           h.ErrorMessage,
		ResultURL:       h.ResultURL,
		FileSize:        h.FormattedFileSize(),
	}
	if h.StartedAt != nil {
		s := h.StartedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.StartedAt = &s
	}
	if h.CompletedAt != nil {
		s := h.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.CompletedAt = &s
	}
	return resp
}
