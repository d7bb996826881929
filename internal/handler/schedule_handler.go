package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	"github.com/campushq/sis-core-api/internal/service"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
	"github.com/campushq/sis-core-api/pkg/response"
)

// scheduleReportService is the surface the handler needs from the schedule service.
type scheduleReportService interface {
	ScheduleReport(ctx context.Context, req dto.ScheduleReportRequest, actorID string) (*dto.ExecutionResponse, error)
	ListExecutions(ctx context.Context, filter models.ExecutionFilter) ([]*dto.ExecutionDetailResponse, *models.Pagination, error)
	GetExecution(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExecutionDetailResponse, error)
	Cancel(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExecutionDetailResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ScheduleHandler exposes scheduled report execution endpoints.
type ScheduleHandler struct {
	service scheduleReportService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc scheduleReportService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// ScheduleReport godoc
// @Summary Schedule a report run
// @Description Queues a report generation job and returns the pending execution record
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleReportRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/reports [post]
func (h *ScheduleHandler) ScheduleReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ScheduleReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	res, err := h.service.ScheduleReport(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, res, nil)
}

// ListExecutions godoc
// @Summary List report executions
// @Tags Schedules
// @Produce json
// @Param status query string false "Execution status"
// @Param type query string false "Report type"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules/executions [get]
func (h *ScheduleHandler) ListExecutions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ExecutionFilter{
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ExecutionStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown execution status"))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("type"); raw != "" {
		reportType := models.ReportType(raw)
		filter.ReportType = &reportType
	}

	// Non-admin callers only see their own runs.
	if claims.Role != models.RoleSuperAdmin && claims.Role != models.RoleAdmin {
		filter.CreatedBy = claims.UserID
	}

	executions, pagination, err := h.service.ListExecutions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, executions, pagination)
}

// GetExecution godoc
// @Summary Get one report execution
// @Tags Schedules
// @Produce json
// @Param id path string true "Execution ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/executions/{id} [get]
func (h *ScheduleHandler) GetExecution(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	execution, err := h.service.GetExecution(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, execution, nil)
}

// Cancel godoc
// @Summary Cancel a pending execution
// @Description Only PENDING and RETRYING runs can be cancelled; terminal runs return 409
// @Tags Schedules
// @Produce json
// @Param id path string true "Execution ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/executions/{id}/cancel [post]
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	execution, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, execution, nil)
}

// Download godoc
// @Summary Download a generated report
// @Description Streams the report file referenced by a signed download token
// @Tags Schedules
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/executions/download/{token} [get]
func (h *ScheduleHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report file"))
		return
	}

	contentType := "application/octet-stream"
	switch download.Format {
	case models.ReportFormatCSV:
		contentType = "text/csv"
	case models.ReportFormatPDF:
		contentType = "application/pdf"
	}

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, download.File, headers)
}
