package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/sis-core-api/internal/models"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
	"github.com/campushq/sis-core-api/pkg/response"
)

// attendanceStatsProvider is the slice of the stats service this handler uses.
type attendanceStatsProvider interface {
	Statistics(ctx context.Context, filter models.AttendanceStatisticsFilter) (*models.AttendanceStatistics, error)
}

// AttendanceHandler exposes attendance statistics endpoints.
type AttendanceHandler struct {
	stats attendanceStatsProvider
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(stats attendanceStatsProvider) *AttendanceHandler {
	return &AttendanceHandler{stats: stats}
}

// Statistics godoc
// @Summary Attendance statistics
// @Description Aggregated attendance statistics for a term, optionally scoped to a campus and date window
// @Tags Attendance
// @Produce json
// @Param termId query string true "Term ID"
// @Param campusId query string false "Campus ID"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/statistics [get]
func (h *AttendanceHandler) Statistics(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId required"))
		return
	}

	filter := models.AttendanceStatisticsFilter{
		TermID:   termID,
		CampusID: c.Query("campusId"),
	}

	// Without explicit dates the window defaults to the trailing 30 days.
	now := time.Now().UTC().Truncate(24 * time.Hour)
	filter.From = now.AddDate(0, 0, -30)
	filter.To = now

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
			return
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
			return
		}
		filter.To = to
	}

	stats, err := h.stats.Statistics(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}
