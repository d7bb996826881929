package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	"github.com/campushq/sis-core-api/internal/service"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
	"github.com/campushq/sis-core-api/pkg/response"
)

// BellScheduleHandler exposes bell schedule management and view endpoints.
type BellScheduleHandler struct {
	service *service.BellScheduleService
}

// NewBellScheduleHandler constructs the handler.
func NewBellScheduleHandler(svc *service.BellScheduleService) *BellScheduleHandler {
	return &BellScheduleHandler{service: svc}
}

// List godoc
// @Summary List bell schedules
// @Tags BellSchedules
// @Produce json
// @Param campusId query string false "Campus ID"
// @Param schoolYearId query string false "School year ID"
// @Param type query string false "Schedule type"
// @Param active query bool false "Active flag"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bell-schedules [get]
func (h *BellScheduleHandler) List(c *gin.Context) {
	filter := models.BellScheduleFilter{
		CampusID:     c.Query("campusId"),
		SchoolYearID: c.Query("schoolYearId"),
		Page:         queryInt(c, "page"),
		PageSize:     queryInt(c, "pageSize"),
	}
	if raw := c.Query("type"); raw != "" {
		t := models.BellScheduleType(raw)
		filter.ScheduleType = &t
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}

	schedules, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Create godoc
// @Summary Create a bell schedule
// @Tags BellSchedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateBellScheduleRequest true "Bell schedule"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bell-schedules [post]
func (h *BellScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateBellScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bell schedule payload"))
		return
	}

	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, schedule)
}

// Get godoc
// @Summary Get a bell schedule
// @Tags BellSchedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bell-schedules/{id} [get]
func (h *BellScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, schedule, nil)
}

// View godoc
// @Summary Flattened bell schedule view
// @Description Display-ready projection with computed flags for the requested date
// @Tags BellSchedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param date query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bell-schedules/{id}/view [get]
func (h *BellScheduleHandler) View(c *gin.Context) {
	now := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		now = parsed
	}

	view, err := h.service.View(c.Request.Context(), c.Param("id"), now)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}

// Update godoc
// @Summary Update a bell schedule
// @Tags BellSchedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.UpdateBellScheduleRequest true "Bell schedule"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bell-schedules/{id} [put]
func (h *BellScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateBellScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bell schedule payload"))
		return
	}

	schedule, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete a bell schedule
// @Tags BellSchedules
// @Param id path string true "Schedule ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bell-schedules/{id} [delete]
func (h *BellScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddOverride godoc
// @Summary Register a date override
// @Description Marks a specific date as governed by this schedule regardless of its active flag
// @Tags BellSchedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body object true "Override payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bell-schedules/{id}/overrides [post]
func (h *BellScheduleHandler) AddOverride(c *gin.Context) {
	var payload struct {
		Date   string `json:"date" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	override, err := h.service.AddOverride(c.Request.Context(), c.Param("id"), date, payload.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, override)
}

func queryInt(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
