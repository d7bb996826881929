package dto

import (
	"fmt"
	"time"

	"github.com/campushq/sis-core-api/internal/models"
)

// CreateBellScheduleRequest captures POST /bell-schedules payload.
type CreateBellScheduleRequest struct {
	Name         string                   `json:"name" validate:"required"`
	ScheduleType models.BellScheduleType  `json:"schedule_type" validate:"required"`
	CampusID     string                   `json:"campus_id" validate:"required"`
	SchoolYearID string                   `json:"school_year_id" validate:"required"`
	Periods      []BellSchedulePeriodItem `json:"periods" validate:"required,min=1,dive"`
}

// UpdateBellScheduleRequest captures PUT /bell-schedules/:id payload.
type UpdateBellScheduleRequest struct {
	Name         string                   `json:"name" validate:"required"`
	ScheduleType models.BellScheduleType  `json:"schedule_type" validate:"required"`
	Active       *bool                    `json:"active,omitempty"`
	Periods      []BellSchedulePeriodItem `json:"periods,omitempty" validate:"omitempty,dive"`
}

// BellSchedulePeriodItem is one period entry in a create/update payload.
type BellSchedulePeriodItem struct {
	Sequence  int    `json:"sequence" validate:"min=1"`
	Label     string `json:"label" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	IsPassing bool   `json:"is_passing"`
}

// BellScheduleView is the flattened transport view of a bell schedule with
// display metadata pre-computed for UI tables.
type BellScheduleView struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	ScheduleType models.BellScheduleType `json:"schedule_type"`
	CampusID     string                  `json:"campus_id"`
	SchoolYearID string                  `json:"school_year_id"`
	Active       bool                    `json:"active"`

	Periods   []BellSchedulePeriodView `json:"periods"`
	Overrides []DateOverrideView       `json:"overrides,omitempty"`

	PeriodCount   int    `json:"period_count"`
	HasOverrides  bool   `json:"has_overrides"`
	InEffectToday bool   `json:"in_effect_today"`
	DisplayLabel  string `json:"display_label"`
}

// BellSchedulePeriodView is a period row rendered for transport.
type BellSchedulePeriodView struct {
	Sequence  int    `json:"sequence"`
	Label     string `json:"label"`
	TimeRange string `json:"time_range"`
	IsPassing bool   `json:"is_passing"`
}

// DateOverrideView is a date override rendered for transport.
type DateOverrideView struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// NewBellScheduleView flattens an entity into its transport view. The now
// argument anchors the in-effect-today flag so handlers stay testable.
func NewBellScheduleView(schedule *models.BellSchedule, now time.Time) *BellScheduleView {
	view := &BellScheduleView{
		ID:           schedule.ID,
		Name:         schedule.Name,
		ScheduleType: schedule.ScheduleType,
		CampusID:     schedule.CampusID,
		SchoolYearID: schedule.SchoolYearID,
		Active:       schedule.Active,
		PeriodCount:  len(schedule.Periods),
		HasOverrides: len(schedule.Overrides) > 0,
		DisplayLabel: fmt.Sprintf("%s (%s)", schedule.Name, schedule.ScheduleType),
	}
	view.InEffectToday = schedule.InEffectOn(now)

	view.Periods = make([]BellSchedulePeriodView, 0, len(schedule.Periods))
	for _, p := range schedule.Periods {
		view.Periods = append(view.Periods, BellSchedulePeriodView{
			Sequence:  p.Sequence,
			Label:     p.Label,
			TimeRange: fmt.Sprintf("%s-%s", p.StartTime, p.EndTime),
			IsPassing: p.IsPassing,
		})
	}
	for _, o := range schedule.Overrides {
		view.Overrides = append(view.Overrides, DateOverrideView{
			Date:   o.Date.Format("2006-01-02"),
			Reason: o.Reason,
		})
	}
	return view
}
