package models

import "time"

// BellScheduleType enumerates supported bell schedule variants.
type BellScheduleType string

const (
	BellScheduleRegular      BellScheduleType = "regular"
	BellScheduleAssembly     BellScheduleType = "assembly"
	BellScheduleEarlyRelease BellScheduleType = "early_release"
	BellScheduleExam         BellScheduleType = "exam"
	BellScheduleDelayed      BellScheduleType = "delayed"
)

// Valid returns true when the type is a supported value.
func (t BellScheduleType) Valid() bool {
	switch t {
	case BellScheduleRegular, BellScheduleAssembly, BellScheduleEarlyRelease, BellScheduleExam, BellScheduleDelayed:
		return true
	default:
		return false
	}
}

// BellSchedule represents a named set of period times for a campus and year.
type BellSchedule struct {
	ID           string           `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	ScheduleType BellScheduleType `db:"schedule_type" json:"schedule_type"`
	CampusID     string           `db:"campus_id" json:"campus_id"`
	SchoolYearID string           `db:"school_year_id" json:"school_year_id"`
	Active       bool             `db:"active" json:"active"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`

	Periods   []BellSchedulePeriod       `json:"periods,omitempty"`
	Overrides []BellScheduleDateOverride `json:"overrides,omitempty"`
}

// BellSchedulePeriod is one timed slot within a bell schedule.
type BellSchedulePeriod struct {
	ID         string `db:"id" json:"id"`
	ScheduleID string `db:"schedule_id" json:"schedule_id"`
	Sequence   int    `db:"sequence" json:"sequence"`
	Label      string `db:"label" json:"label"`
	StartTime  string `db:"start_time" json:"start_time"`
	EndTime    string `db:"end_time" json:"end_time"`
	IsPassing  bool   `db:"is_passing" json:"is_passing"`
}

// BellScheduleDateOverride swaps the schedule in effect on a specific date.
type BellScheduleDateOverride struct {
	ID         string    `db:"id" json:"id"`
	ScheduleID string    `db:"schedule_id" json:"schedule_id"`
	Date       time.Time `db:"date" json:"date"`
	Reason     string    `db:"reason" json:"reason"`
}

// BellScheduleFilter describes query params for listing bell schedules.
type BellScheduleFilter struct {
	CampusID     string
	SchoolYearID string
	ScheduleType *BellScheduleType
	Active       *bool
	Page         int
	PageSize     int
}

// InEffectOn reports whether the schedule applies on the given date, taking
// date overrides into account before the active flag.
func (s *BellSchedule) InEffectOn(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	for _, o := range s.Overrides {
		if o.Date.Truncate(24 * time.Hour).Equal(day) {
			return true
		}
	}
	return s.Active
}
