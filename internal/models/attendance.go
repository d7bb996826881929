package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "H"
	AttendanceStatusSick    AttendanceStatus = "S"
	AttendanceStatusExcused AttendanceStatus = "I"
	AttendanceStatusAbsent  AttendanceStatus = "A"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusSick, AttendanceStatusExcused, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// TrendDirection labels the direction of an attendance trend.
type TrendDirection string

const (
	TrendImproving TrendDirection = "IMPROVING"
	TrendDeclining TrendDirection = "DECLINING"
	TrendStable    TrendDirection = "STABLE"
)

// AttendanceStatistics is the aggregated read model for a reporting period.
type AttendanceStatistics struct {
	TermID      string                 `json:"term_id"`
	CampusID    *string                `json:"campus_id,omitempty"`
	From        time.Time              `json:"from"`
	To          time.Time              `json:"to"`
	Overall     OverallStats           `json:"overall"`
	Daily       []DailyStats           `json:"daily"`
	Trend       TrendAnalysis          `json:"trend"`
	Grades      []GradeStats           `json:"grades"`
	Absences    []StudentAbsenceRecord `json:"absences"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// OverallStats aggregates totals across the whole period.
type OverallStats struct {
	TotalStudents  int     `json:"total_students"`
	TotalDays      int     `json:"total_days"`
	Present        int     `json:"present"`
	Sick           int     `json:"sick"`
	Excused        int     `json:"excused"`
	Absent         int     `json:"absent"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// DailyStats aggregates counts for a single calendar date.
type DailyStats struct {
	Date           time.Time `db:"date" json:"date"`
	Present        int       `db:"present" json:"present"`
	Sick           int       `db:"sick" json:"sick"`
	Excused        int       `db:"excused" json:"excused"`
	Absent         int       `db:"absent" json:"absent"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// TrendAnalysis compares the first and second half of the period.
type TrendAnalysis struct {
	Direction      TrendDirection `json:"direction"`
	FirstHalfRate  float64        `json:"first_half_rate"`
	SecondHalfRate float64        `json:"second_half_rate"`
	RateChange     float64        `json:"rate_change"`
}

// GradeStats aggregates counts per grade level.
type GradeStats struct {
	GradeLevel     string  `db:"grade_level" json:"grade_level"`
	Students       int     `db:"students" json:"students"`
	Present        int     `db:"present" json:"present"`
	Absent         int     `db:"absent" json:"absent"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// StudentAbsenceRecord flags students whose absences exceed the chronic threshold.
type StudentAbsenceRecord struct {
	StudentID   string  `db:"student_id" json:"student_id"`
	StudentName string  `db:"student_name" json:"student_name"`
	ClassName   *string `db:"class_name" json:"class_name,omitempty"`
	AbsentDays  int     `db:"absent_days" json:"absent_days"`
	SickDays    int     `db:"sick_days" json:"sick_days"`
	ExcusedDays int     `db:"excused_days" json:"excused_days"`
}

// Rate computes present/total as a percentage; 0 when the day is empty.
func (d DailyStats) Rate() float64 {
	total := d.Present + d.Sick + d.Excused + d.Absent
	if total == 0 {
		return 0
	}
	return float64(d.Present) / float64(total) * 100
}

// AttendanceStatisticsFilter scopes aggregation queries.
type AttendanceStatisticsFilter struct {
	TermID   string
	CampusID string
	From     time.Time
	To       time.Time
}
