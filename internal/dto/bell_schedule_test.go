package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/sis-core-api/internal/models"
)

func sampleSchedule() *models.BellSchedule {
	return &models.BellSchedule{
		ID:           "bs-1",
		Name:         "Winter Regular",
		ScheduleType: models.BellScheduleRegular,
		CampusID:     "campus-1",
		SchoolYearID: "sy-2026",
		Active:       true,
		Periods: []models.BellSchedulePeriod{
			{Sequence: 1, Label: "Period 1", StartTime: "08:00", EndTime: "08:50"},
			{Sequence: 2, Label: "Passing", StartTime: "08:50", EndTime: "08:55", IsPassing: true},
			{Sequence: 3, Label: "Period 2", StartTime: "08:55", EndTime: "09:45"},
		},
	}
}

func TestNewBellScheduleViewFlags(t *testing.T) {
	now := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	view := NewBellScheduleView(sampleSchedule(), now)

	assert.Equal(t, 3, view.PeriodCount)
	assert.False(t, view.HasOverrides)
	assert.True(t, view.InEffectToday)
	assert.Equal(t, "Winter Regular (regular)", view.DisplayLabel)
	require.Len(t, view.Periods, 3)
	assert.Equal(t, "08:00-08:50", view.Periods[0].TimeRange)
}

func TestNewBellScheduleViewOverrideWinsOverInactive(t *testing.T) {
	now := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	schedule := sampleSchedule()
	schedule.Active = false
	schedule.Overrides = []models.BellScheduleDateOverride{
		{Date: now, Reason: "exam week"},
	}

	view := NewBellScheduleView(schedule, now)
	assert.True(t, view.HasOverrides)
	assert.True(t, view.InEffectToday)
	require.Len(t, view.Overrides, 1)
	assert.Equal(t, "2026-01-12", view.Overrides[0].Date)
}

func TestNewSubstituteAssignmentDTO(t *testing.T) {
	campus := "North Campus"
	notes := "bring worksheets"
	record := models.SubstituteAssignmentRecord{
		SubstituteAssignment: models.SubstituteAssignment{
			ID:   "sub-1",
			Date: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
			Notes: &notes,
		},
		AbsentTeacherName:     "Pat Doe",
		SubstituteTeacherName: "Sam Lee",
		ClassName:             "10-A",
		PeriodLabel:           "Period 3",
		CampusName:            &campus,
	}

	dto := NewSubstituteAssignmentDTO(record)
	assert.Equal(t, "2026-02-03", dto.Date)
	assert.Equal(t, "Pat Doe", dto.AbsentTeacherName)
	assert.Equal(t, "North Campus", dto.CampusName)
	assert.Equal(t, "bring worksheets", dto.Notes)
}

func TestNewStudentSummaryDTOHandlesMissingContext(t *testing.T) {
	dto := NewStudentSummaryDTO(models.StudentSummaryRow{
		StudentID:   "stu-1",
		StudentName: "Alex Kim",
		NIS:         "20260001",
		GradeLevel:  "10",
	})
	assert.Equal(t, "Alex Kim", dto.StudentName)
	assert.Empty(t, dto.ClassName)
	assert.Empty(t, dto.HomeroomTeacher)
}
