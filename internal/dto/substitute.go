package dto

import (
	"github.com/campushq/sis-core-api/internal/models"
)

// CreateSubstituteRequest captures POST /substitutes payload.
type CreateSubstituteRequest struct {
	AbsentTeacherID     string  `json:"absent_teacher_id" validate:"required"`
	SubstituteTeacherID string  `json:"substitute_teacher_id" validate:"required"`
	ClassID             string  `json:"class_id" validate:"required"`
	PeriodID            string  `json:"period_id" validate:"required"`
	Date                string  `json:"date" validate:"required,datetime=2006-01-02"`
	Notes               *string `json:"notes,omitempty"`
}

// SubstituteAssignmentDTO is a flat pre-resolved projection for UI tables.
// Everything is already a display string so list views never hit the
// referenced teacher/class/period rows again.
type SubstituteAssignmentDTO struct {
	ID                    string  `json:"id"`
	Date                  string  `json:"date"`
	AbsentTeacherName     string  `json:"absent_teacher_name"`
	SubstituteTeacherName string  `json:"substitute_teacher_name"`
	ClassName             string  `json:"class_name"`
	PeriodLabel           string  `json:"period_label"`
	CampusName            string  `json:"campus_name,omitempty"`
	Notes                 string  `json:"notes,omitempty"`
}

// NewSubstituteAssignmentDTO flattens a joined record into the projection.
func NewSubstituteAssignmentDTO(record models.SubstituteAssignmentRecord) SubstituteAssignmentDTO {
	dto := SubstituteAssignmentDTO{
		ID:                    record.ID,
		Date:                  record.Date.Format("2006-01-02"),
		AbsentTeacherName:     record.AbsentTeacherName,
		SubstituteTeacherName: record.SubstituteTeacherName,
		ClassName:             record.ClassName,
		PeriodLabel:           record.PeriodLabel,
	}
	if record.CampusName != nil {
		dto.CampusName = *record.CampusName
	}
	if record.Notes != nil {
		dto.Notes = *record.Notes
	}
	return dto
}

// StudentSummaryDTO is a flat identifier-plus-display-strings projection of a
// student with enrollment context resolved up front.
type StudentSummaryDTO struct {
	StudentID       string `json:"student_id"`
	StudentName     string `json:"student_name"`
	NIS             string `json:"nis"`
	GradeLevel      string `json:"grade_level"`
	ClassName       string `json:"class_name,omitempty"`
	HomeroomTeacher string `json:"homeroom_teacher,omitempty"`
	CampusName      string `json:"campus_name,omitempty"`
}

// NewStudentSummaryDTO flattens a summary row into the projection.
func NewStudentSummaryDTO(row models.StudentSummaryRow) StudentSummaryDTO {
	dto := StudentSummaryDTO{
		StudentID:   row.StudentID,
		StudentName: row.StudentName,
		NIS:         row.NIS,
		GradeLevel:  row.GradeLevel,
	}
	if row.ClassName != nil {
		dto.ClassName = *row.ClassName
	}
	if row.HomeroomTeacher != nil {
		dto.HomeroomTeacher = *row.HomeroomTeacher
	}
	if row.CampusName != nil {
		dto.CampusName = *row.CampusName
	}
	return dto
}
