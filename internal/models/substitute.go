package models

import "time"

// SubstituteAssignment covers a teacher absence with a substitute for a period.
type SubstituteAssignment struct {
	ID                  string    `db:"id" json:"id"`
	AbsentTeacherID     string    `db:"absent_teacher_id" json:"absent_teacher_id"`
	SubstituteTeacherID string    `db:"substitute_teacher_id" json:"substitute_teacher_id"`
	ClassID             string    `db:"class_id" json:"class_id"`
	PeriodID            string    `db:"period_id" json:"period_id"`
	Date                time.Time `db:"date" json:"date"`
	Notes               *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy           string    `db:"created_by" json:"created_by"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// SubstituteAssignmentRecord extends the row with pre-resolved display names
// so list views never chase the referenced entities.
type SubstituteAssignmentRecord struct {
	SubstituteAssignment
	AbsentTeacherName     string  `db:"absent_teacher_name" json:"absent_teacher_name"`
	SubstituteTeacherName string  `db:"substitute_teacher_name" json:"substitute_teacher_name"`
	ClassName             string  `db:"class_name" json:"class_name"`
	PeriodLabel           string  `db:"period_label" json:"period_label"`
	CampusName            *string `db:"campus_name" json:"campus_name,omitempty"`
}

// SubstituteFilter scopes listing queries.
type SubstituteFilter struct {
	Date      *time.Time
	CampusID  string
	TeacherID string
	Page      int
	PageSize  int
}
