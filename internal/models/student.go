package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID         string    `db:"id" json:"id"`
	NIS        string    `db:"nis" json:"nis"`
	FullName   string    `db:"full_name" json:"full_name"`
	Gender     string    `db:"gender" json:"gender"`
	BirthDate  time.Time `db:"birth_date" json:"birth_date"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentSummaryRow is the join-query shape backing the flat summary DTO.
type StudentSummaryRow struct {
	StudentID       string  `db:"student_id"`
	StudentName     string  `db:"student_name"`
	NIS             string  `db:"nis"`
	GradeLevel      string  `db:"grade_level"`
	ClassName       *string `db:"class_name"`
	HomeroomTeacher *string `db:"homeroom_teacher"`
	CampusName      *string `db:"campus_name"`
}
