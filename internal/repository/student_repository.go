package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/sis-core-api/internal/models"
)

// StudentRepository loads student rows and pre-resolved summary projections.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID loads a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, nis, full_name, gender, birth_date, grade_level, active, created_at, updated_at
FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// SummaryByID resolves the flat summary row for a student in a term.
// Class, homeroom teacher and campus stay NULL when the student has no
// active enrollment for the term.
func (r *StudentRepository) SummaryByID(ctx context.Context, studentID, termID string) (*models.StudentSummaryRow, error) {
	const query = `SELECT s.id AS student_id, s.full_name AS student_name, s.nis, s.grade_level,
c.name AS class_name,
t.full_name AS homeroom_teacher,
cp.name AS campus_name
FROM students s
LEFT JOIN enrollments e ON e.student_id = s.id AND e.term_id = $2 AND e.status = 'ACTIVE'
LEFT JOIN classes c ON c.id = e.class_id
LEFT JOIN teachers t ON t.id = c.homeroom_teacher_id
LEFT JOIN campuses cp ON cp.id = c.campus_id
WHERE s.id = $1`
	var row models.StudentSummaryRow
	if err := r.db.GetContext(ctx, &row, query, studentID, termID); err != nil {
		return nil, err
	}
	return &row, nil
}
