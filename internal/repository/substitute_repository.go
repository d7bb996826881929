package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/sis-core-api/internal/models"
)

const substituteRecordColumns = `sa.id, sa.absent_teacher_id, sa.substitute_teacher_id, sa.class_id, sa.period_id, sa.date, sa.notes, sa.created_by, sa.created_at,
at.full_name AS absent_teacher_name,
st.full_name AS substitute_teacher_name,
c.name AS class_name,
p.label AS period_label,
cp.name AS campus_name`

const substituteRecordJoins = `FROM substitute_assignments sa
JOIN teachers at ON at.id = sa.absent_teacher_id
JOIN teachers st ON st.id = sa.substitute_teacher_id
JOIN classes c ON c.id = sa.class_id
JOIN bell_schedule_periods p ON p.id = sa.period_id
LEFT JOIN campuses cp ON cp.id = c.campus_id`

// SubstituteRepository persists substitute teacher assignments.
type SubstituteRepository struct {
	db *sqlx.DB
}

// NewSubstituteRepository constructs the repository.
func NewSubstituteRepository(db *sqlx.DB) *SubstituteRepository {
	return &SubstituteRepository{db: db}
}

// Create inserts an assignment row.
func (r *SubstituteRepository) Create(ctx context.Context, assignment *models.SubstituteAssignment) error {
	if assignment == nil {
		return fmt.Errorf("substitute assignment payload is nil")
	}
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO substitute_assignments (id, absent_teacher_id, substitute_teacher_id, class_id, period_id, date, notes, created_by, created_at)
VALUES (:id, :absent_teacher_id, :substitute_teacher_id, :class_id, :period_id, :date, :notes, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("insert substitute assignment: %w", err)
	}
	return nil
}

// FindRecordByID loads an assignment with its resolved display names.
func (r *SubstituteRepository) FindRecordByID(ctx context.Context, id string) (*models.SubstituteAssignmentRecord, error) {
	query := fmt.Sprintf("SELECT %s\n%s\nWHERE sa.id = $1", substituteRecordColumns, substituteRecordJoins)
	var record models.SubstituteAssignmentRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecords returns resolved assignment rows matching the filter.
func (r *SubstituteRepository) ListRecords(ctx context.Context, filter models.SubstituteFilter) ([]models.SubstituteAssignmentRecord, int, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 3)

	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("sa.date = $%d", len(args)+1))
		args = append(args, filter.Date.Truncate(24*time.Hour))
	}
	if filter.CampusID != "" {
		conditions = append(conditions, fmt.Sprintf("c.campus_id = $%d", len(args)+1))
		args = append(args, filter.CampusID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("(sa.absent_teacher_id = $%d OR sa.substitute_teacher_id = $%d)", len(args)+1, len(args)+1))
		args = append(args, filter.TeacherID)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*)\n%s\nWHERE %s", substituteRecordJoins, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count substitute assignments: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s\n%s\nWHERE %s ORDER BY sa.date DESC, p.label ASC LIMIT $%d OFFSET $%d",
		substituteRecordColumns, substituteRecordJoins, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	var records []models.SubstituteAssignmentRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list substitute assignments: %w", err)
	}
	return records, total, nil
}

// Delete removes an assignment row.
func (r *SubstituteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM substitute_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete substitute assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("substitute assignment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExistsOverlap reports whether the substitute teacher already covers the same period and date.
func (r *SubstituteRepository) ExistsOverlap(ctx context.Context, substituteTeacherID, periodID string, date time.Time) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM substitute_assignments WHERE substitute_teacher_id = $1 AND period_id = $2 AND date = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, substituteTeacherID, periodID, date.Truncate(24*time.Hour)); err != nil {
		return false, fmt.Errorf("check substitute overlap: %w", err)
	}
	return exists, nil
}
