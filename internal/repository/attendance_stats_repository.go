package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/sis-core-api/internal/models"
)

// AttendanceStatsRepository runs aggregation queries over daily attendance rows.
type AttendanceStatsRepository struct {
	db *sqlx.DB
}

// NewAttendanceStatsRepository constructs the repository.
func NewAttendanceStatsRepository(db *sqlx.DB) *AttendanceStatsRepository {
	return &AttendanceStatsRepository{db: db}
}

func statsConditions(filter models.AttendanceStatisticsFilter) (string, []interface{}) {
	where := []string{"e.term_id = $1", "da.date >= $2", "da.date <= $3"}
	args := []interface{}{filter.TermID, filter.From, filter.To}
	if filter.CampusID != "" {
		where = append(where, fmt.Sprintf("c.campus_id = $%d", len(args)+1))
		args = append(args, filter.CampusID)
	}
	return strings.Join(where, " AND "), args
}

type overallRow struct {
	TotalStudents int `db:"total_students"`
	TotalDays     int `db:"total_days"`
	Present       int `db:"present"`
	Sick          int `db:"sick"`
	Excused       int `db:"excused"`
	Absent        int `db:"absent"`
}

// Overall aggregates totals across the whole period.
func (r *AttendanceStatsRepository) Overall(ctx context.Context, filter models.AttendanceStatisticsFilter) (models.OverallStats, error) {
	where, args := statsConditions(filter)
	query := fmt.Sprintf(`SELECT
COUNT(DISTINCT e.student_id) AS total_students,
COUNT(DISTINCT da.date) AS total_days,
COUNT(*) FILTER (WHERE da.status = 'H') AS present,
COUNT(*) FILTER (WHERE da.status = 'S') AS sick,
COUNT(*) FILTER (WHERE da.status = 'I') AS excused,
COUNT(*) FILTER (WHERE da.status = 'A') AS absent
FROM daily_attendance da
JOIN enrollments e ON e.id = da.enrollment_id
LEFT JOIN classes c ON c.id = e.class_id
WHERE %s`, where)

	var row overallRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return models.OverallStats{}, fmt.Errorf("aggregate overall attendance: %w", err)
	}

	stats := models.OverallStats{
		TotalStudents: row.TotalStudents,
		TotalDays:     row.TotalDays,
		Present:       row.Present,
		Sick:          row.Sick,
		Excused:       row.Excused,
		Absent:        row.Absent,
	}
	total := row.Present + row.Sick + row.Excused + row.Absent
	if total > 0 {
		stats.AttendanceRate = float64(row.Present) / float64(total) * 100
	}
	return stats, nil
}

// Daily aggregates per-date counts, ordered by date.
func (r *AttendanceStatsRepository) Daily(ctx context.Context, filter models.AttendanceStatisticsFilter) ([]models.DailyStats, error) {
	where, args := statsConditions(filter)
	query := fmt.Sprintf(`SELECT da.date,
COUNT(*) FILTER (WHERE da.status = 'H') AS present,
COUNT(*) FILTER (WHERE da.status = 'S') AS sick,
COUNT(*) FILTER (WHERE da.status = 'I') AS excused,
COUNT(*) FILTER (WHERE da.status = 'A') AS absent
FROM daily_attendance da
JOIN enrollments e ON e.id = da.enrollment_id
LEFT JOIN classes c ON c.id = e.class_id
WHERE %s
GROUP BY da.date ORDER BY da.date ASC`, where)

	var rows []models.DailyStats
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate daily attendance: %w", err)
	}
	for i := range rows {
		rows[i].AttendanceRate = rows[i].Rate()
	}
	return rows, nil
}

// ByGrade aggregates counts per grade level.
func (r *AttendanceStatsRepository) ByGrade(ctx context.Context, filter models.AttendanceStatisticsFilter) ([]models.GradeStats, error) {
	where, args := statsConditions(filter)
	query := fmt.Sprintf(`SELECT s.grade_level,
COUNT(DISTINCT e.student_id) AS students,
COUNT(*) FILTER (WHERE da.status = 'H') AS present,
COUNT(*) FILTER (WHERE da.status = 'A') AS absent
FROM daily_attendance da
JOIN enrollments e ON e.id = da.enrollment_id
JOIN students s ON s.id = e.student_id
LEFT JOIN classes c ON c.id = e.class_id
WHERE %s
GROUP BY s.grade_level ORDER BY s.grade_level ASC`, where)

	var rows []models.GradeStats
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate attendance by grade: %w", err)
	}
	for i := range rows {
		total := rows[i].Present + rows[i].Absent
		if total > 0 {
			rows[i].AttendanceRate = float64(rows[i].Present) / float64(total) * 100
		}
	}
	return rows, nil
}

// ChronicAbsences lists students whose absences meet or exceed the threshold.
func (r *AttendanceStatsRepository) ChronicAbsences(ctx context.Context, filter models.AttendanceStatisticsFilter, threshold int) ([]models.StudentAbsenceRecord, error) {
	where, args := statsConditions(filter)
	query := fmt.Sprintf(`SELECT e.student_id, s.full_name AS student_name, c.name AS class_name,
COUNT(*) FILTER (WHERE da.status = 'A') AS absent_days,
COUNT(*) FILTER (WHERE da.status = 'S') AS sick_days,
COUNT(*) FILTER (WHERE da.status = 'I') AS excused_days
FROM daily_attendance da
JOIN enrollments e ON e.id = da.enrollment_id
JOIN students s ON s.id = e.student_id
LEFT JOIN classes c ON c.id = e.class_id
WHERE %s
GROUP BY e.student_id, s.full_name, c.name
HAVING COUNT(*) FILTER (WHERE da.status = 'A') >= $%d
ORDER BY absent_days DESC`, where, len(args)+1)
	args = append(args, threshold)

	var rows []models.StudentAbsenceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate chronic absences: %w", err)
	}
	return rows, nil
}
