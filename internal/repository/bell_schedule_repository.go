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

// BellScheduleRepository persists bell schedules, their periods and date overrides.
type BellScheduleRepository struct {
	db *sqlx.DB
}

// NewBellScheduleRepository constructs the repository.
func NewBellScheduleRepository(db *sqlx.DB) *BellScheduleRepository {
	return &BellScheduleRepository{db: db}
}

// Create inserts a schedule together with its periods in one transaction.
func (r *BellScheduleRepository) Create(ctx context.Context, schedule *models.BellSchedule) error {
	if schedule == nil {
		return fmt.Errorf("bell schedule payload is nil")
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bell schedule tx: %w", err)
	}
	defer tx.Rollback()

	const insertQuery = `
INSERT INTO bell_schedules (id, name, schedule_type, campus_id, school_year_id, active, created_at, updated_at)
VALUES (:id, :name, :schedule_type, :campus_id, :school_year_id, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, schedule); err != nil {
		return fmt.Errorf("insert bell schedule: %w", err)
	}

	if err := r.replacePeriods(ctx, tx, schedule.ID, schedule.Periods); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bell schedule tx: %w", err)
	}
	return nil
}

// Update rewrites a schedule and replaces its periods.
func (r *BellScheduleRepository) Update(ctx context.Context, schedule *models.BellSchedule) error {
	if schedule == nil || schedule.ID == "" {
		return fmt.Errorf("bell schedule id is required")
	}
	schedule.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bell schedule tx: %w", err)
	}
	defer tx.Rollback()

	const updateQuery = `
UPDATE bell_schedules SET name = :name, schedule_type = :schedule_type, active = :active, updated_at = :updated_at
WHERE id = :id`
	result, err := tx.NamedExecContext(ctx, updateQuery, schedule)
	if err != nil {
		return fmt.Errorf("update bell schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("bell schedule rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bell_schedule_periods WHERE schedule_id = $1`, schedule.ID); err != nil {
		return fmt.Errorf("clear bell schedule periods: %w", err)
	}
	if err := r.replacePeriods(ctx, tx, schedule.ID, schedule.Periods); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bell schedule tx: %w", err)
	}
	return nil
}

func (r *BellScheduleRepository) replacePeriods(ctx context.Context, tx *sqlx.Tx, scheduleID string, periods []models.BellSchedulePeriod) error {
	const periodQuery = `
INSERT INTO bell_schedule_periods (id, schedule_id, sequence, label, start_time, end_time, is_passing)
VALUES (:id, :schedule_id, :sequence, :label, :start_time, :end_time, :is_passing)`
	for i := range periods {
		if periods[i].ID == "" {
			periods[i].ID = uuid.NewString()
		}
		periods[i].ScheduleID = scheduleID
		if _, err := tx.NamedExecContext(ctx, periodQuery, periods[i]); err != nil {
			return fmt.Errorf("insert bell schedule period: %w", err)
		}
	}
	return nil
}

// FindByID loads a schedule with its periods and overrides.
func (r *BellScheduleRepository) FindByID(ctx context.Context, id string) (*models.BellSchedule, error) {
	const query = `SELECT id, name, schedule_type, campus_id, school_year_id, active, created_at, updated_at
FROM bell_schedules WHERE id = $1`
	var schedule models.BellSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}

	const periodQuery = `SELECT id, schedule_id, sequence, label, start_time, end_time, is_passing
FROM bell_schedule_periods WHERE schedule_id = $1 ORDER BY sequence ASC`
	if err := r.db.SelectContext(ctx, &schedule.Periods, periodQuery, id); err != nil {
		return nil, fmt.Errorf("list bell schedule periods: %w", err)
	}

	const overrideQuery = `SELECT id, schedule_id, date, reason
FROM bell_schedule_overrides WHERE schedule_id = $1 ORDER BY date ASC`
	if err := r.db.SelectContext(ctx, &schedule.Overrides, overrideQuery, id); err != nil {
		return nil, fmt.Errorf("list bell schedule overrides: %w", err)
	}
	return &schedule, nil
}

// List returns schedules matching the filter with a total count.
func (r *BellScheduleRepository) List(ctx context.Context, filter models.BellScheduleFilter) ([]models.BellSchedule, int, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 4)

	if filter.CampusID != "" {
		conditions = append(conditions, fmt.Sprintf("campus_id = $%d", len(args)+1))
		args = append(args, filter.CampusID)
	}
	if filter.SchoolYearID != "" {
		conditions = append(conditions, fmt.Sprintf("school_year_id = $%d", len(args)+1))
		args = append(args, filter.SchoolYearID)
	}
	if filter.ScheduleType != nil {
		conditions = append(conditions, fmt.Sprintf("schedule_type = $%d", len(args)+1))
		args = append(args, *filter.ScheduleType)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM bell_schedules WHERE %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bell schedules: %w", err)
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

	query := fmt.Sprintf(`SELECT id, name, schedule_type, campus_id, school_year_id, active, created_at, updated_at
FROM bell_schedules WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	var schedules []models.BellSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bell schedules: %w", err)
	}
	return schedules, total, nil
}

// Delete removes a schedule; periods and overrides cascade at the database level.
func (r *BellScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bell_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bell schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("bell schedule rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateOverride registers a date override for a schedule.
func (r *BellScheduleRepository) CreateOverride(ctx context.Context, override *models.BellScheduleDateOverride) error {
	if override == nil || override.ScheduleID == "" {
		return fmt.Errorf("override schedule_id is required")
	}
	if override.ID == "" {
		override.ID = uuid.NewString()
	}
	const query = `INSERT INTO bell_schedule_overrides (id, schedule_id, date, reason)
VALUES (:id, :schedule_id, :date, :reason)`
	if _, err := r.db.NamedExecContext(ctx, query, override); err != nil {
		return fmt.Errorf("insert bell schedule override: %w", err)
	}
	return nil
}

// FindOverrideByDate returns the schedule overridden onto the given date, if any.
func (r *BellScheduleRepository) FindOverrideByDate(ctx context.Context, campusID string, date time.Time) (*models.BellScheduleDateOverride, error) {
	const query = `SELECT o.id, o.schedule_id, o.date, o.reason
FROM bell_schedule_overrides o
JOIN bell_schedules s ON s.id = o.schedule_id
WHERE s.campus_id = $1 AND o.date = $2`
	var override models.BellScheduleDateOverride
	if err := r.db.GetContext(ctx, &override, query, campusID, date.Truncate(24*time.Hour)); err != nil {
		return nil, err
	}
	return &override, nil
}
