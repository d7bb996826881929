package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/sis-core-api/internal/models"
)

const executionColumns = `id, report_type, params, status, scheduled_at, started_at, completed_at, duration_ms, retry_attempt, error_message, stack_trace, result_url, file_size, created_by, created_at`

// ExecutionRepository persists schedule execution history rows.
type ExecutionRepository struct {
	db *sqlx.DB
}

// NewExecutionRepository constructs the repository.
func NewExecutionRepository(db *sqlx.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Create inserts a new execution row with generated defaults.
func (r *ExecutionRepository) Create(ctx context.Context, execution *models.ScheduleExecutionHistory) error {
	if execution.ID == "" {
		execution.ID = uuid.NewString()
	}
	if execution.Status == "" {
		execution.Status = models.ExecutionStatusPending
	}
	if execution.ScheduledAt.IsZero() {
		execution.ScheduledAt = time.Now().UTC()
	}
	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_executions (id, report_type, params, status, scheduled_at, started_at, completed_at, duration_ms, retry_attempt, error_message, stack_trace, result_url, file_size, created_by, created_at)
VALUES (:id, :report_type, :params, :status, :scheduled_at, :started_at, :completed_at, :duration_ms, :retry_attempt, :error_message, :stack_trace, :result_url, :file_size, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, execution); err != nil {
		return fmt.Errorf("create schedule execution: %w", err)
	}
	return nil
}

// GetByID returns an execution row by its identifier.
func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.ScheduleExecutionHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_executions WHERE id = $1`, executionColumns)
	var execution models.ScheduleExecutionHistory
	if err := r.db.GetContext(ctx, &execution, query, id); err != nil {
		return nil, fmt.Errorf("get schedule execution: %w", err)
	}
	return &execution, nil
}

// UpdateExecutionParams defines the mutable fields of a run record. The
// Clear flags null out columns, which a pointer field cannot express.
type UpdateExecutionParams struct {
	Status         *models.ExecutionStatus
	StartedAt      *time.Time
	CompletedAt    *time.Time
	DurationMs     *int64
	RetryAttempt   *int
	ErrorMessage   *string
	StackTrace     *string
	ResultURL      *string
	FileSize       *int64
	ClearError     bool
	ClearResultURL bool
}

// Update persists the provided changes for an execution row.
func (r *ExecutionRepository) Update(ctx context.Context, id string, params UpdateExecutionParams) error {
	set := make([]string, 0, 9)
	args := make([]interface{}, 0, 10)
	argPos := 1

	appendSet := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Status != nil {
		appendSet("status", *params.Status)
	}
	if params.StartedAt != nil {
		appendSet("started_at", *params.StartedAt)
	}
	if params.CompletedAt != nil {
		appendSet("completed_at", *params.CompletedAt)
	}
	if params.DurationMs != nil {
		appendSet("duration_ms", *params.DurationMs)
	}
	if params.RetryAttempt != nil {
		appendSet("retry_attempt", *params.RetryAttempt)
	}
	if params.ClearError {
		set = append(set, "error_message = NULL", "stack_trace = NULL")
	} else {
		if params.ErrorMessage != nil {
			appendSet("error_message", *params.ErrorMessage)
		}
		if params.StackTrace != nil {
			appendSet("stack_trace", *params.StackTrace)
		}
	}
	if params.ClearResultURL {
		set = append(set, "result_url = NULL")
	} else if params.ResultURL != nil {
		appendSet("result_url", *params.ResultURL)
	}
	if params.FileSize != nil {
		appendSet("file_size", *params.FileSize)
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE schedule_executions SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update schedule execution: %w", err)
	}
	return nil
}

// List returns execution rows matching the filter, newest first.
func (r *ExecutionRepository) List(ctx context.Context, filter models.ExecutionFilter) ([]models.ScheduleExecutionHistory, int, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 4)

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.ReportType != nil {
		conditions = append(conditions, fmt.Sprintf("report_type = $%d", len(args)+1))
		args = append(args, *filter.ReportType)
	}
	if filter.CreatedBy != "" {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedule_executions WHERE %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule executions: %w", err)
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

	query := fmt.Sprintf("SELECT %s FROM schedule_executions WHERE %s ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d",
		executionColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	var executions []models.ScheduleExecutionHistory
	if err := r.db.SelectContext(ctx, &executions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule executions: %w", err)
	}
	return executions, total, nil
}

// ListPending fetches pending runs (used for cold start recovery).
func (r *ExecutionRepository) ListPending(ctx context.Context, limit int) ([]models.ScheduleExecutionHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM schedule_executions WHERE status IN ('PENDING', 'RETRYING') ORDER BY scheduled_at ASC LIMIT $1`, executionColumns)
	var executions []models.ScheduleExecutionHistory
	if err := r.db.SelectContext(ctx, &executions, query, limit); err != nil {
		return nil, fmt.Errorf("list pending schedule executions: %w", err)
	}
	return executions, nil
}

// ListCompletedBefore retrieves completed runs prior to cutoff whose export
// has not been purged yet. Cleanup nulls result_url afterwards, so processed
// rows drop out of subsequent pages.
func (r *ExecutionRepository) ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleExecutionHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM schedule_executions WHERE status = 'COMPLETED' AND completed_at IS NOT NULL AND completed_at < $1 AND result_url IS NOT NULL ORDER BY completed_at ASC LIMIT $2`, executionColumns)
	var executions []models.ScheduleExecutionHistory
	if err := r.db.SelectContext(ctx, &executions, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list completed schedule executions: %w", err)
	}
	return executions, nil
}
