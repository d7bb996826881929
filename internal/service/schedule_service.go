package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	"github.com/campushq/sis-core-api/internal/repository"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
	"github.com/campushq/sis-core-api/pkg/jobs"
)

type executionStore interface {
	Create(ctx context.Context, execution *models.ScheduleExecutionHistory) error
	GetByID(ctx context.Context, id string) (*models.ScheduleExecutionHistory, error)
	Update(ctx context.Context, id string, params repository.UpdateExecutionParams) error
	List(ctx context.Context, filter models.ExecutionFilter) ([]models.ScheduleExecutionHistory, int, error)
	ListPending(ctx context.Context, limit int) ([]models.ScheduleExecutionHistory, error)
	ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleExecutionHistory, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, execution *models.ScheduleExecutionHistory) (*ExportResult, error)
}

// ScheduleServiceConfig governs queue recovery and cleanup.
type ScheduleServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ScheduleService orchestrates the lifecycle of scheduled report runs.
type ScheduleService struct {
	repo     executionStore
	queue    jobDispatcher
	exporter *ExportService
	logger   *zap.Logger
	cfg      ScheduleServiceConfig
}

// NewScheduleService constructs the service.
func NewScheduleService(repo executionStore, queue jobDispatcher, exporter *ExportService, logger *zap.Logger, cfg ScheduleServiceConfig) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &ScheduleService{repo: repo, queue: queue, exporter: exporter, logger: logger, cfg: cfg}
}

// ScheduleReport validates the request, persists a pending run, and enqueues it.
func (s *ScheduleService) ScheduleReport(ctx context.Context, req dto.ScheduleReportRequest, actorID string) (*dto.ExecutionResponse, error) {
	if req.TermID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "termId is required")
	}
	if !isValidReportType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report type")
	}
	if !isValidFormat(req.Format) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	execution := &models.ScheduleExecutionHistory{
		ReportType: req.Type,
		Params:     models.ExecutionParams{TermID: req.TermID, CampusID: req.CampusID, Format: req.Format},
		Status:     models.ExecutionStatusPending,
		CreatedBy:  actorID,
	}
	if err := s.repo.Create(ctx, execution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create execution record")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: execution.ID, Type: string(execution.ReportType)}); err != nil {
		failed := models.ExecutionStatusFailed
		msg := "failed to enqueue execution"
		now := time.Now().UTC()
		_ = s.repo.Update(ctx, execution.ID, repository.UpdateExecutionParams{
			Status:       &failed,
			ErrorMessage: &msg,
			CompletedAt:  &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue execution")
	}
	return &dto.ExecutionResponse{ID: execution.ID, Status: execution.Status}, nil
}

// GetExecution returns one run record, enforcing ownership for non-admins.
func (s *ScheduleService) GetExecution(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExecutionDetailResponse, error) {
	execution, err := s.loadExecution(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleSuperAdmin && role != models.RoleAdmin && execution.CreatedBy != actorID {
		return nil, appErrors.ErrForbidden
	}
	return dto.NewExecutionDetailResponse(execution), nil
}

// ListExecutions returns run records matching the filter.
func (s *ScheduleService) ListExecutions(ctx context.Context, filter models.ExecutionFilter) ([]*dto.ExecutionDetailResponse, *models.Pagination, error) {
	executions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list executions")
	}
	out := make([]*dto.ExecutionDetailResponse, 0, len(executions))
	for i := range executions {
		out = append(out, dto.NewExecutionDetailResponse(&executions[i]))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return out, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Cancel transitions a non-terminal run to CANCELLED. Terminal runs conflict.
func (s *ScheduleService) Cancel(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExecutionDetailResponse, error) {
	execution, err := s.loadExecution(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleSuperAdmin && role != models.RoleAdmin && execution.CreatedBy != actorID {
		return nil, appErrors.ErrForbidden
	}
	if execution.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrExecutionTerminal, fmt.Sprintf("execution is already %s", execution.Status))
	}

	cancelled := models.ExecutionStatusCancelled
	now := time.Now().UTC()
	update := repository.UpdateExecutionParams{Status: &cancelled, CompletedAt: &now}
	if execution.StartedAt != nil {
		duration := now.Sub(*execution.StartedAt).Milliseconds()
		update.DurationMs = &duration
	}
	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel execution")
	}

	execution.Status = cancelled
	execution.CompletedAt = &now
	execution.DurationMs = update.DurationMs
	return dto.NewExecutionDetailResponse(execution), nil
}

// ResolveDownload validates a signed token and opens the stored export file.
func (s *ScheduleService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	executionID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	execution, err := s.loadExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if execution.ResultURL == nil || !strings.HasSuffix(*execution.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if execution.Status != models.ExecutionStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    execution.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingExecutions replays pending runs (e.g. after process restart).
func (s *ScheduleService) RecoverPendingExecutions(ctx context.Context) {
	pending, err := s.repo.ListPending(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover pending executions", "error", err)
		return
	}
	for _, execution := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: execution.ID, Type: string(execution.ReportType), Attempt: execution.RetryAttempt}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue execution", "execution_id", execution.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ScheduleService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ScheduleService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	for {
		executions, err := s.repo.ListCompletedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		if len(executions) == 0 {
			break
		}
		for _, execution := range executions {
			if execution.ResultURL != nil {
				if token := extractToken(*execution.ResultURL); token != "" {
					if _, relPath, _, err := s.exporter.ParseToken(token, true); err == nil {
						if err := s.exporter.Delete(relPath); err != nil {
							s.logger.Sugar().Warnw("cleanup delete failed", "execution_id", execution.ID, "error", err)
						}
					}
				}
			}
			// Nulling result_url drops the row from the next page. Abort the
			// sweep if that fails, otherwise the same page repeats forever.
			if err := s.repo.Update(ctx, execution.ID, repository.UpdateExecutionParams{ClearResultURL: true}); err != nil {
				s.logger.Sugar().Warnw("cleanup mark failed", "execution_id", execution.ID, "error", err)
				return
			}
		}
		if len(executions) < 100 {
			break
		}
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ScheduleService) loadExecution(ctx context.Context, id string) (*models.ScheduleExecutionHistory, error) {
	execution, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "execution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load execution")
	}
	return execution, nil
}

func isValidReportType(t models.ReportType) bool {
	switch t {
	case models.ReportTypeAttendance, models.ReportTypeAbsences, models.ReportTypeSchedules, models.ReportTypeSummary:
		return true
	default:
		return false
	}
}

func isValidFormat(f models.ReportFormat) bool {
	return f == models.ReportFormatCSV || f == models.ReportFormatPDF
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// executionObserver receives terminal run outcomes for platform reporting.
type executionObserver interface {
	RecordReportRun(successful bool, durationMs int64)
}

// ExecutionWorker bridges queue jobs to the export pipeline and records the
// full lifecycle on the execution row.
type ExecutionWorker struct {
	repo       executionStore
	exporter   exportGenerator
	logger     *zap.Logger
	maxRetries int
	observer   executionObserver
}

// NewExecutionWorker constructs a worker.
func NewExecutionWorker(repo executionStore, exporter exportGenerator, maxRetries int, logger *zap.Logger) *ExecutionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ExecutionWorker{repo: repo, exporter: exporter, logger: logger, maxRetries: maxRetries}
}

// SetObserver registers an optional sink for terminal run outcomes.
func (w *ExecutionWorker) SetObserver(observer executionObserver) {
	w.observer = observer
}

// Handle processes one queue job.
func (w *ExecutionWorker) Handle(ctx context.Context, job jobs.Job) error {
	execution, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	// A cancel may land between enqueue and pickup.
	if execution.Status.Terminal() {
		return nil
	}

	started := time.Now().UTC()
	inProgress := models.ExecutionStatusInProgress
	attempt := job.Attempt
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExecutionParams{
		Status:       &inProgress,
		StartedAt:    &started,
		RetryAttempt: &attempt,
	}); err != nil {
		return err
	}
	execution.StartedAt = &started
	execution.RetryAttempt = attempt

	result, err := w.exporter.Generate(ctx, execution)
	if err != nil {
		w.recordFailure(ctx, job, started, err)
		return err
	}

	completed := models.ExecutionStatusCompleted
	now := time.Now().UTC()
	duration := now.Sub(started).Milliseconds()
	// ClearError nulls out any message left behind by earlier retry attempts.
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExecutionParams{
		Status:      &completed,
		CompletedAt: &now,
		DurationMs:  &duration,
		ResultURL:   &result.URL,
		FileSize:    &result.FileSize,
		ClearError:  true,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark execution completed", "execution_id", job.ID, "error", err)
		return err
	}
	if w.observer != nil {
		w.observer.RecordReportRun(true, duration)
	}
	return nil
}

func (w *ExecutionWorker) recordFailure(ctx context.Context, job jobs.Job, started time.Time, cause error) {
	msg := cause.Error()
	trace := string(debug.Stack())
	if job.Attempt >= w.maxRetries {
		failed := models.ExecutionStatusFailed
		now := time.Now().UTC()
		duration := now.Sub(started).Milliseconds()
		if err := w.repo.Update(ctx, job.ID, repository.UpdateExecutionParams{
			Status:       &failed,
			CompletedAt:  &now,
			DurationMs:   &duration,
			ErrorMessage: &msg,
			StackTrace:   &trace,
		}); err != nil {
			w.logger.Sugar().Warnw("failed to mark execution failed", "execution_id", job.ID, "error", err)
		}
		if w.observer != nil {
			w.observer.RecordReportRun(false, duration)
		}
		return
	}

	retrying := models.ExecutionStatusRetrying
	nextAttempt := job.Attempt + 1
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExecutionParams{
		Status:       &retrying,
		RetryAttempt: &nextAttempt,
		ErrorMessage: &msg,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark execution retrying", "execution_id", job.ID, "error", err)
	}
}
