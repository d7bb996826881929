package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	"github.com/campushq/sis-core-api/internal/repository"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
	"github.com/campushq/sis-core-api/pkg/jobs"
)

type stubExecutionStore struct {
	executions         map[string]*models.ScheduleExecutionHistory
	listCompletedCalls int
}

func newStubExecutionStore() *stubExecutionStore {
	return &stubExecutionStore{executions: make(map[string]*models.ScheduleExecutionHistory)}
}

func (m *stubExecutionStore) Create(ctx context.Context, execution *models.ScheduleExecutionHistory) error {
	if execution.ID == "" {
		execution.ID = "exec-1"
	}
	if execution.Status == "" {
		execution.Status = models.ExecutionStatusPending
	}
	execution.ScheduledAt = time.Now().UTC()
	m.executions[execution.ID] = execution
	return nil
}

func (m *stubExecutionStore) GetByID(ctx context.Context, id string) (*models.ScheduleExecutionHistory, error) {
	execution, ok := m.executions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *execution
	return &copied, nil
}

func (m *stubExecutionStore) Update(ctx context.Context, id string, params repository.UpdateExecutionParams) error {
	execution, ok := m.executions[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		execution.Status = *params.Status
	}
	if params.StartedAt != nil {
		execution.StartedAt = params.StartedAt
	}
	if params.CompletedAt != nil {
		execution.CompletedAt = params.CompletedAt
	}
	if params.DurationMs != nil {
		execution.DurationMs = params.DurationMs
	}
	if params.RetryAttempt != nil {
		execution.RetryAttempt = *params.RetryAttempt
	}
	if params.ClearError {
		execution.ErrorMessage = nil
		execution.StackTrace = nil
	} else {
		if params.ErrorMessage != nil {
			execution.ErrorMessage = params.ErrorMessage
		}
		if params.StackTrace != nil {
			execution.StackTrace = params.StackTrace
		}
	}
	if params.ClearResultURL {
		execution.ResultURL = nil
	} else if params.ResultURL != nil {
		execution.ResultURL = params.ResultURL
	}
	if params.FileSize != nil {
		execution.FileSize = params.FileSize
	}
	return nil
}

func (m *stubExecutionStore) List(ctx context.Context, filter models.ExecutionFilter) ([]models.ScheduleExecutionHistory, int, error) {
	out := make([]models.ScheduleExecutionHistory, 0, len(m.executions))
	for _, execution := range m.executions {
		out = append(out, *execution)
	}
	return out, len(out), nil
}

func (m *stubExecutionStore) ListPending(ctx context.Context, limit int) ([]models.ScheduleExecutionHistory, error) {
	out := make([]models.ScheduleExecutionHistory, 0)
	for _, execution := range m.executions {
		if execution.Status == models.ExecutionStatusPending || execution.Status == models.ExecutionStatusRetrying {
			out = append(out, *execution)
		}
	}
	return out, nil
}

func (m *stubExecutionStore) ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ScheduleExecutionHistory, error) {
	m.listCompletedCalls++
	out := make([]models.ScheduleExecutionHistory, 0, limit)
	for _, execution := range m.executions {
		if execution.Status != models.ExecutionStatusCompleted || execution.CompletedAt == nil || execution.ResultURL == nil {
			continue
		}
		if !execution.CompletedAt.Before(cutoff) {
			continue
		}
		out = append(out, *execution)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (m *stubDispatcher) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

type stubGenerator struct {
	result *ExportResult
	err    error
}

func (m *stubGenerator) Generate(ctx context.Context, execution *models.ScheduleExecutionHistory) (*ExportResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func validScheduleRequest() dto.ScheduleReportRequest {
	return dto.ScheduleReportRequest{
		Type:   models.ReportTypeAttendance,
		TermID: "term-1",
		Format: models.ReportFormatCSV,
	}
}

func TestScheduleReportEnqueues(t *testing.T) {
	store := newStubExecutionStore()
	queue := &stubDispatcher{}
	svc := NewScheduleService(store, queue, nil, zap.NewNop(), ScheduleServiceConfig{})

	resp, err := svc.ScheduleReport(context.Background(), validScheduleRequest(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusPending, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
}

func TestScheduleReportEnqueueFailureMarksFailed(t *testing.T) {
	store := newStubExecutionStore()
	queue := &stubDispatcher{err: errors.New("queue closed")}
	svc := NewScheduleService(store, queue, nil, zap.NewNop(), ScheduleServiceConfig{})

	_, err := svc.ScheduleReport(context.Background(), validScheduleRequest(), "admin-1")
	require.Error(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, store.executions["exec-1"].Status)
}

func TestScheduleReportValidation(t *testing.T) {
	svc := NewScheduleService(newStubExecutionStore(), &stubDispatcher{}, nil, zap.NewNop(), ScheduleServiceConfig{})

	req := validScheduleRequest()
	req.TermID = ""
	_, err := svc.ScheduleReport(context.Background(), req, "admin-1")
	require.Error(t, err)

	req = validScheduleRequest()
	req.Type = "payroll"
	_, err = svc.ScheduleReport(context.Background(), req, "admin-1")
	require.Error(t, err)

	req = validScheduleRequest()
	req.Format = "xlsx"
	_, err = svc.ScheduleReport(context.Background(), req, "admin-1")
	require.Error(t, err)
}

func TestCancelNonTerminal(t *testing.T) {
	store := newStubExecutionStore()
	svc := NewScheduleService(store, &stubDispatcher{}, nil, zap.NewNop(), ScheduleServiceConfig{})

	resp, err := svc.ScheduleReport(context.Background(), validScheduleRequest(), "admin-1")
	require.NoError(t, err)

	detail, err := svc.Cancel(context.Background(), resp.ID, "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCancelled, detail.Status)
}

func TestCancelTerminalConflicts(t *testing.T) {
	store := newStubExecutionStore()
	store.executions["exec-1"] = &models.ScheduleExecutionHistory{
		ID: "exec-1", Status: models.ExecutionStatusCompleted, CreatedBy: "admin-1",
	}
	svc := NewScheduleService(store, &stubDispatcher{}, nil, zap.NewNop(), ScheduleServiceConfig{})

	_, err := svc.Cancel(context.Background(), "exec-1", "admin-1", models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExecutionTerminal.Code, appErrors.FromError(err).Code)
}

func TestGetExecutionOwnership(t *testing.T) {
	store := newStubExecutionStore()
	store.executions["exec-1"] = &models.ScheduleExecutionHistory{
		ID: "exec-1", Status: models.ExecutionStatusPending, CreatedBy: "teacher-1",
	}
	svc := NewScheduleService(store, &stubDispatcher{}, nil, zap.NewNop(), ScheduleServiceConfig{})

	_, err := svc.GetExecution(context.Background(), "exec-1", "teacher-2", models.RoleTeacher)
	require.Error(t, err)

	detail, err := svc.GetExecution(context.Background(), "exec-1", "teacher-1", models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "exec-1", detail.ID)
}

func TestRecoverPendingExecutions(t *testing.T) {
	store := newStubExecutionStore()
	store.executions["exec-1"] = &models.ScheduleExecutionHistory{ID: "exec-1", Status: models.ExecutionStatusPending}
	store.executions["exec-2"] = &models.ScheduleExecutionHistory{ID: "exec-2", Status: models.ExecutionStatusRetrying, RetryAttempt: 1}
	store.executions["exec-3"] = &models.ScheduleExecutionHistory{ID: "exec-3", Status: models.ExecutionStatusCompleted}
	queue := &stubDispatcher{}
	svc := NewScheduleService(store, queue, nil, zap.NewNop(), ScheduleServiceConfig{})

	svc.RecoverPendingExecutions(context.Background())
	assert.Len(t, queue.enqueued, 2)
}

func TestExecutionWorkerSuccess(t *testing.T) {
	store := newStubExecutionStore()
	store.executions["exec-1"] = &models.ScheduleExecutionHistory{
		ID:         "exec-1",
		ReportType: models.ReportTypeAttendance,
		Params:     models.ExecutionParams{TermID: "term-1", Format: models.ReportFormatCSV},
		Status:     models.ExecutionStatusPending,
	}
	generator := &stubGenerator{result: &ExportResult{
		URL:      "/api/v1/schedules/reports/download/token",
		FileSize: 2048,
	}}
	worker := NewExecutionWorker(store, generator, 3, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "exec-1"}))

	execution := store.executions["exec-1"]
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.True(t, execution.IsSuccessful())
	require.NotNil(t, execution.FileSize)
	assert.Equal(t, "2.0 KB", execution.FormattedFileSize())
	require.NotNil(t, execution.DurationMs)
}

func TestExecutionWorkerRetryThenFail(t *testing.T) {
	store := newStubExecutionStore()
	store.executions["exec-1"] = &models.ScheduleExecutionHistory{
		ID:         "exec-1",
		ReportType: models.ReportTypeAttendance,
		Params:     models.ExecutionParams{TermID: "term-1", Format: models.ReportFormatCSV},
		Status:     models.ExecutionStatusPending,
	}
	generator := &stubGenerator{err: errors.New("render failed")}
	worker := NewExecutionWorker(store, generator, 2, zap.NewNop())

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: "exec-1", Attempt: 0}))
	assert.Equal(t, models.ExecutionStatusRetrying, store.executions["exec-1"].Status)
	assert.Equal(t, 1, store.executions["exec-1"].RetryAttempt)

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: "exec-1", Attempt: 2}))
	execution := store.executions["exec-1"]
	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.False(t, execution.IsSuccessful())
	require.NotNil(t, execution.ErrorMessage)
	require.NotNil(t, execution.StackTrace)
}

func TestExecutionWorkerSkipsCancelled(t *testing.T) {
	store := newStubExecutionStore()
	store.executions["exec-1"] = &models.ScheduleExecutionHistory{
		ID:     "exec-1",
		Status: models.ExecutionStatusCancelled,
	}
	worker := NewExecutionWorker(store, &stubGenerator{}, 3, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "exec-1"}))
	assert.Equal(t, models.ExecutionStatusCancelled, store.executions["exec-1"].Status)
}

func TestExecutionWorkerSuccessAfterRetryReportsSuccessful(t *testing.T) {
	started := time.Now().UTC().Add(-time.Minute)
	msg := "render failed"
	store := newStubExecutionStore()
	store.executions["exec-1"] = &models.ScheduleExecutionHistory{
		ID:           "exec-1",
		ReportType:   models.ReportTypeAttendance,
		Params:       models.ExecutionParams{TermID: "term-1", Format: models.ReportFormatCSV},
		Status:       models.ExecutionStatusRetrying,
		StartedAt:    &started,
		RetryAttempt: 1,
		ErrorMessage: &msg,
		CreatedBy:    "admin-1",
	}
	generator := &stubGenerator{result: &ExportResult{URL: "/api/v1/schedules/executions/download/token", FileSize: 512}}
	worker := NewExecutionWorker(store, generator, 3, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "exec-1", Attempt: 1}))

	svc := NewScheduleService(store, &stubDispatcher{}, nil, zap.NewNop(), ScheduleServiceConfig{})
	detail, err := svc.GetExecution(context.Background(), "exec-1", "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, detail.Status)
	assert.True(t, detail.Successful)
	assert.Nil(t, detail.Error)
}

func TestCleanupExpiredDrainsBacklog(t *testing.T) {
	store := newStubExecutionStore()
	completed := time.Now().UTC().Add(-48 * time.Hour)
	for i := 0; i < 250; i++ {
		id := fmt.Sprintf("exec-%d", i)
		url := "/api/v1/schedules/executions/download/stale-token"
		store.executions[id] = &models.ScheduleExecutionHistory{
			ID:          id,
			Status:      models.ExecutionStatusCompleted,
			CompletedAt: &completed,
			ResultURL:   &url,
		}
	}
	exporter := newTestExportService(&stubStatsStore{}, &stubScheduleSource{}, newMemoryStorage())
	svc := NewScheduleService(store, &stubDispatcher{}, exporter, zap.NewNop(), ScheduleServiceConfig{ResultTTL: 24 * time.Hour})

	svc.cleanupExpired(context.Background())

	for id, execution := range store.executions {
		assert.Nil(t, execution.ResultURL, "result url not cleared for %s", id)
	}
	assert.LessOrEqual(t, store.listCompletedCalls, 4)
}
