package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/models"
	"github.com/campushq/sis-core-api/pkg/storage"
)

type memoryStorage struct {
	files map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte)}
}

func (m *memoryStorage) Save(filename string, data []byte) (string, error) {
	rel := "reports/" + filename
	m.files[rel] = data
	return rel, nil
}

func (m *memoryStorage) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (m *memoryStorage) Delete(filename string) error {
	delete(m.files, filename)
	return nil
}

func (m *memoryStorage) Size(filename string) (int64, error) {
	data, ok := m.files[filename]
	if !ok {
		return 0, os.ErrNotExist
	}
	return int64(len(data)), nil
}

func (m *memoryStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	return nil, nil
}

type stubScheduleSource struct {
	schedules []models.BellSchedule
}

func (m *stubScheduleSource) List(ctx context.Context, filter models.BellScheduleFilter) ([]models.BellSchedule, int, error) {
	return m.schedules, len(m.schedules), nil
}

func newTestExportService(stats *stubStatsStore, schedules *stubScheduleSource, store *memoryStorage) *ExportService {
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(stats, schedules, store, signer, ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), nil, nil)
}

func TestExportGenerateAttendanceCSV(t *testing.T) {
	stats := &stubStatsStore{daily: []models.DailyStats{day(3, 90, 10), day(4, 95, 5)}}
	store := newMemoryStorage()
	svc := newTestExportService(stats, &stubScheduleSource{}, store)

	execution := &models.ScheduleExecutionHistory{
		ID:         "exec-1",
		ReportType: models.ReportTypeAttendance,
		Params:     models.ExecutionParams{TermID: "term-1", Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), execution)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/schedules/executions/download/"))
	assert.Greater(t, result.FileSize, int64(0))
	assert.NotEmpty(t, result.Token)

	executionID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "exec-1", executionID)
	assert.Equal(t, result.RelativePath, relPath)

	payload := string(store.files[result.RelativePath])
	assert.Contains(t, payload, "2026-08-03")
	assert.Contains(t, payload, "Attendance (%)")
}

func TestExportGenerateSchedulesPDF(t *testing.T) {
	schedules := &stubScheduleSource{schedules: []models.BellSchedule{
		{Name: "Regular Day", ScheduleType: models.BellScheduleRegular, CampusID: "campus-1", SchoolYearID: "sy-2026", Active: true},
	}}
	store := newMemoryStorage()
	svc := newTestExportService(&stubStatsStore{}, schedules, store)

	execution := &models.ScheduleExecutionHistory{
		ID:         "exec-2",
		ReportType: models.ReportTypeSchedules,
		Params:     models.ExecutionParams{TermID: "term-1", Format: models.ReportFormatPDF},
	}
	result, err := svc.Generate(context.Background(), execution)
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatPDF, result.Format)
	assert.Greater(t, result.FileSize, int64(0))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))
}

func TestExportGenerateUnsupportedFormat(t *testing.T) {
	svc := newTestExportService(&stubStatsStore{}, &stubScheduleSource{}, newMemoryStorage())

	execution := &models.ScheduleExecutionHistory{
		ID:         "exec-3",
		ReportType: models.ReportTypeAttendance,
		Params:     models.ExecutionParams{TermID: "term-1", Format: "xlsx"},
	}
	_, err := svc.Generate(context.Background(), execution)
	require.Error(t, err)
}

func TestExportWindowFromExtras(t *testing.T) {
	params := models.ExecutionParams{
		TermID: "term-1",
		Extras: map[string]string{"from": "2026-08-03", "to": "2026-08-14"},
	}
	filter := statsFilterFromParams(params)
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), filter.From)
	assert.Equal(t, time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), filter.To)

	fallback := statsFilterFromParams(models.ExecutionParams{TermID: "term-1"})
	assert.True(t, fallback.To.After(fallback.From))
}
