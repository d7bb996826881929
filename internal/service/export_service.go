package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/models"
	"github.com/campushq/sis-core-api/pkg/export"
	"github.com/campushq/sis-core-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	Size(filename string) (int64, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportScheduleSource interface {
	List(ctx context.Context, filter models.BellScheduleFilter) ([]models.BellSchedule, int, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	FileSize     int64
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	attendance attendanceStatsStore
	schedules  exportScheduleSource
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(attendance attendanceStatsStore, schedules exportScheduleSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		attendance: attendance,
		schedules:  schedules,
		storage:    store,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset for an execution and stores the rendered file.
func (s *ExportService) Generate(ctx context.Context, execution *models.ScheduleExecutionHistory) (*ExportResult, error) {
	if execution == nil {
		return nil, fmt.Errorf("execution nil")
	}
	dataset, title, err := s.buildDataset(ctx, execution)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch execution.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", execution.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(execution)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}
	size, err := s.storage.Size(relPath)
	if err != nil {
		size = int64(len(payload))
	}

	token, expiresAt, err := s.signer.Generate(execution.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/schedules/executions/download/%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       execution.Params.Format,
		FileSize:     size,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (executionID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(execution *models.ScheduleExecutionHistory) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	termPart := sanitizeFilename(execution.Params.TermID)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(execution.ReportType)), termPart, timestamp, execution.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, execution *models.ScheduleExecutionHistory) (export.Dataset, string, error) {
	filter := statsFilterFromParams(execution.Params)
	switch execution.ReportType {
	case models.ReportTypeAttendance:
		return s.buildAttendanceDataset(ctx, filter)
	case models.ReportTypeAbsences:
		return s.buildAbsencesDataset(ctx, filter)
	case models.ReportTypeSchedules:
		return s.buildSchedulesDataset(ctx, execution.Params)
	case models.ReportTypeSummary:
		return s.buildSummaryDataset(ctx, filter)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", execution.ReportType)
	}
}

// statsFilterFromParams derives the aggregation window. Extras may carry
// explicit from/to dates; otherwise the trailing 30 days are used.
func statsFilterFromParams(params models.ExecutionParams) models.AttendanceStatisticsFilter {
	filter := models.AttendanceStatisticsFilter{TermID: params.TermID}
	if params.CampusID != nil {
		filter.CampusID = *params.CampusID
	}
	now := time.Now().UTC().Truncate(24 * time.Hour)
	filter.From = now.AddDate(0, 0, -30)
	filter.To = now
	if raw, ok := params.Extras["from"]; ok {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = parsed
		}
	}
	if raw, ok := params.Extras["to"]; ok {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.To = parsed
		}
	}
	return filter
}

func (s *ExportService) buildAttendanceDataset(ctx context.Context, filter models.AttendanceStatisticsFilter) (export.Dataset, string, error) {
	daily, err := s.attendance.Daily(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(daily))
	for _, day := range daily {
		rows = append(rows, map[string]string{
			"Date":           day.Date.Format("2006-01-02"),
			"Present":        fmt.Sprintf("%d", day.Present),
			"Sick":           fmt.Sprintf("%d", day.Sick),
			"Excused":        fmt.Sprintf("%d", day.Excused),
			"Absent":         fmt.Sprintf("%d", day.Absent),
			"Attendance (%)": fmt.Sprintf("%.2f", day.Rate()),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Present", "Sick", "Excused", "Absent", "Attendance (%)"},
		Rows:    rows,
	}
	return dataset, fmt.Sprintf("Attendance Report %s", filter.TermID), nil
}

func (s *ExportService) buildAbsencesDataset(ctx context.Context, filter models.AttendanceStatisticsFilter) (export.Dataset, string, error) {
	records, err := s.attendance.ChronicAbsences(ctx, filter, 1)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		className := ""
		if rec.ClassName != nil {
			className = *rec.ClassName
		}
		rows = append(rows, map[string]string{
			"Student ID":   rec.StudentID,
			"Student Name": rec.StudentName,
			"Class":        className,
			"Absent Days":  fmt.Sprintf("%d", rec.AbsentDays),
			"Sick Days":    fmt.Sprintf("%d", rec.SickDays),
			"Excused Days": fmt.Sprintf("%d", rec.ExcusedDays),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Student ID", "Student Name", "Class", "Absent Days", "Sick Days", "Excused Days"},
		Rows:    rows,
	}
	return dataset, fmt.Sprintf("Absence Report %s", filter.TermID), nil
}

func (s *ExportService) buildSchedulesDataset(ctx context.Context, params models.ExecutionParams) (export.Dataset, string, error) {
	filter := models.BellScheduleFilter{PageSize: 100}
	if params.CampusID != nil {
		filter.CampusID = *params.CampusID
	}
	schedules, _, err := s.schedules.List(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(schedules))
	for _, schedule := range schedules {
		rows = append(rows, map[string]string{
			"Name":        schedule.Name,
			"Type":        string(schedule.ScheduleType),
			"Campus":      schedule.CampusID,
			"School Year": schedule.SchoolYearID,
			"Active":      fmt.Sprintf("%t", schedule.Active),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Name", "Type", "Campus", "School Year", "Active"},
		Rows:    rows,
	}
	return dataset, "Bell Schedule Report", nil
}

func (s *ExportService) buildSummaryDataset(ctx context.Context, filter models.AttendanceStatisticsFilter) (export.Dataset, string, error) {
	overall, err := s.attendance.Overall(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	daily, err := s.attendance.Daily(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	trend := analyzeTrend(daily)

	rows := []map[string]string{
		{"Metric": "Total Students", "Value": fmt.Sprintf("%d", overall.TotalStudents)},
		{"Metric": "School Days", "Value": fmt.Sprintf("%d", overall.TotalDays)},
		{"Metric": "Attendance Rate", "Value": fmt.Sprintf("%.2f", overall.AttendanceRate)},
		{"Metric": "Trend", "Value": string(trend.Direction)},
		{"Metric": "Rate Change", "Value": fmt.Sprintf("%.2f", trend.RateChange)},
	}
	dataset := export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}
	return dataset, fmt.Sprintf("Term Summary %s", filter.TermID), nil
}
