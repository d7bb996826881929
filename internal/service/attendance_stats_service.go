package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/models"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
)

type attendanceStatsStore interface {
	Overall(ctx context.Context, filter models.AttendanceStatisticsFilter) (models.OverallStats, error)
	Daily(ctx context.Context, filter models.AttendanceStatisticsFilter) ([]models.DailyStats, error)
	ByGrade(ctx context.Context, filter models.AttendanceStatisticsFilter) ([]models.GradeStats, error)
	ChronicAbsences(ctx context.Context, filter models.AttendanceStatisticsFilter, threshold int) ([]models.StudentAbsenceRecord, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AttendanceStatsConfig tunes aggregation behaviour.
type AttendanceStatsConfig struct {
	CacheTTL         time.Duration
	ChronicThreshold int
}

// trendEpsilon is the rate-change band, in percentage points, treated as stable.
const trendEpsilon = 0.5

// AttendanceStatsService aggregates attendance rows into the statistics
// read model, with a Redis cache in front of the database.
type AttendanceStatsService struct {
	store  attendanceStatsStore
	cache  statsCache
	logger *zap.Logger
	config AttendanceStatsConfig
}

// NewAttendanceStatsService constructs the service.
func NewAttendanceStatsService(store attendanceStatsStore, cache statsCache, logger *zap.Logger, config AttendanceStatsConfig) *AttendanceStatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if config.ChronicThreshold <= 0 {
		config.ChronicThreshold = 3
	}
	return &AttendanceStatsService{store: store, cache: cache, logger: logger, config: config}
}

func statsCacheKey(filter models.AttendanceStatisticsFilter) string {
	return fmt.Sprintf("attendance:stats:%s:%s:%s:%s",
		filter.TermID, filter.CampusID,
		filter.From.Format("2006-01-02"), filter.To.Format("2006-01-02"))
}

// Statistics builds the aggregated statistics for the period, serving from
// cache when a fresh entry exists.
func (s *AttendanceStatsService) Statistics(ctx context.Context, filter models.AttendanceStatisticsFilter) (*models.AttendanceStatistics, error) {
	if filter.TermID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term_id is required")
	}
	if filter.To.Before(filter.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range end precedes start")
	}

	key := statsCacheKey(filter)
	if s.cache != nil {
		var cached models.AttendanceStatistics
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	overall, err := s.store.Overall(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate overall attendance")
	}
	daily, err := s.store.Daily(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate daily attendance")
	}
	grades, err := s.store.ByGrade(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance by grade")
	}
	absences, err := s.store.ChronicAbsences(ctx, filter, s.config.ChronicThreshold)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list chronic absences")
	}

	stats := &models.AttendanceStatistics{
		TermID:      filter.TermID,
		From:        filter.From,
		To:          filter.To,
		Overall:     overall,
		Daily:       daily,
		Trend:       analyzeTrend(daily),
		Grades:      grades,
		Absences:    absences,
		GeneratedAt: time.Now().UTC(),
	}
	if filter.CampusID != "" {
		campusID := filter.CampusID
		stats.CampusID = &campusID
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache attendance statistics", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops cached statistics for a term after attendance writes.
func (s *AttendanceStatsService) Invalidate(ctx context.Context, termID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteByPattern(ctx, fmt.Sprintf("attendance:stats:%s:*", termID))
}

// analyzeTrend compares attendance rates between the first and second half
// of the daily series. Fewer than two days is always stable.
func analyzeTrend(daily []models.DailyStats) models.TrendAnalysis {
	trend := models.TrendAnalysis{Direction: models.TrendStable}
	if len(daily) < 2 {
		return trend
	}

	mid := len(daily) / 2
	trend.FirstHalfRate = averageRate(daily[:mid])
	trend.SecondHalfRate = averageRate(daily[mid:])
	trend.RateChange = trend.SecondHalfRate - trend.FirstHalfRate

	switch {
	case math.Abs(trend.RateChange) <= trendEpsilon:
		trend.Direction = models.TrendStable
	case trend.RateChange > 0:
		trend.Direction = models.TrendImproving
	default:
		trend.Direction = models.TrendDeclining
	}
	return trend
}

func averageRate(days []models.DailyStats) float64 {
	if len(days) == 0 {
		return 0
	}
	var sum float64
	for _, d := range days {
		sum += d.Rate()
	}
	return sum / float64(len(days))
}
