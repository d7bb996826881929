package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
)

type bellScheduleStore interface {
	Create(ctx context.Context, schedule *models.BellSchedule) error
	Update(ctx context.Context, schedule *models.BellSchedule) error
	FindByID(ctx context.Context, id string) (*models.BellSchedule, error)
	List(ctx context.Context, filter models.BellScheduleFilter) ([]models.BellSchedule, int, error)
	Delete(ctx context.Context, id string) error
	CreateOverride(ctx context.Context, override *models.BellScheduleDateOverride) error
}

// BellScheduleService manages bell schedules and their transport views.
// Rendered views are cached per schedule and date; writes invalidate the
// schedule's view entries.
type BellScheduleService struct {
	store     bellScheduleStore
	cache     statsCache
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewBellScheduleService constructs the service.
func NewBellScheduleService(store bellScheduleStore, cache statsCache, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *BellScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &BellScheduleService{store: store, cache: cache, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// Create validates and stores a new bell schedule.
func (s *BellScheduleService) Create(ctx context.Context, req dto.CreateBellScheduleRequest) (*models.BellSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bell schedule payload")
	}
	if !req.ScheduleType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported schedule type %q", req.ScheduleType))
	}
	if err := validatePeriods(req.Periods); err != nil {
		return nil, err
	}

	schedule := &models.BellSchedule{
		Name:         req.Name,
		ScheduleType: req.ScheduleType,
		CampusID:     req.CampusID,
		SchoolYearID: req.SchoolYearID,
		Active:       true,
		Periods:      periodsFromItems(req.Periods),
	}
	if err := s.store.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create bell schedule")
	}
	return schedule, nil
}

// Update replaces mutable fields and, when provided, the period list.
func (s *BellScheduleService) Update(ctx context.Context, id string, req dto.UpdateBellScheduleRequest) (*models.BellSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bell schedule payload")
	}
	if !req.ScheduleType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported schedule type %q", req.ScheduleType))
	}

	schedule, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bell schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bell schedule")
	}

	schedule.Name = req.Name
	schedule.ScheduleType = req.ScheduleType
	if req.Active != nil {
		schedule.Active = *req.Active
	}
	if len(req.Periods) > 0 {
		if err := validatePeriods(req.Periods); err != nil {
			return nil, err
		}
		schedule.Periods = periodsFromItems(req.Periods)
	}

	if err := s.store.Update(ctx, schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bell schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update bell schedule")
	}
	s.invalidate(ctx, schedule.ID)
	return schedule, nil
}

// Get loads a schedule with its periods and overrides.
func (s *BellScheduleService) Get(ctx context.Context, id string) (*models.BellSchedule, error) {
	schedule, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bell schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bell schedule")
	}
	return schedule, nil
}

// View returns the flattened transport view for a schedule, serving from
// cache when a fresh entry exists for the same date.
func (s *BellScheduleService) View(ctx context.Context, id string, now time.Time) (*dto.BellScheduleView, error) {
	key := viewCacheKey(id, now)
	if s.cache != nil {
		var cached dto.BellScheduleView
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := dto.NewBellScheduleView(schedule, now)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, view, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache bell schedule view", zap.String("schedule_id", id), zap.Error(err))
		}
	}
	return view, nil
}

// List returns schedules matching the filter along with pagination info.
func (s *BellScheduleService) List(ctx context.Context, filter models.BellScheduleFilter) ([]models.BellSchedule, *models.Pagination, error) {
	schedules, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bell schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return schedules, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Delete removes a schedule.
func (s *BellScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "bell schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete bell schedule")
	}
	s.invalidate(ctx, id)
	return nil
}

// AddOverride puts the schedule into effect on a specific date.
func (s *BellScheduleService) AddOverride(ctx context.Context, scheduleID string, date time.Time, reason string) (*models.BellScheduleDateOverride, error) {
	schedule, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	override := &models.BellScheduleDateOverride{
		ScheduleID: schedule.ID,
		Date:       date.Truncate(24 * time.Hour),
		Reason:     reason,
	}
	if err := s.store.CreateOverride(ctx, override); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create date override")
	}
	s.invalidate(ctx, schedule.ID)
	return override, nil
}

func viewCacheKey(id string, now time.Time) string {
	return fmt.Sprintf("bell_schedules:view:%s:%s", id, now.Format("2006-01-02"))
}

func (s *BellScheduleService) invalidate(ctx context.Context, scheduleID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("bell_schedules:view:%s:*", scheduleID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate bell schedule cache", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
}

func validatePeriods(items []dto.BellSchedulePeriodItem) error {
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if seen[item.Sequence] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate period sequence %d", item.Sequence))
		}
		seen[item.Sequence] = true
		if item.EndTime <= item.StartTime {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period %q ends before it starts", item.Label))
		}
	}
	return nil
}

func periodsFromItems(items []dto.BellSchedulePeriodItem) []models.BellSchedulePeriod {
	periods := make([]models.BellSchedulePeriod, 0, len(items))
	for _, item := range items {
		periods = append(periods, models.BellSchedulePeriod{
			Sequence:  item.Sequence,
			Label:     item.Label,
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
			IsPassing: item.IsPassing,
		})
	}
	return periods
}
