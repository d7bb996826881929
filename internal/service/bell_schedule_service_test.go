package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
)

type stubBellScheduleStore struct {
	schedules map[string]*models.BellSchedule
	overrides []*models.BellScheduleDateOverride
}

func newStubBellScheduleStore() *stubBellScheduleStore {
	return &stubBellScheduleStore{schedules: make(map[string]*models.BellSchedule)}
}

func (m *stubBellScheduleStore) Create(ctx context.Context, schedule *models.BellSchedule) error {
	if schedule.ID == "" {
		schedule.ID = "bs-" + schedule.Name
	}
	m.schedules[schedule.ID] = schedule
	return nil
}

func (m *stubBellScheduleStore) Update(ctx context.Context, schedule *models.BellSchedule) error {
	if _, ok := m.schedules[schedule.ID]; !ok {
		return sql.ErrNoRows
	}
	m.schedules[schedule.ID] = schedule
	return nil
}

func (m *stubBellScheduleStore) FindByID(ctx context.Context, id string) (*models.BellSchedule, error) {
	schedule, ok := m.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return schedule, nil
}

func (m *stubBellScheduleStore) List(ctx context.Context, filter models.BellScheduleFilter) ([]models.BellSchedule, int, error) {
	out := make([]models.BellSchedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *stubBellScheduleStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.schedules[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.schedules, id)
	return nil
}

func (m *stubBellScheduleStore) CreateOverride(ctx context.Context, override *models.BellScheduleDateOverride) error {
	m.overrides = append(m.overrides, override)
	if s, ok := m.schedules[override.ScheduleID]; ok {
		s.Overrides = append(s.Overrides, *override)
	}
	return nil
}

func newBellScheduleSvc(store *stubBellScheduleStore) *BellScheduleService {
	return NewBellScheduleService(store, nil, validator.New(), zap.NewNop(), time.Minute)
}

func regularCreateRequest() dto.CreateBellScheduleRequest {
	return dto.CreateBellScheduleRequest{
		Name:         "Regular Day",
		ScheduleType: models.BellScheduleRegular,
		CampusID:     "campus-1",
		SchoolYearID: "sy-2026",
		Periods: []dto.BellSchedulePeriodItem{
			{Sequence: 1, Label: "Period 1", StartTime: "08:00", EndTime: "08:50"},
			{Sequence: 2, Label: "Period 2", StartTime: "09:00", EndTime: "09:50"},
		},
	}
}

func TestBellScheduleCreate(t *testing.T) {
	store := newStubBellScheduleStore()
	svc := newBellScheduleSvc(store)

	schedule, err := svc.Create(context.Background(), regularCreateRequest())
	require.NoError(t, err)
	assert.True(t, schedule.Active)
	assert.Len(t, schedule.Periods, 2)
}

func TestBellScheduleCreateRejectsBadPeriods(t *testing.T) {
	svc := newBellScheduleSvc(newStubBellScheduleStore())

	req := regularCreateRequest()
	req.Periods[1].Sequence = 1
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	req = regularCreateRequest()
	req.Periods[0].EndTime = "07:00"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)

	req = regularCreateRequest()
	req.ScheduleType = "half_day"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestBellScheduleUpdateReplacesPeriods(t *testing.T) {
	store := newStubBellScheduleStore()
	svc := newBellScheduleSvc(store)

	schedule, err := svc.Create(context.Background(), regularCreateRequest())
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), schedule.ID, dto.UpdateBellScheduleRequest{
		Name:         "Exam Week",
		ScheduleType: models.BellScheduleExam,
		Active:       &inactive,
		Periods: []dto.BellSchedulePeriodItem{
			{Sequence: 1, Label: "Exam Block", StartTime: "08:00", EndTime: "11:00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.BellScheduleExam, updated.ScheduleType)
	assert.False(t, updated.Active)
	assert.Len(t, updated.Periods, 1)
}

func TestBellScheduleUpdateMissing(t *testing.T) {
	svc := newBellScheduleSvc(newStubBellScheduleStore())

	_, err := svc.Update(context.Background(), "missing", dto.UpdateBellScheduleRequest{
		Name:         "Exam Week",
		ScheduleType: models.BellScheduleExam,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBellScheduleViewWithOverride(t *testing.T) {
	store := newStubBellScheduleStore()
	svc := newBellScheduleSvc(store)

	schedule, err := svc.Create(context.Background(), regularCreateRequest())
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(context.Background(), schedule.ID, dto.UpdateBellScheduleRequest{
		Name:         schedule.Name,
		ScheduleType: schedule.ScheduleType,
		Active:       &inactive,
	})
	require.NoError(t, err)

	examDay := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.AddOverride(context.Background(), schedule.ID, examDay, "Midterm exams")
	require.NoError(t, err)

	view, err := svc.View(context.Background(), schedule.ID, examDay.Add(8*time.Hour))
	require.NoError(t, err)
	assert.True(t, view.HasOverrides)
	assert.True(t, view.InEffectToday)
	assert.Equal(t, "Regular Day (regular)", view.DisplayLabel)
}

func TestBellScheduleViewServedFromCache(t *testing.T) {
	store := newStubBellScheduleStore()
	cache := &memoryCache{}
	svc := NewBellScheduleService(store, cache, validator.New(), zap.NewNop(), time.Minute)

	schedule, err := svc.Create(context.Background(), regularCreateRequest())
	require.NoError(t, err)

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	first, err := svc.View(context.Background(), schedule.ID, now)
	require.NoError(t, err)

	// Drop the backing row; a second call on the same day must come from cache.
	delete(store.schedules, schedule.ID)
	second, err := svc.View(context.Background(), schedule.ID, now)
	require.NoError(t, err)
	assert.Equal(t, first.DisplayLabel, second.DisplayLabel)
	assert.Equal(t, first.Periods, second.Periods)

	// A different date misses the cache and hits the store again.
	_, err = svc.View(context.Background(), schedule.ID, now.AddDate(0, 0, 1))
	require.Error(t, err)
}

func TestBellScheduleWritesInvalidateViewCache(t *testing.T) {
	store := newStubBellScheduleStore()
	cache := &memoryCache{}
	svc := NewBellScheduleService(store, cache, validator.New(), zap.NewNop(), time.Minute)

	schedule, err := svc.Create(context.Background(), regularCreateRequest())
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(context.Background(), schedule.ID, dto.UpdateBellScheduleRequest{
		Name:         schedule.Name,
		ScheduleType: schedule.ScheduleType,
		Active:       &inactive,
	})
	require.NoError(t, err)
	require.Len(t, cache.deleted, 1)
	assert.Equal(t, "bell_schedules:view:"+schedule.ID+":*", cache.deleted[0])

	_, err = svc.AddOverride(context.Background(), schedule.ID, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "Midterm exams")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), schedule.ID))
	assert.Len(t, cache.deleted, 3)
}
