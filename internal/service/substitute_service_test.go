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

type stubSubstituteStore struct {
	records map[string]*models.SubstituteAssignmentRecord
	overlap bool
}

func newStubSubstituteStore() *stubSubstituteStore {
	return &stubSubstituteStore{records: make(map[string]*models.SubstituteAssignmentRecord)}
}

func (m *stubSubstituteStore) Create(ctx context.Context, assignment *models.SubstituteAssignment) error {
	if assignment.ID == "" {
		assignment.ID = "sub-1"
	}
	m.records[assignment.ID] = &models.SubstituteAssignmentRecord{
		SubstituteAssignment:  *assignment,
		AbsentTeacherName:     "Rina Hartati",
		SubstituteTeacherName: "Budi Santoso",
		ClassName:             "X IPA 1",
		PeriodLabel:           "Period 3",
	}
	return nil
}

func (m *stubSubstituteStore) FindRecordByID(ctx context.Context, id string) (*models.SubstituteAssignmentRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

func (m *stubSubstituteStore) ListRecords(ctx context.Context, filter models.SubstituteFilter) ([]models.SubstituteAssignmentRecord, int, error) {
	out := make([]models.SubstituteAssignmentRecord, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, *record)
	}
	return out, len(out), nil
}

func (m *stubSubstituteStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

func (m *stubSubstituteStore) ExistsOverlap(ctx context.Context, substituteTeacherID, periodID string, date time.Time) (bool, error) {
	return m.overlap, nil
}

func validSubstituteRequest() dto.CreateSubstituteRequest {
	return dto.CreateSubstituteRequest{
		AbsentTeacherID:     "teacher-1",
		SubstituteTeacherID: "teacher-2",
		ClassID:             "class-1",
		PeriodID:            "period-1",
		Date:                "2026-09-07",
	}
}

func TestSubstituteCreate(t *testing.T) {
	store := newStubSubstituteStore()
	svc := NewSubstituteService(store, validator.New(), zap.NewNop())

	result, err := svc.Create(context.Background(), "admin-1", validSubstituteRequest())
	require.NoError(t, err)
	assert.Equal(t, "2026-09-07", result.Date)
	assert.Equal(t, "Budi Santoso", result.SubstituteTeacherName)
	assert.Equal(t, "Period 3", result.PeriodLabel)
}

func TestSubstituteCreateSameTeacher(t *testing.T) {
	svc := NewSubstituteService(newStubSubstituteStore(), validator.New(), zap.NewNop())

	req := validSubstituteRequest()
	req.SubstituteTeacherID = req.AbsentTeacherID
	_, err := svc.Create(context.Background(), "admin-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubstituteCreateOverlap(t *testing.T) {
	store := newStubSubstituteStore()
	store.overlap = true
	svc := NewSubstituteService(store, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "admin-1", validSubstituteRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubstituteCreateBadDate(t *testing.T) {
	svc := NewSubstituteService(newStubSubstituteStore(), validator.New(), zap.NewNop())

	req := validSubstituteRequest()
	req.Date = "07/09/2026"
	_, err := svc.Create(context.Background(), "admin-1", req)
	require.Error(t, err)
}

func TestSubstituteGetMissing(t *testing.T) {
	svc := NewSubstituteService(newStubSubstituteStore(), validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
