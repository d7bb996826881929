package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
)

type studentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	SummaryByID(ctx context.Context, studentID, termID string) (*models.StudentSummaryRow, error)
}

// StudentService serves student lookups and summary projections.
type StudentService struct {
	store  studentStore
	logger *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(store studentStore, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, logger: logger}
}

// Summary returns the flat summary projection for a student in a term.
func (s *StudentService) Summary(ctx context.Context, studentID, termID string) (*dto.StudentSummaryDTO, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	row, err := s.store.SummaryByID(ctx, studentID, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student summary")
	}
	summary := dto.NewStudentSummaryDTO(*row)
	return &summary, nil
}
