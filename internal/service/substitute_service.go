package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/models"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
)

type substituteStore interface {
	Create(ctx context.Context, assignment *models.SubstituteAssignment) error
	FindRecordByID(ctx context.Context, id string) (*models.SubstituteAssignmentRecord, error)
	ListRecords(ctx context.Context, filter models.SubstituteFilter) ([]models.SubstituteAssignmentRecord, int, error)
	Delete(ctx context.Context, id string) error
	ExistsOverlap(ctx context.Context, substituteTeacherID, periodID string, date time.Time) (bool, error)
}

// SubstituteService manages substitute teacher assignments and their
// pre-resolved list projections.
type SubstituteService struct {
	store     substituteStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubstituteService constructs the service.
func NewSubstituteService(store substituteStore, validate *validator.Validate, logger *zap.Logger) *SubstituteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubstituteService{store: store, validator: validate, logger: logger}
}

// Create validates and stores an assignment, returning the resolved DTO.
func (s *SubstituteService) Create(ctx context.Context, createdBy string, req dto.CreateSubstituteRequest) (*dto.SubstituteAssignmentDTO, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid substitute payload")
	}
	if req.AbsentTeacherID == req.SubstituteTeacherID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "substitute must differ from the absent teacher")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}

	overlap, err := s.store.ExistsOverlap(ctx, req.SubstituteTeacherID, req.PeriodID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check substitute overlap")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrConflict, "substitute already covers this period on that date")
	}

	assignment := &models.SubstituteAssignment{
		AbsentTeacherID:     req.AbsentTeacherID,
		SubstituteTeacherID: req.SubstituteTeacherID,
		ClassID:             req.ClassID,
		PeriodID:            req.PeriodID,
		Date:                date,
		Notes:               req.Notes,
		CreatedBy:           createdBy,
	}
	if err := s.store.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create substitute assignment")
	}

	record, err := s.store.FindRecordByID(ctx, assignment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute assignment")
	}
	result := dto.NewSubstituteAssignmentDTO(*record)
	return &result, nil
}

// Get returns one resolved assignment.
func (s *SubstituteService) Get(ctx context.Context, id string) (*dto.SubstituteAssignmentDTO, error) {
	record, err := s.store.FindRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "substitute assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute assignment")
	}
	result := dto.NewSubstituteAssignmentDTO(*record)
	return &result, nil
}

// List returns resolved assignments matching the filter.
func (s *SubstituteService) List(ctx context.Context, filter models.SubstituteFilter) ([]dto.SubstituteAssignmentDTO, *models.Pagination, error) {
	records, total, err := s.store.ListRecords(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list substitute assignments")
	}
	out := make([]dto.SubstituteAssignmentDTO, 0, len(records))
	for _, record := range records {
		out = append(out, dto.NewSubstituteAssignmentDTO(record))
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

// Delete removes an assignment.
func (s *SubstituteService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "substitute assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete substitute assignment")
	}
	return nil
}
