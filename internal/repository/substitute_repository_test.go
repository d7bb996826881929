package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campushq/sis-core-api/internal/models"
)

func newSubstituteRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubstituteRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSubstituteRepoMock(t)
	defer cleanup()
	repo := NewSubstituteRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO substitute_assignments")).
		WithArgs(sqlmock.AnyArg(), "teacher-1", "teacher-2", "class-1", "period-1", sqlmock.AnyArg(), nil, "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.SubstituteAssignment{
		AbsentTeacherID:     "teacher-1",
		SubstituteTeacherID: "teacher-2",
		ClassID:             "class-1",
		PeriodID:            "period-1",
		Date:                time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		CreatedBy:           "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), assignment))
	require.NotEmpty(t, assignment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstituteRepositoryListRecords(t *testing.T) {
	db, mock, cleanup := newSubstituteRepoMock(t)
	defer cleanup()
	repo := NewSubstituteRepository(db)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(date).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"id", "absent_teacher_id", "substitute_teacher_id", "class_id", "period_id", "date", "notes", "created_by", "created_at",
		"absent_teacher_name", "substitute_teacher_name", "class_name", "period_label", "campus_name",
	}).AddRow("sub-1", "teacher-1", "teacher-2", "class-1", "period-1", date, nil, "admin-1", time.Now(),
		"Rina Hartati", "Budi Santoso", "X IPA 1", "Period 3", "North Campus")
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY sa.date DESC, p.label ASC LIMIT $2 OFFSET $3")).
		WithArgs(date, 20, 0).
		WillReturnRows(rows)

	records, total, err := repo.ListRecords(context.Background(), models.SubstituteFilter{Date: &date})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, records, 1)
	require.Equal(t, "Budi Santoso", records[0].SubstituteTeacherName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstituteRepositoryExistsOverlap(t *testing.T) {
	db, mock, cleanup := newSubstituteRepoMock(t)
	defer cleanup()
	repo := NewSubstituteRepository(db)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("teacher-2", "period-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsOverlap(context.Background(), "teacher-2", "period-1", date)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}
