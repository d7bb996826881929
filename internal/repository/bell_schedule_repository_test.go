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

func newBellScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBellScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newBellScheduleRepoMock(t)
	defer cleanup()
	repo := NewBellScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bell_schedules")).
		WithArgs(sqlmock.AnyArg(), "Regular Day", "regular", "campus-1", "sy-2026", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bell_schedule_periods")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1, "Period 1", "08:00", "08:50", false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	schedule := &models.BellSchedule{
		Name:         "Regular Day",
		ScheduleType: models.BellScheduleRegular,
		CampusID:     "campus-1",
		SchoolYearID: "sy-2026",
		Active:       true,
		Periods: []models.BellSchedulePeriod{
			{Sequence: 1, Label: "Period 1", StartTime: "08:00", EndTime: "08:50"},
		},
	}
	require.NoError(t, repo.Create(context.Background(), schedule))
	require.NotEmpty(t, schedule.ID)
	require.Equal(t, schedule.ID, schedule.Periods[0].ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBellScheduleRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newBellScheduleRepoMock(t)
	defer cleanup()
	repo := NewBellScheduleRepository(db)

	scheduleRows := sqlmock.NewRows([]string{"id", "name", "schedule_type", "campus_id", "school_year_id", "active", "created_at", "updated_at"}).
		AddRow("bs-1", "Exam Day", "exam", "campus-1", "sy-2026", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM bell_schedules WHERE id = $1")).
		WithArgs("bs-1").
		WillReturnRows(scheduleRows)

	periodRows := sqlmock.NewRows([]string{"id", "schedule_id", "sequence", "label", "start_time", "end_time", "is_passing"}).
		AddRow("p-1", "bs-1", 1, "Exam Block A", "08:00", "10:00", false).
		AddRow("p-2", "bs-1", 2, "Passing", "10:00", "10:10", true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bell_schedule_periods WHERE schedule_id = $1 ORDER BY sequence ASC")).
		WithArgs("bs-1").
		WillReturnRows(periodRows)

	overrideRows := sqlmock.NewRows([]string{"id", "schedule_id", "date", "reason"}).
		AddRow("o-1", "bs-1", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "Midterm exams")
	mock.ExpectQuery(regexp.QuoteMeta("FROM bell_schedule_overrides WHERE schedule_id = $1 ORDER BY date ASC")).
		WithArgs("bs-1").
		WillReturnRows(overrideRows)

	schedule, err := repo.FindByID(context.Background(), "bs-1")
	require.NoError(t, err)
	require.Len(t, schedule.Periods, 2)
	require.Len(t, schedule.Overrides, 1)
	require.True(t, schedule.Periods[1].IsPassing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBellScheduleRepositoryList(t *testing.T) {
	db, mock, cleanup := newBellScheduleRepoMock(t)
	defer cleanup()
	repo := NewBellScheduleRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bell_schedules WHERE 1=1 AND campus_id = $1 AND active = $2")).
		WithArgs("campus-1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "name", "schedule_type", "campus_id", "school_year_id", "active", "created_at", "updated_at"}).
		AddRow("bs-1", "Regular Day", "regular", "campus-1", "sy-2026", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC LIMIT $3 OFFSET $4")).
		WithArgs("campus-1", true, 20, 0).
		WillReturnRows(rows)

	schedules, total, err := repo.List(context.Background(), models.BellScheduleFilter{CampusID: "campus-1", Active: &active})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, schedules, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBellScheduleRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newBellScheduleRepoMock(t)
	defer cleanup()
	repo := NewBellScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bell_schedules WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
