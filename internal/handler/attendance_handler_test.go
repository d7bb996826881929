package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campushq/sis-core-api/internal/models"
)

type statsProviderMock struct {
	filter models.AttendanceStatisticsFilter
	calls  int
}

func (m *statsProviderMock) Statistics(ctx context.Context, filter models.AttendanceStatisticsFilter) (*models.AttendanceStatistics, error) {
	m.filter = filter
	m.calls++
	return &models.AttendanceStatistics{TermID: filter.TermID}, nil
}

func TestAttendanceStatisticsDefaultsWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &statsProviderMock{}
	handler := NewAttendanceHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/attendance/statistics?termId=term-1", nil)

	handler.Statistics(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, mockSvc.calls)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	require.Equal(t, today, mockSvc.filter.To)
	require.Equal(t, today.AddDate(0, 0, -30), mockSvc.filter.From)
}

func TestAttendanceStatisticsExplicitWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &statsProviderMock{}
	handler := NewAttendanceHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/attendance/statistics?termId=term-1&from=2026-08-03&to=2026-08-14", nil)

	handler.Statistics(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), mockSvc.filter.From)
	require.Equal(t, time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), mockSvc.filter.To)
}

func TestAttendanceStatisticsRejectsBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &statsProviderMock{}
	handler := NewAttendanceHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/attendance/statistics", nil)
	handler.Statistics(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/attendance/statistics?termId=term-1&from=08/03/2026", nil)
	handler.Statistics(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 0, mockSvc.calls)
}
