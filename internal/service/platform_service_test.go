package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/sis-core-api/internal/models"
)

func TestPlatformServiceSeedsDocuments(t *testing.T) {
	svc := NewPlatformService(NewMetricsService(), nil, true)

	olap := svc.OLAPSnapshot()
	assert.Equal(t, models.OLAPStatusDeployed, olap.Status)
	assert.Equal(t, "postgres-rollup", olap.Engine)
	require.Len(t, olap.Cubes, 2)
	assert.Equal(t, "daily_attendance", olap.Cubes[0].FactTable)

	quantum := svc.QuantumSnapshot()
	assert.Equal(t, models.PQAlgorithmKyber, quantum.KEMAlgorithm)
	assert.Equal(t, int64(1), quantum.RotationsAttempted)
	assert.Equal(t, int64(1), quantum.RotationsSucceeded)
	require.NotNil(t, quantum.LastRotatedAt)

	zt := svc.ZeroTrustSnapshot()
	require.Len(t, zt.Segments, 2)
	assert.Equal(t, models.SegmentPostureVerified, zt.Segments[0].Posture)
	assert.Zero(t, zt.AccessAttempts)
}

func TestPlatformServiceReportRunCounters(t *testing.T) {
	svc := NewPlatformService(NewMetricsService(), nil, true)

	svc.RecordReportRun(true, 1200)
	svc.RecordReportRun(false, 300)

	aiops := svc.AIOpsSnapshot()
	assert.Equal(t, int64(2), aiops.AutomationRuns)
	assert.Equal(t, int64(1), aiops.AutomationSuccesses)
	assert.Equal(t, int64(1), aiops.AutomationFailures)
	assert.InDelta(t, 50.0, aiops.AutomationSuccessRate, 0.001)
	require.Len(t, aiops.Anomalies, 1)
	assert.Equal(t, "reports", aiops.Anomalies[0].Service)
	require.NotNil(t, aiops.LastEvaluatedAt)

	olap := svc.OLAPSnapshot()
	assert.Equal(t, int64(2), olap.QueriesExecuted)
	assert.Equal(t, int64(1), olap.QueriesFailed)
	assert.InDelta(t, 50.0, olap.QuerySuccessRate(), 0.001)
	assert.Equal(t, int64(1500), olap.TotalQueryTimeMs)
}

func TestPlatformServiceAccessCounters(t *testing.T) {
	svc := NewPlatformService(NewMetricsService(), nil, true)

	svc.RecordAccessDecision(true)
	svc.RecordAccessDecision(true)
	svc.RecordAccessDecision(true)
	svc.RecordAccessDecision(false)
	svc.RecordSessionRevoked()

	zt := svc.ZeroTrustSnapshot()
	assert.Equal(t, int64(4), zt.AccessAttempts)
	assert.InDelta(t, 75.0, zt.AccessGrantRate(), 0.001)
	assert.Equal(t, int64(1), zt.SessionsRevoked)
}

func TestPlatformServiceOLAPFoldsCacheCounters(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveCacheLookup(true, time.Millisecond)
	metrics.ObserveCacheLookup(true, time.Millisecond)
	metrics.ObserveCacheLookup(false, time.Millisecond)

	svc := NewPlatformService(metrics, nil, true)

	olap := svc.OLAPSnapshot()
	assert.Equal(t, int64(2), olap.CacheHits)
	assert.Equal(t, int64(1), olap.CacheMisses)
	assert.InDelta(t, 100.0*2/3, olap.CacheHitRate(), 0.001)
}

func TestPlatformServiceSnapshotsDoNotAliasState(t *testing.T) {
	svc := NewPlatformService(NewMetricsService(), nil, true)

	zt := svc.ZeroTrustSnapshot()
	zt.Segments[0].Name = "tampered"

	again := svc.ZeroTrustSnapshot()
	assert.Equal(t, "staff-network", again.Segments[0].Name)
}
