package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroTrustAccessGrantRate(t *testing.T) {
	r := &ReportZeroTrust{}
	assert.Equal(t, 0.0, r.AccessGrantRate())

	r.IncrementAccessAttempt(true)
	r.IncrementAccessAttempt(true)
	r.IncrementAccessAttempt(true)
	r.IncrementAccessAttempt(false)

	assert.Equal(t, int64(4), r.AccessAttempts)
	assert.Equal(t, int64(3), r.AccessGranted)
	assert.Equal(t, int64(1), r.AccessDenied)
	assert.Equal(t, 75.0, r.AccessGrantRate())
}

func TestZeroTrustAddSegmentInitializesList(t *testing.T) {
	r := &ReportZeroTrust{}
	r.AddSegment(TrustSegment{SegmentID: "seg-1", Posture: SegmentPostureVerified})
	require.Len(t, r.Segments, 1)
	assert.Equal(t, "seg-1", r.Segments[0].SegmentID)
}

func TestAIOpsAutomationSuccessRate(t *testing.T) {
	r := &ReportAIOps{}
	r.IncrementAutomation(true)
	r.IncrementAutomation(false)

	assert.Equal(t, int64(2), r.AutomationRuns)
	assert.Equal(t, 50.0, r.AutomationSuccessRate)
}

func TestAIOpsAnomalyCounters(t *testing.T) {
	r := &ReportAIOps{}
	r.RecordAnomaly(AnomalyRecord{AnomalyID: "a-1", Severity: AnomalySeverityWarning, DetectedAt: time.Now()})
	r.RecordAnomaly(AnomalyRecord{AnomalyID: "a-2", Severity: AnomalySeverityCritical, DetectedAt: time.Now()})
	r.ResolveAnomaly()

	assert.Equal(t, int64(2), r.AnomaliesDetected)
	assert.Equal(t, 50.0, r.AnomalyResolutionRate())
	assert.Len(t, r.Anomalies, 2)
}

func TestOLAPQueryCounters(t *testing.T) {
	r := &ReportOLAP{}
	assert.Equal(t, 0.0, r.QuerySuccessRate())

	r.RecordQueryExecution(QueryStatusCompleted, 120)
	r.RecordQueryExecution(QueryStatusCompleted, 80)
	r.RecordQueryExecution(QueryStatusFailed, 40)
	r.RecordQueryExecution(QueryStatusTimedOut, 60)

	assert.Equal(t, int64(4), r.QueriesExecuted)
	assert.Equal(t, 50.0, r.QuerySuccessRate())
	assert.Equal(t, 75.0, r.AverageQueryDurationMs())
	require.NotNil(t, r.LastQueryDuration)
	assert.Equal(t, int64(60), *r.LastQueryDuration)
}

func TestOLAPDeployAndCubes(t *testing.T) {
	r := &ReportOLAP{SystemID: "olap-1", Status: OLAPStatusPlanned}
	now := time.Now().UTC()
	r.DeployOLAPSystem("mondrian", "postgres", now)

	assert.Equal(t, OLAPStatusDeployed, r.Status)
	require.NotNil(t, r.DeployedAt)
	assert.Equal(t, now, *r.DeployedAt)

	r.AddCube(OLAPCube{CubeID: "cube-1", FactTable: "fact_attendance"})
	require.Len(t, r.Cubes, 1)
}

func TestQuantumCryptoRates(t *testing.T) {
	r := &ReportQuantumCrypto{KEMAlgorithm: PQAlgorithmKyber}
	now := time.Now().UTC()

	r.IncrementKeyRotation(true, now)
	r.IncrementKeyRotation(false, now)
	assert.Equal(t, 50.0, r.RotationSuccessRate())
	require.NotNil(t, r.LastRotatedAt)

	r.RecordKeyExchange(KeyExchangeRecord{ExchangeID: "x-1", Successful: true, OccurredAt: now})
	r.RecordKeyExchange(KeyExchangeRecord{ExchangeID: "x-2", Successful: true, OccurredAt: now})
	r.RecordKeyExchange(KeyExchangeRecord{ExchangeID: "x-3", Successful: false, OccurredAt: now})
	assert.InDelta(t, 66.67, r.HandshakeSuccessRate(), 0.01)
}
