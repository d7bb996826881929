package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/sis-core-api/internal/models"
)

// PlatformService assembles the platform report schemas for the read-only
// snapshot endpoints. It holds the documents in memory: OLAP and quantum
// profiles are provisioned once at construction, while the AIOps and
// zero-trust counters are fed by run and access-check outcomes.
type PlatformService struct {
	metrics *MetricsService
	logger  *zap.Logger
	enabled bool

	mu        sync.Mutex
	olap      models.ReportOLAP
	aiops     models.ReportAIOps
	quantum   models.ReportQuantumCrypto
	zeroTrust models.ReportZeroTrust
}

// NewPlatformService constructs the service and seeds the stock documents.
func NewPlatformService(metrics *MetricsService, logger *zap.Logger, enabled bool) *PlatformService {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now().UTC()

	olap := models.ReportOLAP{
		SystemID:        uuid.NewString(),
		SystemName:      "sis-core-warehouse",
		Status:          models.OLAPStatusPlanned,
		SchemaVersion:   "2026.1",
		RefreshInterval: "15m",
		Measures:        []string{"attendance_rate", "absence_days", "enrollment_count"},
	}
	olap.DeployOLAPSystem("postgres-rollup", "postgresql", now)
	olap.AddCube(models.OLAPCube{
		CubeID:     uuid.NewString(),
		Name:       "attendance",
		FactTable:  "daily_attendance",
		Dimensions: []string{"date", "campus", "grade_level", "class"},
		Measures:   []string{"present", "sick", "excused", "absent"},
	})
	olap.AddCube(models.OLAPCube{
		CubeID:     uuid.NewString(),
		Name:       "enrollment",
		FactTable:  "enrollments",
		Dimensions: []string{"term", "campus", "grade_level"},
		Measures:   []string{"active", "withdrawn"},
	})

	aiops := models.ReportAIOps{
		PlatformID:      uuid.NewString(),
		PlatformName:    "report-automation",
		ModelVersion:    "baseline",
		TrainingWindow:  "30d",
		SamplingRate:    1.0,
		Enabled:         enabled,
		WatchedServices: []string{"reports", "cache", "database"},
	}

	quantum := models.ReportQuantumCrypto{
		ProfileID:        uuid.NewString(),
		ProfileName:      "download-token-profile",
		KEMAlgorithm:     models.PQAlgorithmKyber,
		SigningAlgorithm: models.PQAlgorithmDilithium,
		HybridMode:       true,
		ClassicalCipher:  "AES-256-GCM",
		KeySizeBits:      768,
		RotationInterval: "720h",
	}
	quantum.IncrementKeyRotation(true, now)

	zeroTrust := models.ReportZeroTrust{
		PostureID:         uuid.NewString(),
		PostureName:       "campus-access-posture",
		PolicyVersion:     "v1",
		MFARequired:       false,
		DeviceTrustScore:  0.8,
		SessionTTLMinutes: 60,
	}
	zeroTrust.AddSegment(models.TrustSegment{
		SegmentID:   uuid.NewString(),
		Name:        "staff-network",
		Posture:     models.SegmentPostureVerified,
		DeviceCount: 0,
		VerifiedAt:  &now,
	})
	zeroTrust.AddSegment(models.TrustSegment{
		SegmentID: uuid.NewString(),
		Name:      "student-wifi",
		Posture:   models.SegmentPostureUnverified,
	})

	return &PlatformService{
		metrics:   metrics,
		logger:    logger,
		enabled:   enabled,
		olap:      olap,
		aiops:     aiops,
		quantum:   quantum,
		zeroTrust: zeroTrust,
	}
}

// Enabled reports whether the snapshot endpoints are active.
func (s *PlatformService) Enabled() bool {
	return s != nil && s.enabled
}

// RecordReportRun feeds a terminal report run outcome into the automation and
// warehouse counters. Failed runs additionally leave an anomaly record.
func (s *PlatformService) RecordReportRun(successful bool, durationMs int64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aiops.IncrementAutomation(successful)
	status := models.QueryStatusCompleted
	if !successful {
		status = models.QueryStatusFailed
		s.aiops.RecordAnomaly(models.AnomalyRecord{
			AnomalyID:  uuid.NewString(),
			Service:    "reports",
			Metric:     "report_run_failures",
			Severity:   models.AnomalySeverityWarning,
			Score:      1.0,
			DetectedAt: time.Now().UTC(),
		})
	}
	s.olap.RecordQueryExecution(status, durationMs)
}

// RecordAccessDecision feeds an access-check outcome into the posture counters.
func (s *PlatformService) RecordAccessDecision(granted bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zeroTrust.IncrementAccessAttempt(granted)
}

// RecordSessionRevoked bumps the revoked-session counter.
func (s *PlatformService) RecordSessionRevoked() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zeroTrust.RevokeSession()
}

// OLAPSnapshot returns the warehouse document with live cache counters folded in.
func (s *PlatformService) OLAPSnapshot() models.ReportOLAP {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.olap
	doc.Cubes = append([]models.OLAPCube(nil), s.olap.Cubes...)
	doc.Queries = append([]models.MDXQuery(nil), s.olap.Queries...)
	doc.Measures = append([]string(nil), s.olap.Measures...)

	snap := s.metrics.Snapshot()
	doc.CacheHits = int64(snap.CacheHits)
	doc.CacheMisses = int64(snap.CacheMisses)
	return doc
}

// AIOpsSnapshot returns the automation document stamped with the read time.
func (s *PlatformService) AIOpsSnapshot() models.ReportAIOps {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.aiops.LastEvaluatedAt = &now

	doc := s.aiops
	doc.Anomalies = append([]models.AnomalyRecord(nil), s.aiops.Anomalies...)
	doc.WatchedServices = append([]string(nil), s.aiops.WatchedServices...)
	return doc
}

// QuantumSnapshot returns the key management profile document.
func (s *PlatformService) QuantumSnapshot() models.ReportQuantumCrypto {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.quantum
	doc.KeyExchanges = append([]models.KeyExchangeRecord(nil), s.quantum.KeyExchanges...)
	return doc
}

// ZeroTrustSnapshot returns the access posture document.
func (s *PlatformService) ZeroTrustSnapshot() models.ReportZeroTrust {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.zeroTrust
	doc.Segments = append([]models.TrustSegment(nil), s.zeroTrust.Segments...)
	doc.WatchedSubjects = append([]string(nil), s.zeroTrust.WatchedSubjects...)
	return doc
}

// SystemMetrics exposes the instrumentation snapshot alongside the documents.
func (s *PlatformService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}
