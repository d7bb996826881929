package models

import "time"

// AnomalySeverity grades recorded anomalies.
type AnomalySeverity string

const (
	AnomalySeverityInfo     AnomalySeverity = "INFO"
	AnomalySeverityWarning  AnomalySeverity = "WARNING"
	AnomalySeverityCritical AnomalySeverity = "CRITICAL"
)

// ReportAIOps is a configuration/metrics schema for operational automation
// reporting. No detection logic lives here; counters are maintained by
// callers through the increment helpers.
type ReportAIOps struct {
	PlatformID      string     `json:"platform_id"`
	PlatformName    string     `json:"platform_name"`
	ModelVersion    string     `json:"model_version,omitempty"`
	TrainingWindow  string     `json:"training_window,omitempty"`
	SamplingRate    float64    `json:"sampling_rate"`
	Enabled         bool       `json:"enabled"`
	LastEvaluatedAt *time.Time `json:"last_evaluated_at,omitempty"`

	Anomalies       []AnomalyRecord `json:"anomalies,omitempty"`
	WatchedServices []string        `json:"watched_services,omitempty"`

	AutomationRuns        int64   `json:"automation_runs"`
	AutomationSuccesses   int64   `json:"automation_successes"`
	AutomationFailures    int64   `json:"automation_failures"`
	AutomationSuccessRate float64 `json:"automation_success_rate"`

	AnomaliesDetected  int64 `json:"anomalies_detected"`
	AnomaliesResolved  int64 `json:"anomalies_resolved"`
	AlertsSuppressed   int64 `json:"alerts_suppressed"`
	MeanTimeToDetectMs int64 `json:"mean_time_to_detect_ms"`
}

// AnomalyRecord is a single recorded anomaly observation.
type AnomalyRecord struct {
	AnomalyID  string          `json:"anomaly_id"`
	Service    string          `json:"service"`
	Metric     string          `json:"metric"`
	Severity   AnomalySeverity `json:"severity"`
	Score      float64         `json:"score"`
	DetectedAt time.Time       `json:"detected_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// IncrementAutomation records one automation run and refreshes the success rate.
func (r *ReportAIOps) IncrementAutomation(successful bool) {
	r.AutomationRuns++
	if successful {
		r.AutomationSuccesses++
	} else {
		r.AutomationFailures++
	}
	r.AutomationSuccessRate = float64(r.AutomationSuccesses) / float64(r.AutomationRuns) * 100
}

// RecordAnomaly appends an anomaly record, initializing the list when needed.
func (r *ReportAIOps) RecordAnomaly(record AnomalyRecord) {
	if r.Anomalies == nil {
		r.Anomalies = make([]AnomalyRecord, 0, 1)
	}
	r.Anomalies = append(r.Anomalies, record)
	r.AnomaliesDetected++
}

// ResolveAnomaly bumps the resolved counter.
func (r *ReportAIOps) ResolveAnomaly() {
	r.AnomaliesResolved++
}

// AnomalyResolutionRate returns resolved anomalies as a percentage of detections.
func (r *ReportAIOps) AnomalyResolutionRate() float64 {
	if r.AnomaliesDetected == 0 {
		return 0
	}
	return float64(r.AnomaliesResolved) / float64(r.AnomaliesDetected) * 100
}
