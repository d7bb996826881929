package models

import "time"

// OLAPStatus tracks the lifecycle of an OLAP deployment record.
type OLAPStatus string

const (
	OLAPStatusPlanned  OLAPStatus = "PLANNED"
	OLAPStatusDeployed OLAPStatus = "DEPLOYED"
	OLAPStatusDegraded OLAPStatus = "DEGRADED"
	OLAPStatusRetired  OLAPStatus = "RETIRED"
)

// QueryStatus labels the outcome of a recorded query execution.
type QueryStatus string

const (
	QueryStatusCompleted QueryStatus = "COMPLETED"
	QueryStatusFailed    QueryStatus = "FAILED"
	QueryStatusTimedOut  QueryStatus = "TIMED_OUT"
)

// ReportOLAP is a configuration/metrics schema describing an analytical
// reporting deployment. It carries no query engine; values are populated by
// callers and read back verbatim.
type ReportOLAP struct {
	SystemID        string     `json:"system_id"`
	SystemName      string     `json:"system_name"`
	Status          OLAPStatus `json:"status"`
	Engine          string     `json:"engine,omitempty"`
	StorageBackend  string     `json:"storage_backend,omitempty"`
	SchemaVersion   string     `json:"schema_version,omitempty"`
	RefreshInterval string     `json:"refresh_interval,omitempty"`
	DeployedAt      *time.Time `json:"deployed_at,omitempty"`

	Cubes    []OLAPCube `json:"cubes,omitempty"`
	Queries  []MDXQuery `json:"queries,omitempty"`
	Measures []string   `json:"measures,omitempty"`

	QueriesExecuted   int64   `json:"queries_executed"`
	QueriesFailed     int64   `json:"queries_failed"`
	QueriesTimedOut   int64   `json:"queries_timed_out"`
	TotalQueryTimeMs  int64   `json:"total_query_time_ms"`
	CacheHits         int64   `json:"cache_hits"`
	CacheMisses       int64   `json:"cache_misses"`
	LastQueryDuration *int64  `json:"last_query_duration_ms,omitempty"`
	StorageUsedBytes  int64   `json:"storage_used_bytes"`
	CompressionRatio  float64 `json:"compression_ratio"`
}

// OLAPCube describes one multidimensional dataset within the deployment.
type OLAPCube struct {
	CubeID         string     `json:"cube_id"`
	Name           string     `json:"name"`
	FactTable      string     `json:"fact_table"`
	Dimensions     []string   `json:"dimensions,omitempty"`
	Measures       []string   `json:"measures,omitempty"`
	RowCount       int64      `json:"row_count"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"`
	PartitionCount int        `json:"partition_count"`
}

// MDXQuery is a stored query definition with execution metadata.
type MDXQuery struct {
	QueryID    string      `json:"query_id"`
	Name       string      `json:"name"`
	Statement  string      `json:"statement"`
	Status     QueryStatus `json:"status"`
	DurationMs *int64      `json:"duration_ms,omitempty"`
	ExecutedAt *time.Time  `json:"executed_at,omitempty"`
	RowsReturn int64       `json:"rows_returned"`
}

// DeployOLAPSystem marks the schema as deployed at the given time.
func (r *ReportOLAP) DeployOLAPSystem(engine, storageBackend string, at time.Time) {
	r.Engine = engine
	r.StorageBackend = storageBackend
	r.Status = OLAPStatusDeployed
	r.DeployedAt = &at
}

// AddCube appends a cube definition, initializing the list when needed.
func (r *ReportOLAP) AddCube(cube OLAPCube) {
	if r.Cubes == nil {
		r.Cubes = make([]OLAPCube, 0, 1)
	}
	r.Cubes = append(r.Cubes, cube)
}

// RecordQueryExecution updates the aggregate query counters.
func (r *ReportOLAP) RecordQueryExecution(status QueryStatus, durationMs int64) {
	r.QueriesExecuted++
	r.TotalQueryTimeMs += durationMs
	r.LastQueryDuration = &durationMs
	switch status {
	case QueryStatusFailed:
		r.QueriesFailed++
	case QueryStatusTimedOut:
		r.QueriesTimedOut++
	}
}

// QuerySuccessRate returns completed queries as a percentage of all executions.
func (r *ReportOLAP) QuerySuccessRate() float64 {
	if r.QueriesExecuted == 0 {
		return 0
	}
	succeeded := r.QueriesExecuted - r.QueriesFailed - r.QueriesTimedOut
	return float64(succeeded) / float64(r.QueriesExecuted) * 100
}

// AverageQueryDurationMs returns the mean execution time across all queries.
func (r *ReportOLAP) AverageQueryDurationMs() float64 {
	if r.QueriesExecuted == 0 {
		return 0
	}
	return float64(r.TotalQueryTimeMs) / float64(r.QueriesExecuted)
}

// CacheHitRate returns cache hits as a percentage of all lookups.
func (r *ReportOLAP) CacheHitRate() float64 {
	total := r.CacheHits + r.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(r.CacheHits) / float64(total) * 100
}
