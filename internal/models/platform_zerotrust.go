package models

import "time"

// SegmentPosture labels the verification posture of a network segment.
type SegmentPosture string

const (
	SegmentPostureVerified   SegmentPosture = "VERIFIED"
	SegmentPostureUnverified SegmentPosture = "UNVERIFIED"
	SegmentPostureQuarantine SegmentPosture = "QUARANTINE"
)

// ReportZeroTrust is a configuration/metrics schema describing access control
// posture. It enforces nothing; counters are maintained by callers through
// the increment helpers.
type ReportZeroTrust struct {
	PostureID         string     `json:"posture_id"`
	PostureName       string     `json:"posture_name"`
	PolicyVersion     string     `json:"policy_version,omitempty"`
	MFARequired       bool       `json:"mfa_required"`
	DeviceTrustScore  float64    `json:"device_trust_score"`
	SessionTTLMinutes int        `json:"session_ttl_minutes"`
	LastReviewedAt    *time.Time `json:"last_reviewed_at,omitempty"`

	Segments        []TrustSegment `json:"segments,omitempty"`
	WatchedSubjects []string       `json:"watched_subjects,omitempty"`

	AccessAttempts  int64 `json:"access_attempts"`
	AccessGranted   int64 `json:"access_granted"`
	AccessDenied    int64 `json:"access_denied"`
	SessionsRevoked int64 `json:"sessions_revoked"`
	PolicyBreaches  int64 `json:"policy_breaches"`
}

// TrustSegment is one logical segment tracked by the posture.
type TrustSegment struct {
	SegmentID   string         `json:"segment_id"`
	Name        string         `json:"name"`
	Posture     SegmentPosture `json:"posture"`
	DeviceCount int            `json:"device_count"`
	VerifiedAt  *time.Time     `json:"verified_at,omitempty"`
}

// IncrementAccessAttempt records one access check outcome and refreshes the grant rate.
func (r *ReportZeroTrust) IncrementAccessAttempt(granted bool) {
	r.AccessAttempts++
	if granted {
		r.AccessGranted++
	} else {
		r.AccessDenied++
	}
}

// AccessGrantRate returns granted attempts as a percentage of all attempts.
func (r *ReportZeroTrust) AccessGrantRate() float64 {
	if r.AccessAttempts == 0 {
		return 0
	}
	return float64(r.AccessGranted) / float64(r.AccessAttempts) * 100
}

// AddSegment appends a segment, initializing the list when needed.
func (r *ReportZeroTrust) AddSegment(segment TrustSegment) {
	if r.Segments == nil {
		r.Segments = make([]TrustSegment, 0, 1)
	}
	r.Segments = append(r.Segments, segment)
}

// RevokeSession bumps the revoked-session counter.
func (r *ReportZeroTrust) RevokeSession() {
	r.SessionsRevoked++
}
