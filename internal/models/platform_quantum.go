package models

import "time"

// PQAlgorithm names a post-quantum algorithm family used in the profile.
type PQAlgorithm string

const (
	PQAlgorithmKyber     PQAlgorithm = "KYBER"
	PQAlgorithmDilithium PQAlgorithm = "DILITHIUM"
	PQAlgorithmFalcon    PQAlgorithm = "FALCON"
	PQAlgorithmSphincs   PQAlgorithm = "SPHINCS_PLUS"
)

// ReportQuantumCrypto is a configuration/metrics schema describing a
// post-quantum key management profile. It performs no cryptography; the
// fields describe an external subsystem and the helpers maintain counters.
type ReportQuantumCrypto struct {
	ProfileID        string      `json:"profile_id"`
	ProfileName      string      `json:"profile_name"`
	KEMAlgorithm     PQAlgorithm `json:"kem_algorithm"`
	SigningAlgorithm PQAlgorithm `json:"signing_algorithm"`
	HybridMode       bool        `json:"hybrid_mode"`
	ClassicalCipher  string      `json:"classical_cipher,omitempty"`
	KeySizeBits      int         `json:"key_size_bits"`
	RotationInterval string      `json:"rotation_interval,omitempty"`
	LastRotatedAt    *time.Time  `json:"last_rotated_at,omitempty"`

	KeyExchanges []KeyExchangeRecord `json:"key_exchanges,omitempty"`

	RotationsAttempted int64 `json:"rotations_attempted"`
	RotationsSucceeded int64 `json:"rotations_succeeded"`
	RotationsFailed    int64 `json:"rotations_failed"`

	HandshakesAttempted int64 `json:"handshakes_attempted"`
	HandshakesSucceeded int64 `json:"handshakes_succeeded"`
}

// KeyExchangeRecord documents one recorded key exchange event.
type KeyExchangeRecord struct {
	ExchangeID string      `json:"exchange_id"`
	Peer       string      `json:"peer"`
	Algorithm  PQAlgorithm `json:"algorithm"`
	Successful bool        `json:"successful"`
	LatencyMs  int64       `json:"latency_ms"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// IncrementKeyRotation records a rotation attempt outcome.
func (r *ReportQuantumCrypto) IncrementKeyRotation(successful bool, at time.Time) {
	r.RotationsAttempted++
	if successful {
		r.RotationsSucceeded++
		r.LastRotatedAt = &at
	} else {
		r.RotationsFailed++
	}
}

// RecordKeyExchange appends an exchange record, initializing the list when needed.
func (r *ReportQuantumCrypto) RecordKeyExchange(record KeyExchangeRecord) {
	if r.KeyExchanges == nil {
		r.KeyExchanges = make([]KeyExchangeRecord, 0, 1)
	}
	r.KeyExchanges = append(r.KeyExchanges, record)
	r.HandshakesAttempted++
	if record.Successful {
		r.HandshakesSucceeded++
	}
}

// HandshakeSuccessRate returns succeeded handshakes as a percentage of attempts.
func (r *ReportQuantumCrypto) HandshakeSuccessRate() float64 {
	if r.HandshakesAttempted == 0 {
		return 0
	}
	return float64(r.HandshakesSucceeded) / float64(r.HandshakesAttempted) * 100
}

// RotationSuccessRate returns succeeded rotations as a percentage of attempts.
func (r *ReportQuantumCrypto) RotationSuccessRate() float64 {
	if r.RotationsAttempted == 0 {
		return 0
	}
	return float64(r.RotationsSucceeded) / float64(r.RotationsAttempted) * 100
}
