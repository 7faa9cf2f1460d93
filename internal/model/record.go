package model

import "time"

// Status is the lifecycle state of a verification record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Outcome of a completed verification against the score threshold.
type Outcome string

const (
	OutcomeVerified Outcome = "verified"
	OutcomeFailed   Outcome = "failed"
)

// ScoreBreakdown is the composite score split into bounded categories. Each
// field is clamped to its band; the sum never exceeds 100.
type ScoreBreakdown struct {
	DegreeVerification     int `json:"degree_verification"`     // 0-30
	ExperienceVerification int `json:"experience_verification"` // 0-25
	IdentityVerification   int `json:"identity_verification"`   // 0-20
	DocumentAuthenticity   int `json:"document_authenticity"`   // 0-15
	ConsistencyScore       int `json:"consistency_score"`       // 0-10
}

// Total sums all categories.
func (b ScoreBreakdown) Total() int {
	return b.DegreeVerification + b.ExperienceVerification +
		b.IdentityVerification + b.DocumentAuthenticity + b.ConsistencyScore
}

// RegistryProofs groups the per-claim registry results.
type RegistryProofs struct {
	Degree      *ClaimVerificationResult `json:"degree,omitempty"`
	Institution *ClaimVerificationResult `json:"institution,omitempty"`
}

// VerificationRecord is the aggregate root for one verification run. It is
// created on submission with status pending and mutated only by the
// orchestrator that owns it; the store enforces single-writer discipline.
type VerificationRecord struct {
	ID             string    `json:"verification_id"`
	CandidateID    string    `json:"candidate_id"`
	DocumentDigest string    `json:"document_digest"`
	UploadedAt     time.Time `json:"uploaded_at"`
	Status         Status    `json:"status"`

	Entities  ExtractedClaims `json:"entities"`
	Score     int             `json:"score"`
	Breakdown ScoreBreakdown  `json:"breakdown"`
	Flags     Flags           `json:"flags"`

	EvidenceDigest string          `json:"evidence_digest,omitempty"`
	Proofs         RegistryProofs  `json:"proofs,omitempty"`
	Timestamp      *TimestampProof `json:"timestamp,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Outcome derives the verification outcome from the score threshold. Only
// meaningful once the record is completed.
func (r *VerificationRecord) Outcome(threshold int) Outcome {
	if r.Score >= threshold {
		return OutcomeVerified
	}
	return OutcomeFailed
}
