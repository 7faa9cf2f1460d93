package model

// AttestationProof carries the registry's opaque attestation fields. They are
// passed through unmodified; credvet never interprets them.
type AttestationProof struct {
	Signature  string `json:"signature,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
	MerkleRoot string `json:"merkle_root,omitempty"`
}

// ClaimVerificationResult is the outcome of one registry query. A transport or
// service failure yields Verified=false with Error set; it is data, not a
// control-flow exception.
type ClaimVerificationResult struct {
	Verified    bool   `json:"verified"`
	Accredited  bool   `json:"accredited,omitempty"` // accreditation queries only
	Degree      string `json:"degree,omitempty"`
	Institution string `json:"institution,omitempty"`
	Year        string `json:"year,omitempty"`

	// ProofDigest is a stable hash of the query parameters, independent of
	// the verified outcome, so repeated queries stay auditable.
	ProofDigest string           `json:"proof_digest"`
	Source      string           `json:"source,omitempty"`
	Proof       AttestationProof `json:"proof"`
	Error       string           `json:"error,omitempty"`
}

// TimestampProof anchors the verification event in time. When the oracle is
// unreachable the source substitutes the local wall clock with Verified=false
// and reduced confidence.
type TimestampProof struct {
	Timestamp       int64   `json:"timestamp"` // Unix seconds
	Epoch           int64   `json:"epoch"`
	OracleSignature string  `json:"oracle_signature,omitempty"`
	Confidence      float64 `json:"confidence"` // 0-1
	Verified        bool    `json:"verified"`
	Error           string  `json:"error,omitempty"`
}
