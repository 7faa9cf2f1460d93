package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/credvet/credvet/internal/model"
)

// AttestationCache stores registry verification results keyed by proof
// digest so repeated lookups for the same claim skip the network. Only
// successful attestations belong here; failed lookups must stay retryable.
type AttestationCache interface {
	Get(digest string) (*model.ClaimVerificationResult, bool)
	Set(digest string, result *model.ClaimVerificationResult, ttl time.Duration)
	Delete(digest string)
	Clear()
}

// Key namespaces a proof digest into a cache key.
func Key(digest string) string {
	hash := sha256.Sum256([]byte(digest))
	return "credvet:v1:" + hex.EncodeToString(hash[:])
}
