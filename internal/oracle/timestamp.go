package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/credvet/credvet/internal/model"
)

// nowUnix is swapped in tests for deterministic fallback timestamps.
var nowUnix = func() int64 { return time.Now().Unix() }

// Source obtains trusted timestamps from an external time oracle. When the
// oracle is unreachable it substitutes the local wall clock at reduced
// confidence, so timestamping degrades instead of failing the pipeline.
type Source struct {
	endpoint     string
	httpClient   *http.Client
	epochSeconds int64
}

type oracleResponse struct {
	Timestamp       int64   `json:"timestamp"`
	Epoch           int64   `json:"epoch"`
	OracleSignature string  `json:"oracleSignature"`
	Confidence      float64 `json:"confidence"`
}

// NewSource creates a timestamp source.
func NewSource(cfg model.OracleConfig) *Source {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	epochSeconds := cfg.EpochSeconds
	if epochSeconds <= 0 {
		epochSeconds = 3600
	}

	return &Source{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		epochSeconds: epochSeconds,
	}
}

// GetTimestamp returns a timestamp proof for the current moment. The returned
// proof is never nil: oracle failure yields the wall-clock fallback with
// Verified=false, confidence 0.5 and the failure recorded in Error.
func (s *Source) GetTimestamp(ctx context.Context) *model.TimestampProof {
	resp, err := s.query(ctx)
	if err != nil {
		now := nowUnix()
		return &model.TimestampProof{
			Timestamp:  now,
			Epoch:      now / s.epochSeconds,
			Confidence: 0.5,
			Verified:   false,
			Error:      err.Error(),
		}
	}

	proof := &model.TimestampProof{
		Timestamp:       resp.Timestamp,
		Epoch:           resp.Epoch,
		OracleSignature: resp.OracleSignature,
		Confidence:      resp.Confidence,
		Verified:        true,
	}
	if proof.Timestamp == 0 {
		proof.Timestamp = nowUnix()
	}
	if proof.Epoch == 0 {
		proof.Epoch = proof.Timestamp / s.epochSeconds
	}
	if proof.Confidence == 0 {
		proof.Confidence = 0.99
	}
	return proof
}

// EpochOf maps a Unix timestamp to its oracle epoch.
func (s *Source) EpochOf(timestamp int64) int64 {
	return timestamp / s.epochSeconds
}

func (s *Source) query(ctx context.Context) (*oracleResponse, error) {
	if s.endpoint == "" {
		return nil, fmt.Errorf("oracle endpoint not configured")
	}

	url := fmt.Sprintf("%s/timestamp", s.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded oracleResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &decoded, nil
}
