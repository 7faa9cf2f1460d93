package registry

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/credvet/credvet/internal/cache"
	"github.com/credvet/credvet/internal/model"
)

// Client queries the external claim registry. Transport and service failures
// never propagate as errors: every query returns a ClaimVerificationResult,
// with Verified=false and Error set when the registry could not answer. An
// unverifiable claim is a valid terminal outcome for the record.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.AttestationCache
	cacheTTL   time.Duration
}

// attestationQuery is the wire shape of a registry lookup. Its JSON encoding
// is also the preimage of the proof digest, so field order matters: encoding
// follows struct declaration order and must stay stable.
type attestationQuery struct {
	DataType string      `json:"dataType"`
	Query    queryParams `json:"query"`
}

type queryParams struct {
	Degree      string `json:"degree,omitempty"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

type attestationResponse struct {
	Verified          bool                   `json:"verified"`
	Accredited        bool                   `json:"accredited"`
	AccreditationBody string                 `json:"accreditationBody"`
	Source            string                 `json:"source"`
	Proof             model.AttestationProof `json:"proof"`
}

// NewClient creates a registry client. A nil cache disables response caching.
func NewClient(cfg model.RegistryConfig, responseCache cache.AttestationCache) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		cache:    responseCache,
		cacheTTL: cfg.CacheTTL,
	}
}

// VerifyDegree checks a degree claim against the registry.
func (c *Client) VerifyDegree(ctx context.Context, degree, institution, year string) *model.ClaimVerificationResult {
	query := attestationQuery{
		DataType: "education",
		Query: queryParams{
			Degree:      degree,
			Institution: institution,
			Year:        year,
		},
	}

	result := c.verify(ctx, query)
	result.Degree = degree
	result.Institution = institution
	result.Year = year
	return result
}

// VerifyAccreditation checks whether an institution is accredited.
func (c *Client) VerifyAccreditation(ctx context.Context, institution string) *model.ClaimVerificationResult {
	query := attestationQuery{
		DataType: "accreditation",
		Query: queryParams{
			Institution: institution,
		},
	}

	result := c.verify(ctx, query)
	result.Institution = institution
	return result
}

func (c *Client) verify(ctx context.Context, query attestationQuery) *model.ClaimVerificationResult {
	digest, body := proofDigest(query)

	if cached, ok := c.cachedResult(digest); ok {
		return cached
	}

	result := &model.ClaimVerificationResult{
		ProofDigest: digest,
	}

	resp, err := c.query(ctx, body)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Verified = resp.Verified
	result.Accredited = resp.Accredited
	result.Source = resp.Source
	result.Proof = resp.Proof

	c.storeResult(digest, result)
	return result
}

// query posts the attestation query and decodes the response. The caller has
// already serialized the body so the bytes hashed and the bytes sent match.
func (c *Client) query(ctx context.Context, body []byte) (*attestationResponse, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("registry endpoint not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	url := fmt.Sprintf("%s/query", c.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded attestationResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &decoded, nil
}

func (c *Client) cachedResult(digest string) (*model.ClaimVerificationResult, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(digest)
}

func (c *Client) storeResult(digest string, result *model.ClaimVerificationResult) {
	if c.cache == nil {
		return
	}
	c.cache.Set(digest, result, c.cacheTTL)
}

// proofDigest hashes the serialized query. The digest depends only on the
// query parameters, never on the outcome, so identical queries produce
// identical digests across runs.
func proofDigest(query attestationQuery) (string, []byte) {
	body, err := json.Marshal(query)
	if err != nil {
		// Marshalling a flat struct of strings cannot fail.
		panic(fmt.Sprintf("marshal attestation query: %v", err))
	}
	sum := sha256.Sum256(body)
	return "0x" + hex.EncodeToString(sum[:]), body
}
