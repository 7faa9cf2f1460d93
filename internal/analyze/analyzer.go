// Package analyze produces consistency findings for a document, delegating to
// an external reasoning provider when one is configured and degrading to a
// deterministic local analysis otherwise.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"

	"github.com/credvet/credvet/internal/model"
	"github.com/credvet/credvet/internal/timeline"
)

// errNoJSON marks a provider response with no recoverable JSON object.
var errNoJSON = errors.New("no JSON object in provider response")

// fallbackCredibility is the fixed baseline when no external score exists.
const fallbackCredibility = 70

// jsonFragmentPattern recovers a JSON object embedded in surrounding prose.
var jsonFragmentPattern = regexp.MustCompile(`(?s)\{.*\}`)

// modelResponse is the strict JSON shape requested from the provider.
type modelResponse struct {
	Inconsistencies  []string `json:"inconsistencies"`
	FraudIndicators  []string `json:"fraudIndicators"`
	Warnings         []string `json:"warnings"`
	TimelineIssues   []string `json:"timelineIssues"`
	CredibilityScore *int     `json:"credibilityScore"`
	Recommendations  []string `json:"recommendations"`
}

// Analyzer runs the consistency analysis. A nil provider is valid and means
// the fallback path always runs.
type Analyzer struct {
	provider Provider
	timeline *timeline.Validator
	maxChars int
}

// NewAnalyzer creates an analyzer. provider may be nil (external path
// disabled).
func NewAnalyzer(provider Provider, tv *timeline.Validator, cfg model.AnalyzerConfig) *Analyzer {
	maxChars := cfg.MaxPromptChars
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &Analyzer{
		provider: provider,
		timeline: tv,
		maxChars: maxChars,
	}
}

// Analyze produces findings for the document. Any failure of the external
// call (timeout, malformed response, missing credentials) falls back to the
// deterministic local analysis; Analyze itself never fails.
func (a *Analyzer) Analyze(ctx context.Context, text string, claims model.ExtractedClaims) model.AnalysisFindings {
	if a.provider == nil {
		return a.fallback(claims)
	}

	raw, err := a.provider.Complete(ctx, BuildPrompt(text, claims, a.maxChars))
	if err != nil {
		return a.fallback(claims)
	}

	resp, err := parseResponse(raw)
	if err != nil {
		return a.fallback(claims)
	}

	findings := model.EmptyFindings()
	findings.SourceUsed = model.SourceExternalModel
	findings.Inconsistencies = append(findings.Inconsistencies, resp.Inconsistencies...)
	findings.FraudIndicators = append(findings.FraudIndicators, resp.FraudIndicators...)
	findings.Warnings = append(findings.Warnings, resp.Warnings...)
	findings.TimelineIssues = append(findings.TimelineIssues, resp.TimelineIssues...)
	findings.Recommendations = append(findings.Recommendations, resp.Recommendations...)

	if resp.CredibilityScore != nil {
		findings.CredibilityScore = clampInt(*resp.CredibilityScore, 0, 100)
	} else {
		findings.CredibilityScore = computeCredibility(findings)
	}
	findings.ConsistencyScore = computeConsistency(findings)

	return findings
}

// fallback is the deterministic local analysis: timeline checks plus
// presence/absence warnings and the fixed credibility baseline.
func (a *Analyzer) fallback(claims model.ExtractedClaims) model.AnalysisFindings {
	findings := model.EmptyFindings()
	findings.SourceUsed = model.SourceFallbackHeuristic

	if len(claims.Institutions) == 0 {
		findings.Warnings = append(findings.Warnings, "no institutions found in document")
	}
	if len(claims.Employers) == 0 {
		findings.Warnings = append(findings.Warnings, "no employers found in document")
	}

	findings.TimelineIssues = append(findings.TimelineIssues, a.timeline.Check(claims)...)
	findings.CredibilityScore = fallbackCredibility
	findings.ConsistencyScore = computeConsistency(findings)
	findings.Recommendations = append(findings.Recommendations, "manual verification recommended")

	return findings
}

// parseResponse is a two-stage parse: strict JSON first, then a best-effort
// recovery of a JSON fragment from surrounding prose.
func parseResponse(raw string) (*modelResponse, error) {
	var resp modelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err == nil {
		return &resp, nil
	}

	fragment := jsonFragmentPattern.FindString(raw)
	if fragment == "" {
		return nil, errNoJSON
	}
	if err := json.Unmarshal([]byte(fragment), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// computeCredibility derives a credibility score when the provider supplied
// none: 100 minus weighted finding counts, floored at 0.
func computeCredibility(f model.AnalysisFindings) int {
	score := 100 -
		15*len(f.FraudIndicators) -
		10*len(f.Inconsistencies) -
		5*len(f.TimelineIssues) -
		2*len(f.Warnings)
	return clampInt(score, 0, 100)
}

// computeConsistency derives the 0-10 consistency sub-score from finding
// counts.
func computeConsistency(f model.AnalysisFindings) float64 {
	score := 10.0 -
		2.0*float64(len(f.Inconsistencies)) -
		3.0*float64(len(f.FraudIndicators)) -
		1.0*float64(len(f.TimelineIssues)) -
		0.5*float64(len(f.Warnings))

	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
