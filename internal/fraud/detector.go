// Package fraud runs rule-based scans over document text and extracted claims.
package fraud

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/credvet/credvet/internal/model"
	"github.com/credvet/credvet/internal/timeline"
)

// nowYear is injectable for deterministic tests.
var nowYear = func() int { return time.Now().Year() }

// Detector evaluates fraud heuristics. Rule tables are injected at
// construction; the detector itself is immutable and safe for concurrent use.
type Detector struct {
	blocklist []string
	patterns  []*regexp.Regexp
	minYear   int
	timeline  *timeline.Validator
}

// NewDetector compiles the configured rules. Invalid suspicious-pattern
// expressions are rejected so misconfiguration is caught at startup, not
// mid-scan.
func NewDetector(cfg model.FraudConfig, tv *timeline.Validator) (*Detector, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.SuspiciousPatterns))
	for _, expr := range cfg.SuspiciousPatterns {
		p, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile suspicious pattern %q: %w", expr, err)
		}
		patterns = append(patterns, p)
	}

	return &Detector{
		blocklist: cfg.BlockedInstitutions,
		patterns:  patterns,
		minYear:   cfg.MinGraduationYear,
		timeline:  tv,
	}, nil
}

// Detect runs every heuristic over the text and claims and folds in any fraud
// indicators the analyzer surfaced. findings may be nil when analyzer output
// was not available in time. Deterministic: identical inputs always produce
// an identical report.
func (d *Detector) Detect(text string, claims model.ExtractedClaims, findings *model.AnalysisFindings) model.FraudReport {
	indicators := []string{}
	warnings := []string{}

	// Blocklisted institutions, case-insensitive substring match.
	for _, inst := range claims.Institutions {
		lower := strings.ToLower(inst)
		for _, blocked := range d.blocklist {
			if strings.Contains(lower, strings.ToLower(blocked)) {
				indicators = append(indicators, fmt.Sprintf("suspicious institution: %s", inst))
				break
			}
		}
	}

	// Graduation years outside the plausible window.
	maxYear := nowYear() + 1
	for _, edu := range claims.EducationIntervals {
		year, err := strconv.Atoi(edu.End)
		if err != nil {
			continue
		}
		if year < d.minYear || year > maxYear {
			indicators = append(indicators, fmt.Sprintf("impossible graduation year: %d", year))
		}
	}

	// Suspicious phrasing in the raw text.
	for _, p := range d.patterns {
		if p.MatchString(text) {
			warnings = append(warnings, fmt.Sprintf("suspicious pattern detected: %s", p.String()))
		}
	}

	// Timeline inconsistencies count as fraud indicators.
	indicators = append(indicators, d.timeline.Check(claims)...)

	// Analyzer-surfaced indicators merge in when available.
	if findings != nil {
		indicators = append(indicators, findings.FraudIndicators...)
	}

	indicators = dedupe(indicators)
	warnings = dedupe(warnings)

	return model.FraudReport{
		FraudIndicators: indicators,
		Warnings:        warnings,
		RiskLevel:       riskLevel(indicators, warnings),
	}
}

// MergeIndicators folds late-arriving fraud indicators into a report,
// deduplicating and reclassifying the risk level. Used when the analyzer
// finishes after the detector's bounded wait expired.
func MergeIndicators(report model.FraudReport, indicators []string) model.FraudReport {
	if len(indicators) == 0 {
		return report
	}

	merged := make([]string, 0, len(report.FraudIndicators)+len(indicators))
	merged = append(merged, report.FraudIndicators...)
	merged = append(merged, indicators...)
	merged = dedupe(merged)

	return model.FraudReport{
		FraudIndicators: merged,
		Warnings:        report.Warnings,
		RiskLevel:       riskLevel(merged, report.Warnings),
	}
}

// riskLevel classifies indicator density. Indicators weigh 1, warnings 0.5.
func riskLevel(indicators, warnings []string) model.RiskLevel {
	weighted := float64(len(indicators)) + float64(len(warnings))*0.5

	switch {
	case weighted >= 5:
		return model.RiskHigh
	case weighted >= 2:
		return model.RiskMedium
	case weighted > 0:
		return model.RiskLow
	default:
		return model.RiskNone
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool)
	unique := []string{}

	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}

	return unique
}
