package score

import (
	"math"

	"github.com/credvet/credvet/internal/model"
)

// Category ceilings. The composite score is the sum of five bounded bands, so
// a full house is exactly 100.
const (
	maxDegree       = 30
	maxExperience   = 25
	maxIdentity     = 20
	maxAuthenticity = 15
	maxConsistency  = 10
)

// Aggregator folds analysis findings, fraud reports and registry proofs into
// a bounded score breakdown. The baselines and penalty are prototype policy
// carried as configuration, not constants.
type Aggregator struct {
	fraudPenalty         int
	experienceBaseline   int
	identityBaseline     int
	authenticityBaseline int
	threshold            int
}

// NewAggregator creates an aggregator from score configuration.
func NewAggregator(cfg model.ScoreConfig) *Aggregator {
	return &Aggregator{
		fraudPenalty:         cfg.FraudPenalty,
		experienceBaseline:   cfg.ExperienceBaseline,
		identityBaseline:     cfg.IdentityBaseline,
		authenticityBaseline: cfg.AuthenticityBaseline,
		threshold:            cfg.Threshold,
	}
}

// Aggregate computes the score breakdown. Degree starts at zero and earns 20
// for a verified degree plus 10 for an accredited institution. Experience and
// identity use placeholder baselines. Each fraud indicator costs the penalty
// off both degree and experience, floored at zero; every band is clamped to
// its ceiling.
func (a *Aggregator) Aggregate(findings model.AnalysisFindings, fraud model.FraudReport, proofs model.RegistryProofs) model.ScoreBreakdown {
	degree := 0
	if proofs.Degree != nil && proofs.Degree.Verified {
		degree += 20
	}
	if proofs.Institution != nil && proofs.Institution.Accredited {
		degree += 10
	}

	experience := a.experienceBaseline
	identity := a.identityBaseline
	authenticity := a.authenticityBaseline

	penalty := a.fraudPenalty * len(fraud.FraudIndicators)
	degree -= penalty
	experience -= penalty

	consistency := int(math.Round(findings.ConsistencyScore))

	return model.ScoreBreakdown{
		DegreeVerification:     clamp(degree, maxDegree),
		ExperienceVerification: clamp(experience, maxExperience),
		IdentityVerification:   clamp(identity, maxIdentity),
		DocumentAuthenticity:   clamp(authenticity, maxAuthenticity),
		ConsistencyScore:       clamp(consistency, maxConsistency),
	}
}

// Threshold returns the verified/failed cut-off.
func (a *Aggregator) Threshold() int {
	return a.threshold
}

// MergeFlags builds the record's flags projection from analyzer and fraud
// outputs. Fraud indicators come from the fraud report, which already folded
// in the analyzer's contributions; warnings union both sources, deduplicated
// with fraud-report entries first.
func MergeFlags(findings model.AnalysisFindings, fraud model.FraudReport) model.Flags {
	return model.Flags{
		Inconsistencies: emptyIfNil(findings.Inconsistencies),
		FraudIndicators: emptyIfNil(fraud.FraudIndicators),
		Warnings:        unionWarnings(fraud.Warnings, findings.Warnings),
	}
}

func unionWarnings(fraud, analyzer []string) []string {
	merged := []string{}
	seen := make(map[string]bool)
	for _, w := range fraud {
		if !seen[w] {
			seen[w] = true
			merged = append(merged, w)
		}
	}
	for _, w := range analyzer {
		if !seen[w] {
			seen[w] = true
			merged = append(merged, w)
		}
	}
	return merged
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
