package model

// AnalysisSource identifies which path produced the analysis findings.
type AnalysisSource string

const (
	SourceExternalModel     AnalysisSource = "external-model"
	SourceFallbackHeuristic AnalysisSource = "fallback-heuristic"
)

// AnalysisFindings is the Consistency Analyzer's output.
type AnalysisFindings struct {
	Inconsistencies  []string       `json:"inconsistencies"`
	FraudIndicators  []string       `json:"fraud_indicators"`
	Warnings         []string       `json:"warnings"`
	TimelineIssues   []string       `json:"timeline_issues"`
	CredibilityScore int            `json:"credibility_score"` // 0-100
	ConsistencyScore float64        `json:"consistency_score"` // 0-10
	Recommendations  []string       `json:"recommendations,omitempty"`
	SourceUsed       AnalysisSource `json:"source_used"`
}

// EmptyFindings returns findings with all sequences defined and empty.
func EmptyFindings() AnalysisFindings {
	return AnalysisFindings{
		Inconsistencies: []string{},
		FraudIndicators: []string{},
		Warnings:        []string{},
		TimelineIssues:  []string{},
		Recommendations: []string{},
	}
}

// RiskLevel is a coarse classification of fraud-indicator density.
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// FraudReport is the Fraud Heuristics Engine's output. Indicator and warning
// lists are deduplicated.
type FraudReport struct {
	FraudIndicators []string  `json:"fraud_indicators"`
	Warnings        []string  `json:"warnings"`
	RiskLevel       RiskLevel `json:"risk_level"`
}

// Flags is the merged projection of analyzer and fraud outputs carried on the
// verification record.
type Flags struct {
	Inconsistencies []string `json:"inconsistencies"`
	FraudIndicators []string `json:"fraud_indicators"`
	Warnings        []string `json:"warnings"`
}
