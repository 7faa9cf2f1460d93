package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/credvet/credvet/internal/model"
)

// Provider defines the external reasoning capability the analyzer delegates
// to. Implementations send a prompt and return the model's free-form text,
// which is expected (but not guaranteed) to parse as JSON.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends the analysis prompt and returns the raw response text
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider creates a provider from configuration. An empty provider name
// disables the external path; absence of credentials is an expected,
// non-fatal condition.
func NewProvider(cfg model.AnalyzerConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown analyzer provider: %s (supported: openai)", cfg.Provider)
	}
}

// BuildPrompt constructs the analysis prompt. Document text is truncated to
// maxChars; the structured entity section is appended afterwards so
// truncation never drops it.
func BuildPrompt(text string, claims model.ExtractedClaims, maxChars int) string {
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars] + "..."
	}

	return fmt.Sprintf(`Analyze the following resume for fraud indicators and inconsistencies.

RESUME TEXT:
%s

EXTRACTED ENTITIES:
- Institutions: %s
- Degrees: %s
- Employers: %s
- Education intervals: %s
- Employment intervals: %s

Provide a JSON response with the following structure:
{
  "inconsistencies": ["list of inconsistencies found"],
  "fraudIndicators": ["list of fraud indicators"],
  "warnings": ["list of warnings"],
  "timelineIssues": ["timeline problems"],
  "credibilityScore": 0-100,
  "recommendations": ["verification recommendations"]
}
`, text,
		joinOrNone(claims.Institutions),
		joinOrNone(claims.Degrees),
		joinOrNone(claims.Employers),
		formatEducation(claims.EducationIntervals),
		formatEmployment(claims.EmploymentIntervals))
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

func formatEducation(intervals []model.EducationInterval) string {
	if len(intervals) == 0 {
		return "None"
	}
	parts := make([]string, len(intervals))
	for i, iv := range intervals {
		end := iv.End
		if end == "" {
			end = "ongoing"
		}
		parts[i] = fmt.Sprintf("%s (%s to %s)", iv.Institution, iv.Start, end)
	}
	return strings.Join(parts, "; ")
}

func formatEmployment(intervals []model.EmploymentInterval) string {
	if len(intervals) == 0 {
		return "None"
	}
	parts := make([]string, len(intervals))
	for i, iv := range intervals {
		end := iv.End
		if end == "" {
			end = "ongoing"
		}
		parts[i] = fmt.Sprintf("%s (%s to %s)", iv.Employer, iv.Start, end)
	}
	return strings.Join(parts, "; ")
}
