package extract

import (
	"regexp"
	"strings"

	"github.com/credvet/credvet/internal/model"
)

// DefaultSkillKeywords is the built-in skill vocabulary. Matching is
// case-insensitive on word boundaries.
var DefaultSkillKeywords = []string{
	"JavaScript", "TypeScript", "Python", "Java", "Go", "Rust", "C++",
	"React", "Node.js", "Kubernetes", "Docker", "PostgreSQL",
	"Blockchain", "Solidity", "Web3", "AI", "Machine Learning",
}

var (
	institutionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`University of [A-Z][A-Za-z]+`),
		regexp.MustCompile(`[A-Z][A-Za-z]+ University`),
		regexp.MustCompile(`[A-Z][A-Za-z]+ College`),
		regexp.MustCompile(`[A-Z][A-Za-z]+ Institute(?: of [A-Z][A-Za-z]+)?`),
	}

	degreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Bachelor of (?:Science|Arts|Engineering)(?: in [A-Z][A-Za-z]+)?`),
		regexp.MustCompile(`(?i)Master of (?:Science|Arts|Business Administration|Engineering)(?: in [A-Z][A-Za-z]+)?`),
		regexp.MustCompile(`(?i)\bPh\.?D\.?\b`),
		regexp.MustCompile(`(?i)Doctor of Philosophy`),
	}

	// Employer names are keyed off corporate suffixes or an "at" preposition;
	// the first capture group is the name.
	employerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bat ([A-Z][A-Za-z&.\- ]+?(?:Inc|LLC|Corp|Ltd|Company))\b`),
		regexp.MustCompile(`\b([A-Z][A-Za-z&.\- ]+?(?:Technologies|Systems|Solutions|Labs|Group))\b`),
	}

	// yearRangePattern matches "2015 - 2019", "2015 to present" and similar.
	// The end token is optional for ongoing intervals.
	yearRangePattern = regexp.MustCompile(`\b(\d{4})\s*(?:[-–—]|to)\s*(\d{4}|[Pp]resent|[Cc]urrent|[Oo]ngoing)?`)
)

// EntityExtractor turns document text into a structured claim set using a
// fixed library of patterns. The skill vocabulary is injected at construction;
// nil selects the default.
type EntityExtractor struct {
	skills []string
}

// NewEntityExtractor creates an extractor with the given skill vocabulary.
func NewEntityExtractor(skills []string) *EntityExtractor {
	if skills == nil {
		skills = DefaultSkillKeywords
	}
	return &EntityExtractor{skills: skills}
}

// Extract pattern-matches the text into a claim set. Empty text yields empty
// claim sets, never an error. Discovery order is not meaningful; all string
// sets are deduplicated case-insensitively, preserving the first spelling.
func (e *EntityExtractor) Extract(text string) model.ExtractedClaims {
	claims := model.EmptyClaims()

	for _, p := range institutionPatterns {
		claims.Institutions = append(claims.Institutions, p.FindAllString(text, -1)...)
	}
	for _, p := range degreePatterns {
		claims.Degrees = append(claims.Degrees, p.FindAllString(text, -1)...)
	}
	for _, p := range employerPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			claims.Employers = append(claims.Employers, strings.TrimSpace(m[1]))
		}
	}

	for _, skill := range e.skills {
		p := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(skill) + `\b`)
		if p.MatchString(text) {
			claims.Skills = append(claims.Skills, skill)
		}
	}

	claims.Institutions = dedupeStrings(claims.Institutions)
	claims.Degrees = dedupeStrings(claims.Degrees)
	claims.Employers = dedupeStrings(claims.Employers)
	claims.Skills = dedupeStrings(claims.Skills)

	claims.EducationIntervals, claims.EmploymentIntervals = extractIntervals(text)

	return claims
}

// extractIntervals scans line by line: a year range on the same line as an
// institution mention becomes an education interval, next to an employer
// mention an employment interval. Lines without a parseable range yield
// nothing.
func extractIntervals(text string) ([]model.EducationInterval, []model.EmploymentInterval) {
	education := []model.EducationInterval{}
	employment := []model.EmploymentInterval{}

	for _, line := range strings.Split(text, "\n") {
		m := yearRangePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start := m[1]
		end := m[2]
		if isOngoingToken(end) {
			end = ""
		}

		if inst := firstMatch(institutionPatterns, line); inst != "" {
			education = append(education, model.EducationInterval{
				Start:       start,
				End:         end,
				Institution: inst,
			})
			continue
		}

		if emp := firstSubmatch(employerPatterns, line); emp != "" {
			employment = append(employment, model.EmploymentInterval{
				Start:    start,
				End:      end,
				Employer: emp,
			})
		}
	}

	return education, employment
}

func isOngoingToken(s string) bool {
	switch strings.ToLower(s) {
	case "present", "current", "ongoing":
		return true
	}
	return false
}

func firstMatch(patterns []*regexp.Regexp, s string) string {
	for _, p := range patterns {
		if m := p.FindString(s); m != "" {
			return m
		}
	}
	return ""
}

func firstSubmatch(patterns []*regexp.Regexp, s string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// dedupeStrings removes duplicates case-insensitively, keeping the first
// spelling seen.
func dedupeStrings(values []string) []string {
	seen := make(map[string]bool)
	unique := []string{}

	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, v)
	}

	return unique
}
