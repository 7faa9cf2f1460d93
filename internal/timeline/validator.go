// Package timeline checks extracted claim intervals for internal consistency.
// It is purely computational: no I/O, no clock beyond the injected year.
package timeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/credvet/credvet/internal/model"
)

// nowYear is injectable for deterministic tests.
var nowYear = func() int { return time.Now().Year() }

// Validator flags inconsistent or implausible claim intervals.
type Validator struct {
	minYear    int
	slackYears int
}

// NewValidator creates a validator. minYear bounds implausibly old intervals;
// slackYears is the tolerated overlap between employment start and education
// end (part-time work during studies).
func NewValidator(cfg model.TimelineConfig) *Validator {
	return &Validator{
		minYear:    cfg.MinYear,
		slackYears: cfg.SlackYears,
	}
}

// Check inspects the claim intervals and returns human-readable issues. Tokens
// that do not parse as years are skipped silently; empty inputs produce no
// issues.
func (v *Validator) Check(claims model.ExtractedClaims) []string {
	issues := []string{}
	maxYear := nowYear() + 1

	// Per-interval and consecutive-overlap checks within each category.
	var prevEduEnd int
	for i, edu := range claims.EducationIntervals {
		start, startOK := parseYear(edu.Start)
		end, endOK := parseYear(edu.End)

		if startOK && endOK && start >= end {
			issues = append(issues, fmt.Sprintf("invalid education dates: %s to %s", edu.Start, edu.End))
		}
		if endOK && end > maxYear {
			issues = append(issues, fmt.Sprintf("future-dated education: ends %s", edu.End))
		}
		if startOK && start < v.minYear {
			issues = append(issues, fmt.Sprintf("implausibly old education: starts %s", edu.Start))
		}
		if i > 0 && startOK && prevEduEnd != 0 && start < prevEduEnd {
			issues = append(issues, fmt.Sprintf("overlapping education: %s and %s",
				claims.EducationIntervals[i-1].Institution, edu.Institution))
		}
		if endOK {
			prevEduEnd = end
		}
	}

	var prevEmpEnd int
	for i, emp := range claims.EmploymentIntervals {
		start, startOK := parseYear(emp.Start)
		end, endOK := parseYear(emp.End)

		if startOK && endOK && start >= end {
			issues = append(issues, fmt.Sprintf("invalid employment dates: %s to %s", emp.Start, emp.End))
		}
		if endOK && end > maxYear {
			issues = append(issues, fmt.Sprintf("future-dated employment: ends %s", emp.End))
		}
		if startOK && start < v.minYear {
			issues = append(issues, fmt.Sprintf("implausibly old employment: starts %s", emp.Start))
		}
		if i > 0 && startOK && prevEmpEnd != 0 && start < prevEmpEnd {
			issues = append(issues, fmt.Sprintf("overlapping employment: %s and %s",
				claims.EmploymentIntervals[i-1].Employer, emp.Employer))
		}
		if endOK {
			prevEmpEnd = end
		}
	}

	// Cross-category: work claimed well before study plausibly finished.
	for _, edu := range claims.EducationIntervals {
		eduEnd, ok := parseYear(edu.End)
		if !ok {
			continue
		}
		for _, emp := range claims.EmploymentIntervals {
			empStart, ok := parseYear(emp.Start)
			if !ok {
				continue
			}
			if empStart < eduEnd-v.slackYears {
				issues = append(issues, fmt.Sprintf("employment starts before education completed: %s", emp.Employer))
			}
		}
	}

	return issues
}

// parseYear interprets a token as an ordinal year. Missing or non-numeric
// tokens report ok=false and are never an error.
func parseYear(token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	y, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return y, true
}
