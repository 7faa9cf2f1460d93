package extract

import (
	"strings"
	"testing"
)

const sampleResume = `
Jane Candidate

EDUCATION
Bachelor of Science in Physics, Oxford University, 2010 - 2014
Master of Science, Cambridge University, 2014 to 2016

EXPERIENCE
Software Engineer at Acme Corp, 2016 - 2019
Senior Engineer, Globex Technologies, 2019 - present

SKILLS
Go, Python, Kubernetes, Machine Learning
`

func TestEntityExtractor_Institutions(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	claims := extractor.Extract(sampleResume)

	found := map[string]bool{}
	for _, inst := range claims.Institutions {
		found[inst] = true
	}
	if !found["Oxford University"] {
		t.Errorf("Expected Oxford University, got %v", claims.Institutions)
	}
	if !found["Cambridge University"] {
		t.Errorf("Expected Cambridge University, got %v", claims.Institutions)
	}
}

func TestEntityExtractor_Degrees(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	claims := extractor.Extract(sampleResume)

	if len(claims.Degrees) < 2 {
		t.Fatalf("Expected at least 2 degrees, got %v", claims.Degrees)
	}

	foundBachelor := false
	for _, d := range claims.Degrees {
		if strings.HasPrefix(d, "Bachelor of Science") {
			foundBachelor = true
		}
	}
	if !foundBachelor {
		t.Errorf("Expected a Bachelor of Science degree, got %v", claims.Degrees)
	}
}

func TestEntityExtractor_Employers(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	claims := extractor.Extract(sampleResume)

	found := map[string]bool{}
	for _, e := range claims.Employers {
		found[e] = true
	}
	if !found["Acme Corp"] {
		t.Errorf("Expected Acme Corp, got %v", claims.Employers)
	}
	if !found["Globex Technologies"] {
		t.Errorf("Expected Globex Technologies, got %v", claims.Employers)
	}
}

func TestEntityExtractor_Skills(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	claims := extractor.Extract(sampleResume)

	found := map[string]bool{}
	for _, s := range claims.Skills {
		found[s] = true
	}
	if !found["Python"] || !found["Kubernetes"] || !found["Machine Learning"] {
		t.Errorf("Expected default vocabulary matches, got %v", claims.Skills)
	}
}

func TestEntityExtractor_CustomVocabulary(t *testing.T) {
	extractor := NewEntityExtractor([]string{"Haskell"})

	claims := extractor.Extract("Deep experience with Haskell and Python.")

	if len(claims.Skills) != 1 || claims.Skills[0] != "Haskell" {
		t.Errorf("Expected only the injected vocabulary to match, got %v", claims.Skills)
	}
}

func TestEntityExtractor_EducationIntervals(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	claims := extractor.Extract(sampleResume)

	if len(claims.EducationIntervals) != 2 {
		t.Fatalf("Expected 2 education intervals, got %v", claims.EducationIntervals)
	}

	first := claims.EducationIntervals[0]
	if first.Start != "2010" || first.End != "2014" {
		t.Errorf("Expected 2010-2014, got %s-%s", first.Start, first.End)
	}
	if first.Institution != "Oxford University" {
		t.Errorf("Expected institution on interval, got %q", first.Institution)
	}
}

func TestEntityExtractor_OngoingEmployment(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	claims := extractor.Extract(sampleResume)

	if len(claims.EmploymentIntervals) != 2 {
		t.Fatalf("Expected 2 employment intervals, got %v", claims.EmploymentIntervals)
	}

	last := claims.EmploymentIntervals[1]
	if last.End != "" {
		t.Errorf("Expected ongoing interval to have empty end, got %q", last.End)
	}
	if last.Employer != "Globex Technologies" {
		t.Errorf("Expected employer on interval, got %q", last.Employer)
	}
}

func TestEntityExtractor_Deduplication(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	text := "Oxford University. OXFORD UNIVERSITY. Oxford University again."
	claims := extractor.Extract(text)

	count := 0
	for _, inst := range claims.Institutions {
		if strings.EqualFold(inst, "Oxford University") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected 1 unique institution, got %d (%v)", count, claims.Institutions)
	}
}

func TestEntityExtractor_EmptyText(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	claims := extractor.Extract("")

	if claims.Institutions == nil || claims.Degrees == nil || claims.Employers == nil || claims.Skills == nil {
		t.Error("Expected defined-empty slices, got nil")
	}
	if len(claims.Institutions) != 0 || len(claims.Degrees) != 0 || len(claims.Employers) != 0 ||
		len(claims.Skills) != 0 || len(claims.EducationIntervals) != 0 || len(claims.EmploymentIntervals) != 0 {
		t.Errorf("Expected all claim sets empty, got %+v", claims)
	}
}

func TestEntityExtractor_NoDatesNoIntervals(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	claims := extractor.Extract("Studied at Oxford University without listing any dates.")

	if len(claims.EducationIntervals) != 0 {
		t.Errorf("Expected no intervals without a year range, got %v", claims.EducationIntervals)
	}
	if len(claims.Institutions) != 1 {
		t.Errorf("Expected the institution itself to still be extracted, got %v", claims.Institutions)
	}
}
