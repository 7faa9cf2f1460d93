package model

// ExtractedClaims holds the structured claims pulled out of a candidate
// document. String slices are deduplicated and case-preserving; discovery
// order carries no meaning.
type ExtractedClaims struct {
	Institutions []string `json:"institutions"` // Universities, colleges, institutes
	Degrees      []string `json:"degrees"`      // Degree names as written
	Employers    []string `json:"employers"`    // Company names
	Skills       []string `json:"skills"`       // Matched skill keywords

	EducationIntervals  []EducationInterval  `json:"education_intervals"`
	EmploymentIntervals []EmploymentInterval `json:"employment_intervals"`
}

// EducationInterval is a claimed study period. Start and End are opaque
// year-or-date tokens as they appeared in the document; End may be empty for
// ongoing studies.
type EducationInterval struct {
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	Institution string `json:"institution,omitempty"`
}

// EmploymentInterval is a claimed work period.
type EmploymentInterval struct {
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	Employer string `json:"employer,omitempty"`
}

// EmptyClaims returns a claim set with every field defined and empty, so
// downstream components never need nil checks or type probing.
func EmptyClaims() ExtractedClaims {
	return ExtractedClaims{
		Institutions:        []string{},
		Degrees:             []string{},
		Employers:           []string{},
		Skills:              []string{},
		EducationIntervals:  []EducationInterval{},
		EmploymentIntervals: []EmploymentInterval{},
	}
}

// ParsedDocument is the output of document parsing: plain text, the content
// digest of the raw bytes, and basic size metrics.
type ParsedDocument struct {
	Text           string `json:"-"`
	Digest         string `json:"digest"` // SHA-256 of raw bytes, hex
	WordCount      int    `json:"word_count"`
	CharacterCount int    `json:"character_count"`
}
