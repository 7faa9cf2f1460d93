package analyze

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/credvet/credvet/internal/model"
	"github.com/credvet/credvet/internal/timeline"
)

// stubProvider returns a canned response or error.
type stubProvider struct {
	response string
	err      error
	prompt   string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestAnalyzer(p Provider) *Analyzer {
	cfg := model.DefaultConfig()
	tv := timeline.NewValidator(cfg.Timeline)
	return NewAnalyzer(p, tv, cfg.Analyzer)
}

func TestAnalyze_NoProviderFallsBack(t *testing.T) {
	a := newTestAnalyzer(nil)

	findings := a.Analyze(context.Background(), "", model.EmptyClaims())

	if findings.SourceUsed != model.SourceFallbackHeuristic {
		t.Errorf("Expected fallback source, got %s", findings.SourceUsed)
	}
	if findings.CredibilityScore != 70 {
		t.Errorf("Expected baseline credibility 70, got %d", findings.CredibilityScore)
	}
}

func TestAnalyze_FallbackWarnsOnMissingEntities(t *testing.T) {
	a := newTestAnalyzer(nil)

	findings := a.Analyze(context.Background(), "no entities here", model.EmptyClaims())

	wantWarnings := map[string]bool{
		"no institutions found in document": false,
		"no employers found in document":    false,
	}
	for _, w := range findings.Warnings {
		if _, ok := wantWarnings[w]; ok {
			wantWarnings[w] = true
		}
	}
	for w, found := range wantWarnings {
		if !found {
			t.Errorf("Expected warning %q, got %v", w, findings.Warnings)
		}
	}
}

func TestAnalyze_FallbackRunsTimelineChecks(t *testing.T) {
	a := newTestAnalyzer(nil)

	claims := model.EmptyClaims()
	claims.Institutions = []string{"Oxford University"}
	claims.Employers = []string{"Acme Corp"}
	claims.EducationIntervals = []model.EducationInterval{
		{Start: "2015", End: "2010", Institution: "Oxford University"},
	}

	findings := a.Analyze(context.Background(), "", claims)

	if len(findings.TimelineIssues) != 1 {
		t.Fatalf("Expected 1 timeline issue, got %v", findings.TimelineIssues)
	}
	// 10 - 1*1 = 9
	if findings.ConsistencyScore != 9 {
		t.Errorf("Expected consistency 9, got %v", findings.ConsistencyScore)
	}
}

func TestAnalyze_ProviderErrorFallsBack(t *testing.T) {
	a := newTestAnalyzer(&stubProvider{err: errors.New("service unavailable")})

	findings := a.Analyze(context.Background(), "text", model.EmptyClaims())

	if findings.SourceUsed != model.SourceFallbackHeuristic {
		t.Errorf("Expected fallback on provider error, got %s", findings.SourceUsed)
	}
}

func TestAnalyze_StrictJSONResponse(t *testing.T) {
	p := &stubProvider{response: `{
		"inconsistencies": ["degree date contradicts employment"],
		"fraudIndicators": ["unaccredited institution"],
		"warnings": [],
		"timelineIssues": [],
		"credibilityScore": 45,
		"recommendations": ["contact registrar"]
	}`}
	a := newTestAnalyzer(p)

	findings := a.Analyze(context.Background(), "text", model.EmptyClaims())

	if findings.SourceUsed != model.SourceExternalModel {
		t.Fatalf("Expected external-model source, got %s", findings.SourceUsed)
	}
	if findings.CredibilityScore != 45 {
		t.Errorf("Expected credibility 45, got %d", findings.CredibilityScore)
	}
	if len(findings.Inconsistencies) != 1 || len(findings.FraudIndicators) != 1 {
		t.Errorf("Expected findings carried through, got %+v", findings)
	}
	// 10 - 2*1 - 3*1 = 5
	if findings.ConsistencyScore != 5 {
		t.Errorf("Expected consistency 5, got %v", findings.ConsistencyScore)
	}
}

func TestAnalyze_JSONRecoveredFromProse(t *testing.T) {
	p := &stubProvider{response: "Here is my analysis:\n```json\n" +
		`{"inconsistencies": [], "fraudIndicators": [], "warnings": ["thin work history"], "timelineIssues": [], "credibilityScore": 80}` +
		"\n```\nLet me know if you need more."}
	a := newTestAnalyzer(p)

	findings := a.Analyze(context.Background(), "text", model.EmptyClaims())

	if findings.SourceUsed != model.SourceExternalModel {
		t.Fatalf("Expected prose-wrapped JSON to be recovered, got %s", findings.SourceUsed)
	}
	if findings.CredibilityScore != 80 {
		t.Errorf("Expected credibility 80, got %d", findings.CredibilityScore)
	}
	if len(findings.Warnings) != 1 {
		t.Errorf("Expected warning carried through, got %v", findings.Warnings)
	}
}

func TestAnalyze_UnparseableResponseFallsBack(t *testing.T) {
	p := &stubProvider{response: "I cannot analyze this document."}
	a := newTestAnalyzer(p)

	findings := a.Analyze(context.Background(), "text", model.EmptyClaims())

	if findings.SourceUsed != model.SourceFallbackHeuristic {
		t.Errorf("Expected fallback for unparseable response, got %s", findings.SourceUsed)
	}
}

func TestAnalyze_CredibilityClamped(t *testing.T) {
	p := &stubProvider{response: `{"credibilityScore": 250}`}
	a := newTestAnalyzer(p)

	findings := a.Analyze(context.Background(), "text", model.EmptyClaims())

	if findings.CredibilityScore != 100 {
		t.Errorf("Expected credibility clamped to 100, got %d", findings.CredibilityScore)
	}
}

func TestAnalyze_CredibilityComputedWhenMissing(t *testing.T) {
	p := &stubProvider{response: `{"fraudIndicators": ["a", "b"], "warnings": ["w"]}`}
	a := newTestAnalyzer(p)

	findings := a.Analyze(context.Background(), "text", model.EmptyClaims())

	// 100 - 15*2 - 2*1 = 68
	if findings.CredibilityScore != 68 {
		t.Errorf("Expected computed credibility 68, got %d", findings.CredibilityScore)
	}
}

func TestAnalyze_ConsistencyFloorsAtZero(t *testing.T) {
	p := &stubProvider{response: `{"fraudIndicators": ["a", "b", "c", "d"], "credibilityScore": 10}`}
	a := newTestAnalyzer(p)

	findings := a.Analyze(context.Background(), "text", model.EmptyClaims())

	if findings.ConsistencyScore != 0 {
		t.Errorf("Expected consistency floored at 0, got %v", findings.ConsistencyScore)
	}
}

func TestBuildPrompt_TruncatesTextNotEntities(t *testing.T) {
	claims := model.EmptyClaims()
	claims.Institutions = []string{"Oxford University"}

	long := strings.Repeat("x", 10000)
	prompt := BuildPrompt(long, claims, 8000)

	if !strings.Contains(prompt, "Oxford University") {
		t.Error("Expected entity section to survive truncation")
	}
	if strings.Contains(prompt, strings.Repeat("x", 8001)) {
		t.Error("Expected document text truncated to the character limit")
	}
}

func TestAnalyze_PromptCarriesEntities(t *testing.T) {
	p := &stubProvider{response: `{}`}
	a := newTestAnalyzer(p)

	claims := model.EmptyClaims()
	claims.Degrees = []string{"Master of Science"}

	a.Analyze(context.Background(), "text", claims)

	if !strings.Contains(p.prompt, "Master of Science") {
		t.Error("Expected extracted entities in the prompt")
	}
}
