package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/credvet/credvet/internal/analyze"
	"github.com/credvet/credvet/internal/evidence"
	"github.com/credvet/credvet/internal/extract"
	"github.com/credvet/credvet/internal/fraud"
	"github.com/credvet/credvet/internal/model"
	"github.com/credvet/credvet/internal/score"
	"github.com/credvet/credvet/internal/timeline"
)

// ClaimVerifier is the external claim registry capability. Implementations
// return degraded results instead of errors (see registry.Client).
type ClaimVerifier interface {
	VerifyDegree(ctx context.Context, degree, institution, year string) *model.ClaimVerificationResult
	VerifyAccreditation(ctx context.Context, institution string) *model.ClaimVerificationResult
}

// TimestampSource is the trusted timestamp capability.
type TimestampSource interface {
	GetTimestamp(ctx context.Context) *model.TimestampProof
}

// Pipeline orchestrates a verification run: parse, extract, fan out the
// concurrent checks, join, aggregate, bind evidence. One run owns one record;
// the store enforces that late writers cannot clobber superseded records.
type Pipeline struct {
	cfg        *model.Config
	store      RecordStore
	extractor  *extract.EntityExtractor
	analyzer   *analyze.Analyzer
	detector   *fraud.Detector
	verifier   ClaimVerifier
	timestamps TimestampSource
	aggregator *score.Aggregator
	fetcher    *Fetcher
}

// New assembles a pipeline from configuration and its two network
// collaborators. A nil verifier leaves registry proofs unset; a nil
// timestamps source leaves the record without a timestamp proof.
func New(cfg *model.Config, store RecordStore, verifier ClaimVerifier, timestamps TimestampSource) (*Pipeline, error) {
	validator := timeline.NewValidator(cfg.Timeline)

	detector, err := fraud.NewDetector(cfg.Fraud, validator)
	if err != nil {
		return nil, fmt.Errorf("build fraud detector: %w", err)
	}

	provider, err := analyze.NewProvider(cfg.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("build analyzer provider: %w", err)
	}

	return &Pipeline{
		cfg:        cfg,
		store:      store,
		extractor:  extract.NewEntityExtractor(nil),
		analyzer:   analyze.NewAnalyzer(provider, validator, cfg.Analyzer),
		detector:   detector,
		verifier:   verifier,
		timestamps: timestamps,
		aggregator: score.NewAggregator(cfg.Score),
		fetcher:    nil,
	}, nil
}

// WithFetcher enables URL submission.
func (p *Pipeline) WithFetcher(fetcher *Fetcher) *Pipeline {
	p.fetcher = fetcher
	return p
}

// Submit parses the document, creates a pending record and starts the
// verification run asynchronously. Input errors (unreadable document,
// unsupported media type) surface here, before any processing starts; the
// returned snapshot has status pending.
func (p *Pipeline) Submit(ctx context.Context, raw []byte, mediaType, candidateID string) (*model.VerificationRecord, error) {
	record, doc, err := p.admit(raw, mediaType, candidateID)
	if err != nil {
		return nil, err
	}

	go p.run(context.WithoutCancel(ctx), record.ID, doc)

	return record, nil
}

// Verify runs the whole pipeline synchronously and returns the terminal
// record. This is the path the CLI and batch processor use.
func (p *Pipeline) Verify(ctx context.Context, raw []byte, mediaType, candidateID string) (*model.VerificationRecord, error) {
	record, doc, err := p.admit(raw, mediaType, candidateID)
	if err != nil {
		return nil, err
	}

	p.run(ctx, record.ID, doc)

	return p.store.Get(record.ID)
}

// VerifyFile verifies a document read from the local filesystem. Media type
// is inferred from the file extension: .html/.htm documents are parsed as
// HTML, everything else as plain text.
func (p *Pipeline) VerifyFile(ctx context.Context, path string) (*model.VerificationRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	mediaType := "text/plain"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		mediaType = "text/html"
	}

	candidateID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return p.Verify(ctx, raw, mediaType, candidateID)
}

// VerifyURL downloads a document and verifies it.
func (p *Pipeline) VerifyURL(ctx context.Context, rawURL string) (*model.VerificationRecord, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("URL submission not enabled")
	}

	raw, mediaType, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}

	return p.Verify(ctx, raw, mediaType, rawURL)
}

// Get returns the current snapshot of a record.
func (p *Pipeline) Get(id string) (*model.VerificationRecord, error) {
	return p.store.Get(id)
}

// Threshold exposes the verified/failed cut-off for presentation.
func (p *Pipeline) Threshold() int {
	return p.aggregator.Threshold()
}

// admit validates the input and creates the pending record.
func (p *Pipeline) admit(raw []byte, mediaType, candidateID string) (*model.VerificationRecord, *model.ParsedDocument, error) {
	doc, err := extract.ParseDocument(raw, mediaType)
	if err != nil {
		return nil, nil, err
	}

	record := &model.VerificationRecord{
		ID:             newRecordID(),
		CandidateID:    candidateID,
		DocumentDigest: doc.Digest,
		UploadedAt:     time.Now(),
		Status:         model.StatusPending,
		Entities:       model.EmptyClaims(),
	}

	if err := p.store.Create(record); err != nil {
		return nil, nil, fmt.Errorf("create record: %w", err)
	}

	return record, doc, nil
}

// run drives one record from processing to a terminal state. Degraded
// sub-results (analyzer fallback, unverifiable claims, wall-clock timestamps)
// complete the record normally; only unexpected orchestration errors fail it.
func (p *Pipeline) run(ctx context.Context, id string, doc *model.ParsedDocument) {
	defer func() {
		if r := recover(); r != nil {
			_ = p.store.Fail(id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := p.store.MarkProcessing(id); err != nil {
		// Deleted or superseded before we started; abandon the run.
		return
	}

	p.progress("extracting entities for %s", id)
	claims := p.extractor.Extract(doc.Text)

	var findings model.AnalysisFindings
	analyzerDone := make(chan struct{})
	go func() {
		defer close(analyzerDone)
		findings = p.analyzer.Analyze(ctx, doc.Text, claims)
	}()

	// Fraud heuristics consume analyzer output when it arrives in time, but
	// proceed without it rather than block the run. When the wait expires
	// the analyzer's indicators are folded in at the join instead.
	type fraudResult struct {
		report      model.FraudReport
		sawAnalyzer bool
	}
	fraudCh := make(chan fraudResult, 1)
	go func() {
		var analyzed *model.AnalysisFindings
		select {
		case <-analyzerDone:
			snapshot := findings
			analyzed = &snapshot
		case <-time.After(p.analyzerWait()):
		}
		fraudCh <- fraudResult{
			report:      p.detector.Detect(doc.Text, claims, analyzed),
			sawAnalyzer: analyzed != nil,
		}
	}()

	proofsCh := make(chan model.RegistryProofs, 1)
	go func() {
		proofsCh <- p.verifyClaims(ctx, claims)
	}()

	timestampCh := make(chan *model.TimestampProof, 1)
	go func() {
		if p.timestamps == nil {
			timestampCh <- nil
			return
		}
		timestampCh <- p.timestamps.GetTimestamp(ctx)
	}()

	<-analyzerDone
	fr := <-fraudCh
	proofs := <-proofsCh
	timestamp := <-timestampCh

	fraudReport := fr.report
	if !fr.sawAnalyzer {
		fraudReport = fraud.MergeIndicators(fraudReport, findings.FraudIndicators)
	}

	if findings.SourceUsed == model.SourceFallbackHeuristic {
		p.progress("analyzer degraded to fallback heuristics for %s", id)
	}

	breakdown := p.aggregator.Aggregate(findings, fraudReport, proofs)

	evidenceDigest, err := bindEvidence(doc.Digest, findings, fraudReport, proofs)
	if err != nil {
		_ = p.store.Fail(id, fmt.Sprintf("bind evidence: %v", err))
		return
	}

	now := time.Now()
	record := &model.VerificationRecord{
		ID:             id,
		DocumentDigest: doc.Digest,
		Entities:       claims,
		Score:          breakdown.Total(),
		Breakdown:      breakdown,
		Flags:          score.MergeFlags(findings, fraudReport),
		EvidenceDigest: evidenceDigest,
		Proofs:         proofs,
		Timestamp:      timestamp,
		CompletedAt:    &now,
	}

	// Carry submission fields forward from the live record.
	if current, err := p.store.Get(id); err == nil {
		record.CandidateID = current.CandidateID
		record.UploadedAt = current.UploadedAt
	}

	if err := p.store.Complete(record); err != nil {
		// Superseded mid-flight; the result is abandoned, not forced.
		p.progress("abandoning superseded run for %s: %v", id, err)
	}
}

// verifyClaims runs the degree and accreditation registry checks for the
// primary claim pair. With no verifier or no claims, proofs stay unset and
// the degree band earns nothing.
func (p *Pipeline) verifyClaims(ctx context.Context, claims model.ExtractedClaims) model.RegistryProofs {
	var proofs model.RegistryProofs
	if p.verifier == nil {
		return proofs
	}

	institution := firstOf(claims.Institutions)
	degree := firstOf(claims.Degrees)

	if degree != "" && institution != "" {
		proofs.Degree = p.verifier.VerifyDegree(ctx, degree, institution, graduationYear(claims, institution))
	}
	if institution != "" {
		proofs.Institution = p.verifier.VerifyAccreditation(ctx, institution)
	}

	return proofs
}

func (p *Pipeline) analyzerWait() time.Duration {
	if p.cfg.Concurrency.AnalyzerWait > 0 {
		return p.cfg.Concurrency.AnalyzerWait
	}
	return 31 * time.Second
}

func (p *Pipeline) progress(format string, args ...any) {
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

func bindEvidence(documentDigest string, findings model.AnalysisFindings, fraudReport model.FraudReport, proofs model.RegistryProofs) (string, error) {
	return evidence.Digest(evidence.Bundle{
		DocumentDigest: documentDigest,
		Findings:       findings,
		Fraud:          fraudReport,
		Proofs:         proofs,
	})
}

// graduationYear picks the end year of the education interval naming the
// institution, falling back to the first interval with an end year.
func graduationYear(claims model.ExtractedClaims, institution string) string {
	for _, interval := range claims.EducationIntervals {
		if interval.End != "" && strings.EqualFold(interval.Institution, institution) {
			return interval.End
		}
	}
	for _, interval := range claims.EducationIntervals {
		if interval.End != "" {
			return interval.End
		}
	}
	return ""
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// newRecordID returns "ver_" plus 32 hex characters derived from a UUID.
func newRecordID() string {
	return "ver_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
