package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/credvet/credvet/internal/model"
)

// Verifier runs the verification pipeline for one document source. The
// pipeline implements it; tests substitute stubs.
type Verifier interface {
	VerifyFile(ctx context.Context, path string) (*model.VerificationRecord, error)
	VerifyURL(ctx context.Context, url string) (*model.VerificationRecord, error)
}

// VerifyJob verifies a single candidate document.
type VerifyJob struct {
	Source   string
	Verifier Verifier
}

// Execute runs the verification and wraps the outcome.
func (j *VerifyJob) Execute(ctx context.Context) Result {
	var record *model.VerificationRecord
	var err error
	if isURL(j.Source) {
		record, err = j.Verifier.VerifyURL(ctx, j.Source)
	} else {
		record, err = j.Verifier.VerifyFile(ctx, j.Source)
	}
	return &VerifyOutcome{
		Source: j.Source,
		Record: record,
		Error:  err,
	}
}

// VerifyOutcome pairs a document source with its verification record. Error
// is set only when the pipeline could not produce a record at all; a failed
// verification still yields a record with status failed.
type VerifyOutcome struct {
	Source string
	Record *model.VerificationRecord
	Error  error
}

// Err implements Result.
func (o *VerifyOutcome) Err() error {
	return o.Error
}

// BatchProcessor verifies many candidate documents concurrently.
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a batch processor running at most concurrency
// verifications in parallel.
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// Process verifies every source (file path or URL) and returns one outcome
// per source, in completion order.
func (b *BatchProcessor) Process(ctx context.Context, sources []string) []*VerifyOutcome {
	if len(sources) == 0 {
		return []*VerifyOutcome{}
	}

	pool := NewPoolContext(ctx, b.concurrency)
	pool.Start()

	// Submit from a separate goroutine so Wait can drain results while the
	// queue is still filling; a manifest longer than the buffers would
	// otherwise stall the workers.
	go func() {
		for _, source := range sources {
			pool.Submit(&VerifyJob{
				Source:   source,
				Verifier: b.verifier,
			})
		}
		pool.Close()
	}()

	results := pool.Wait()

	outcomes := make([]*VerifyOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*VerifyOutcome)
	}
	return outcomes
}

// ProcessManifest reads document sources from a manifest file and verifies
// them concurrently.
func (b *BatchProcessor) ProcessManifest(ctx context.Context, path string) ([]*VerifyOutcome, error) {
	sources, err := ReadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return b.Process(ctx, sources), nil
}

// ReadManifest reads one document source per line, skipping blanks and
// #-comments and dropping duplicates.
func ReadManifest(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	return sources, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
