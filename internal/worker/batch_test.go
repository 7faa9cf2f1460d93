package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/credvet/credvet/internal/model"
)

type stubVerifier struct {
	fail bool
}

func (v *stubVerifier) recordFor(source string) (*model.VerificationRecord, error) {
	time.Sleep(5 * time.Millisecond)
	if v.fail {
		return nil, errors.New("verify error")
	}
	return &model.VerificationRecord{
		ID:     "ver_test",
		Status: model.StatusCompleted,
	}, nil
}

func (v *stubVerifier) VerifyFile(ctx context.Context, path string) (*model.VerificationRecord, error) {
	return v.recordFor(path)
}

func (v *stubVerifier) VerifyURL(ctx context.Context, url string) (*model.VerificationRecord, error) {
	return v.recordFor(url)
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessorProcess(t *testing.T) {
	processor := NewBatchProcessor(&stubVerifier{}, 2)

	sources := []string{"a.txt", "b.txt", "https://example.com/resume.html"}
	outcomes := processor.Process(context.Background(), sources)

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Error != nil {
			t.Errorf("unexpected error for %s: %v", o.Source, o.Error)
		}
		if o.Record == nil {
			t.Errorf("missing record for %s", o.Source)
		}
	}
}

func TestBatchProcessorLargeManifestCompletes(t *testing.T) {
	// Many more sources than the pool buffers hold; batch must overlap
	// submission with result draining or the workers stall.
	processor := NewBatchProcessor(&stubVerifier{}, 2)

	sources := make([]string, 50)
	for i := range sources {
		sources[i] = fmt.Sprintf("resumes/candidate-%02d.txt", i)
	}

	done := make(chan []*VerifyOutcome, 1)
	go func() { done <- processor.Process(context.Background(), sources) }()

	select {
	case outcomes := <-done:
		if len(outcomes) != len(sources) {
			t.Errorf("got %d outcomes, want %d", len(outcomes), len(sources))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("batch stalled on a manifest larger than the pool buffers")
	}
}

func TestBatchProcessorProcessError(t *testing.T) {
	processor := NewBatchProcessor(&stubVerifier{fail: true}, 2)

	outcomes := processor.Process(context.Background(), []string{"a.txt"})
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(outcomes))
	}
	if outcomes[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if outcomes[0].Record != nil {
		t.Error("expected nil record on error")
	}
}

func TestBatchProcessorProcessEmpty(t *testing.T) {
	processor := NewBatchProcessor(&stubVerifier{}, 2)

	outcomes := processor.Process(context.Background(), nil)
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes for empty input, want 0", len(outcomes))
	}
}

func TestReadManifest(t *testing.T) {
	path := writeManifest(t, "resumes/alice.txt\n# comment\nhttps://example.com/bob.html\n   \nresumes/carol.txt   \n")

	sources, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}

	want := []string{"resumes/alice.txt", "https://example.com/bob.html", "resumes/carol.txt"}
	if len(sources) != len(want) {
		t.Fatalf("got %d sources, want %d", len(sources), len(want))
	}
	for i, s := range sources {
		if s != want[i] {
			t.Errorf("source[%d] = %q, want %q", i, s, want[i])
		}
	}
}

func TestReadManifestDeduplicates(t *testing.T) {
	path := writeManifest(t, "resumes/alice.txt\nresumes/alice.txt\n")

	sources, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if len(sources) != 1 {
		t.Errorf("got %d sources after dedupe, want 1", len(sources))
	}
}

func TestReadManifestMissingFile(t *testing.T) {
	if _, err := ReadManifest("no_such_manifest.txt"); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestBatchProcessorProcessManifest(t *testing.T) {
	path := writeManifest(t, "a.txt\nb.txt\n# skip\n\nhttps://example.com/c.html\n")

	processor := NewBatchProcessor(&stubVerifier{}, 2)
	outcomes, err := processor.ProcessManifest(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessManifest failed: %v", err)
	}
	if len(outcomes) != 3 {
		t.Errorf("got %d outcomes, want 3", len(outcomes))
	}
}

func TestBatchProcessorProcessManifestMissing(t *testing.T) {
	processor := NewBatchProcessor(&stubVerifier{}, 2)
	if _, err := processor.ProcessManifest(context.Background(), "no_such_manifest.txt"); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestVerifyOutcomeErr(t *testing.T) {
	ok := &VerifyOutcome{Source: "a.txt"}
	if ok.Err() != nil {
		t.Errorf("Err() = %v, want nil", ok.Err())
	}

	failed := errors.New("verify failed")
	bad := &VerifyOutcome{Source: "b.txt", Error: failed}
	if !errors.Is(bad.Err(), failed) {
		t.Errorf("Err() = %v, want %v", bad.Err(), failed)
	}
}
