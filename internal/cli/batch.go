package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/credvet/credvet/internal/model"
	"github.com/credvet/credvet/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Verify multiple candidate documents in parallel",
	Long: `Batch verifies many documents concurrently:
- Read document sources (file paths or URLs) from a manifest, one per line
- Verify them in parallel with a bounded worker pool
- Write one verification record JSON per document

Example:
  credvet batch resumes.txt
  credvet batch resumes.txt --concurrency 8 --output-dir ./records
  credvet batch resumes.txt --registry https://registry.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./credvet-records", "output directory for records")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().StringVar(&userAgent, "ua", "credvet/0.1 (+https://github.com/credvet/credvet)", "HTTP User-Agent")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable registry response caching")
	batchCmd.Flags().StringVar(&registryEndpoint, "registry", "", "claim registry endpoint")
	batchCmd.Flags().StringVar(&oracleEndpoint, "oracle", "", "timestamp oracle endpoint")

	batchCmd.Flags().BoolVar(&analyzerEnabled, "analyzer", false, "enable the external consistency analyzer")
	batchCmd.Flags().StringVar(&analyzerProvider, "analyzer-provider", "openai", "analyzer provider")
	batchCmd.Flags().StringVar(&analyzerModel, "analyzer-model", "", "analyzer model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.HTTP.UserAgent = userAgent
	cfg.Registry.Endpoint = registryEndpoint
	cfg.Oracle.Endpoint = oracleEndpoint
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency.Workers = concurrency
	cfg.Output.Verbose = verbose

	if analyzerEnabled {
		if err := applyAnalyzerFlags(cfg, analyzerProvider, analyzerModel); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Batch verification: %s (%d workers)\n", manifest, concurrency)

	processor := worker.NewBatchProcessor(p, concurrency)
	outcomes, err := processor.ProcessManifest(ctx, manifest)
	if err != nil {
		return fmt.Errorf("process manifest: %w", err)
	}

	succeeded := 0
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", outcome.Source, outcome.Error)
			continue
		}

		record := outcome.Record
		path := filepath.Join(outputDir, recordFilename(outcome.Source, record.ID))
		if err := writeRecord(record, path); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", outcome.Source, err)
			continue
		}

		succeeded++
		fmt.Fprintf(os.Stderr, "✓ %s: %s, score %d/100 (%s)\n",
			outcome.Source, record.Status, record.Score, record.Outcome(p.Threshold()))
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d verified, %d failed, records in %s\n", succeeded, failed, outputDir)

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(outcomes))
	}
	return nil
}

// recordFilename derives a filesystem-safe name from the document source,
// suffixed with the record identifier to keep names unique.
func recordFilename(source, recordID string) string {
	base := filepath.Base(strings.TrimSuffix(source, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	base = replacer.Replace(base)
	if base == "" || base == "." {
		base = "document"
	}
	if len(base) > 80 {
		base = base[:80]
	}

	return base + "_" + strings.TrimPrefix(recordID, "ver_")[:8] + ".json"
}
