package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/credvet/credvet/internal/model"
	"github.com/spf13/cobra"
)

var (
	outJSON          string
	candidateID      string
	timeout          time.Duration
	userAgent        string
	maxBytes         int64
	noCache          bool
	registryEndpoint string
	oracleEndpoint   string
	analyzerEnabled  bool
	analyzerProvider string
	analyzerModel    string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file-or-url>",
	Short: "Verify a single candidate document",
	Long: `Verify runs the full pipeline for one document:
- Parse the document (plain text or HTML) and digest its content
- Extract claimed institutions, degrees, employers, skills and dates
- Validate the claimed timeline and screen for fraud signals
- Cross-check the primary degree and accreditation claims (if a registry
  endpoint is configured)
- Anchor the run with a trusted timestamp and bind an evidence digest
- Emit the verification record as JSON

Example:
  credvet verify resume.txt
  credvet verify https://example.com/cv.html --json record.json
  credvet verify resume.txt --registry https://registry.example.com --analyzer`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	verifyCmd.Flags().StringVar(&candidateID, "candidate", "", "candidate identifier (default: derived from the source)")

	verifyCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall verification timeout")
	verifyCmd.Flags().StringVar(&userAgent, "ua", "credvet/0.1 (+https://github.com/credvet/credvet)", "HTTP User-Agent")
	verifyCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max document bytes to read")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable registry response caching")

	verifyCmd.Flags().StringVar(&registryEndpoint, "registry", "", "claim registry endpoint (empty: claims stay unverified)")
	verifyCmd.Flags().StringVar(&oracleEndpoint, "oracle", "", "timestamp oracle endpoint (empty: wall-clock fallback)")

	verifyCmd.Flags().BoolVar(&analyzerEnabled, "analyzer", false, "enable the external consistency analyzer")
	verifyCmd.Flags().StringVar(&analyzerProvider, "analyzer-provider", "openai", "analyzer provider")
	verifyCmd.Flags().StringVar(&analyzerModel, "analyzer-model", "", "analyzer model name")
}

func runVerify(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.Registry.Endpoint = registryEndpoint
	cfg.Oracle.Endpoint = oracleEndpoint
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose

	if analyzerEnabled {
		if err := applyAnalyzerFlags(cfg, analyzerProvider, analyzerModel); err != nil {
			return err
		}
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s\n", source)
	}

	var record *model.VerificationRecord
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		record, err = p.VerifyURL(ctx, source)
	} else {
		record, err = p.VerifyFile(ctx, source)
	}
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	if candidateID != "" {
		record.CandidateID = candidateID
	}

	if verbose {
		printSummary(record, p.Threshold())
	}

	return writeRecord(record, outJSON)
}

func printSummary(record *model.VerificationRecord, threshold int) {
	fmt.Fprintf(os.Stderr, "✓ Status: %s\n", record.Status)
	if record.Status == model.StatusFailed {
		fmt.Fprintf(os.Stderr, "✗ Error: %s\n", record.Error)
		return
	}
	fmt.Fprintf(os.Stderr, "✓ Extracted %d institutions, %d degrees, %d employers\n",
		len(record.Entities.Institutions), len(record.Entities.Degrees), len(record.Entities.Employers))
	fmt.Fprintf(os.Stderr, "✓ Score: %d/100 (threshold %d, outcome: %s)\n",
		record.Score, threshold, record.Outcome(threshold))
	if n := len(record.Flags.FraudIndicators); n > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d fraud indicator(s) detected\n", n)
	}
	if record.Timestamp != nil && !record.Timestamp.Verified {
		fmt.Fprintf(os.Stderr, "Warning: timestamp degraded to local wall clock\n")
	}
}

func writeRecord(record *model.VerificationRecord, path string) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}
