package cli

import (
	"fmt"
	"os"

	"github.com/credvet/credvet/internal/cache"
	"github.com/credvet/credvet/internal/model"
	"github.com/credvet/credvet/internal/oracle"
	"github.com/credvet/credvet/internal/pipeline"
	"github.com/credvet/credvet/internal/registry"
	"github.com/credvet/credvet/internal/worker"
)

// applyAnalyzerFlags enables the external reasoning path. The API key comes
// from the environment only; a missing key is an error here rather than a
// silent fallback, because the user explicitly asked for the analyzer.
func applyAnalyzerFlags(cfg *model.Config, provider, modelName string) error {
	cfg.Analyzer.Provider = provider
	if modelName != "" {
		cfg.Analyzer.Model = modelName
	}

	switch provider {
	case "openai":
		cfg.Analyzer.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Analyzer.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	return nil
}

// buildPipeline wires the pipeline with its network collaborators. The
// registry client is only attached when an endpoint is configured; the
// timestamp source is always attached and degrades to the wall clock on its
// own.
func buildPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	store := pipeline.NewMemoryStore()

	var verifier pipeline.ClaimVerifier
	if cfg.Registry.Endpoint != "" {
		var responseCache cache.AttestationCache
		if cfg.Cache.Enabled {
			responseCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		}
		cfg.Registry.APIKey = os.Getenv("CREDVET_REGISTRY_API_KEY")
		verifier = registry.NewClient(cfg.Registry, responseCache)
	}

	timestamps := oracle.NewSource(cfg.Oracle)

	p, err := pipeline.New(cfg, store, verifier, timestamps)
	if err != nil {
		return nil, err
	}

	limiter := worker.NewLimiter(cfg.Registry.RequestsPerSecond, cfg.Registry.Burst)
	return p.WithFetcher(pipeline.NewFetcher(cfg.HTTP, limiter)), nil
}
