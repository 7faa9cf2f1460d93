package model

import "time"

// Config is the full credvet configuration tree. Values come from flags, env
// vars (CREDVET_*) and ~/.credvet/config.yaml, in that order of priority.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Analyzer    AnalyzerConfig    `yaml:"analyzer"`
	Registry    RegistryConfig    `yaml:"registry"`
	Oracle      OracleConfig      `yaml:"oracle"`
	Timeline    TimelineConfig    `yaml:"timeline"`
	Fraud       FraudConfig       `yaml:"fraud"`
	Score       ScoreConfig       `yaml:"score"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig holds settings shared by all outbound HTTP clients.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// AnalyzerConfig configures the external reasoning capability. An empty
// Provider disables the external path entirely; the deterministic fallback
// still runs.
type AnalyzerConfig struct {
	Provider       string `yaml:"provider"` // "openai" or "" (disabled)
	Model          string `yaml:"model"`
	APIKey         string `yaml:"-"` // from env only, never persisted
	BaseURL        string `yaml:"base_url"`
	Timeout        int    `yaml:"timeout"` // seconds
	MaxTokens      int    `yaml:"max_tokens"`
	MaxPromptChars int    `yaml:"max_prompt_chars"`
}

// RegistryConfig configures the external claim verifier.
type RegistryConfig struct {
	Endpoint          string        `yaml:"endpoint"`
	APIKey            string        `yaml:"-"`
	Timeout           time.Duration `yaml:"timeout"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// OracleConfig configures the trusted timestamp source.
type OracleConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Timeout      time.Duration `yaml:"timeout"`
	EpochSeconds int64         `yaml:"epoch_seconds"`
}

// TimelineConfig bounds plausible claim intervals.
type TimelineConfig struct {
	MinYear    int `yaml:"min_year"`    // intervals starting earlier are implausible
	SlackYears int `yaml:"slack_years"` // tolerated work-during-study overlap
}

// FraudConfig holds the heuristic rule tables. Injected at construction so
// tests can run isolated rule sets in parallel.
type FraudConfig struct {
	BlockedInstitutions []string `yaml:"blocked_institutions"`
	SuspiciousPatterns  []string `yaml:"suspicious_patterns"`
	MinGraduationYear   int      `yaml:"min_graduation_year"`
}

// ScoreConfig exposes the aggregation constants. The prototype values are
// defaults, not load-bearing policy.
type ScoreConfig struct {
	FraudPenalty         int `yaml:"fraud_penalty"`
	ExperienceBaseline   int `yaml:"experience_baseline"`
	IdentityBaseline     int `yaml:"identity_baseline"`
	AuthenticityBaseline int `yaml:"authenticity_baseline"`
	Threshold            int `yaml:"threshold"`
}

// CacheConfig controls the registry response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig controls pipeline fan-out.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
	// AnalyzerWait bounds how long fraud heuristics wait for analyzer
	// output before proceeding without it.
	AnalyzerWait time.Duration `yaml:"analyzer_wait"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "credvet/0.1 (+https://github.com/credvet/credvet)",
			MaxBodyBytes: 2_000_000,
		},
		Analyzer: AnalyzerConfig{
			Provider:       "", // disabled unless configured
			Timeout:        30,
			MaxTokens:      2000,
			MaxPromptChars: 8000,
		},
		Registry: RegistryConfig{
			Timeout:           15 * time.Second,
			CacheTTL:          10 * time.Minute,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Oracle: OracleConfig{
			Timeout:      10 * time.Second,
			EpochSeconds: 3600,
		},
		Timeline: TimelineConfig{
			MinYear:    1950,
			SlackYears: 2,
		},
		Fraud: FraudConfig{
			BlockedInstitutions: []string{
				"University of Phoenix",
				"Diploma Mill",
				"Fake University",
			},
			SuspiciousPatterns: []string{
				`\b(?:[A-Z]{2,}\s+){3,}[A-Z]{2,}\b`,
				`(?i)perfect\s+4\.0`,
				`(?i)(?:CEO|CTO|CFO|President)\s+at\s+age\s+\d{1,2}`,
			},
			MinGraduationYear: 1950,
		},
		Score: ScoreConfig{
			FraudPenalty:         5,
			ExperienceBaseline:   20,
			IdentityBaseline:     15,
			AuthenticityBaseline: 15,
			Threshold:            70,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			AnalyzerWait: 31 * time.Second,
		},
		Output: OutputConfig{},
	}
}
