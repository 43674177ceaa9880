package model

import "time"

// Config is the complete runtime configuration. Values load from
// ~/.credence/config.yaml and CREDENCE_* environment variables; flags win.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	LLM       LLMConfig       `yaml:"llm"`
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
	Output    OutputConfig    `yaml:"output"`
}

// HTTPConfig configures the content extractor's HTTP client and the API
// server.
type HTTPConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// AnalysisConfig bounds the pipeline stages.
type AnalysisConfig struct {
	// JobTimeout is the overall deadline for one analysis. The original
	// service documented 5 minutes but enforced roughly 2; we enforce an
	// explicit 2-minute default.
	JobTimeout     time.Duration `yaml:"job_timeout"`
	IngestTimeout  time.Duration `yaml:"ingest_timeout"`
	ExtractTimeout time.Duration `yaml:"extract_timeout"`
	GatherTimeout  time.Duration `yaml:"gather_timeout"`
	SynthTimeout   time.Duration `yaml:"synth_timeout"`
	// FanOutWidth bounds concurrent per-claim evidence tasks.
	FanOutWidth int `yaml:"fan_out_width"`
	// SynthWorkers bounds concurrent per-claim synthesis calls.
	SynthWorkers int `yaml:"synth_workers"`
	// Retention is how long terminal jobs stay pollable after completion.
	Retention time.Duration `yaml:"retention"`
}

// LLMConfig configures the chat-completion provider used for claim
// extraction and verdict synthesis.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// ProvidersConfig configures the evidence providers.
type ProvidersConfig struct {
	FactCheckBaseURL string        `yaml:"fact_check_base_url"`
	FactCheckAPIKey  string        `yaml:"fact_check_api_key"`
	SearchBaseURL    string        `yaml:"search_base_url"`
	CallTimeout      time.Duration `yaml:"call_timeout"`
	// RatePerHost and Burst throttle outbound provider calls per host.
	RatePerHost float64 `yaml:"rate_per_host"`
	Burst       int     `yaml:"burst"`
	// TierTablePath optionally overrides the built-in publisher tier table.
	TierTablePath string `yaml:"tier_table_path"`
}

// CacheConfig configures evidence response caching.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// OutputConfig configures CLI output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			ListenAddr:   ":8080",
			Timeout:      20 * time.Second,
			UserAgent:    "Credence/0.1 (+https://github.com/ppiankov/credence)",
			MaxBodyBytes: 2_000_000,
		},
		Analysis: AnalysisConfig{
			JobTimeout:     2 * time.Minute,
			IngestTimeout:  30 * time.Second,
			ExtractTimeout: 45 * time.Second,
			GatherTimeout:  30 * time.Second,
			SynthTimeout:   45 * time.Second,
			FanOutWidth:    5,
			SynthWorkers:   3,
			Retention:      15 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "",
			Timeout:   30,
			MaxTokens: 1024,
		},
		Providers: ProvidersConfig{
			FactCheckBaseURL: "https://factchecktools.googleapis.com/v1alpha1/claims:search",
			SearchBaseURL:    "https://html.duckduckgo.com/html/",
			CallTimeout:      6 * time.Second,
			RatePerHost:      2,
			Burst:            4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
	}
}
