package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/evidence"
	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/ingest"
	"github.com/ppiankov/credence/internal/job"
	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/pipeline"
	"github.com/ppiankov/credence/internal/synth"
	"github.com/ppiankov/credence/internal/tier"
	"github.com/ppiankov/credence/internal/worker"
)

// loadConfig builds the runtime config: defaults, then the config file, then
// environment variables.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return cfg, nil
}

// applyEnv fills in credentials from the conventional environment variables
// when the config file left them empty.
func applyEnv(cfg *model.Config) {
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "ollama":
			if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
				cfg.LLM.BaseURL = base
			}
		}
	}
	if cfg.Providers.FactCheckAPIKey == "" {
		cfg.Providers.FactCheckAPIKey = os.Getenv("FACTCHECK_API_KEY")
	}
}

// buildEngine wires the full pipeline from configuration.
func buildEngine(cfg *model.Config) (*pipeline.Engine, error) {
	resolver := tier.NewResolver()
	if cfg.Providers.TierTablePath != "" {
		var err error
		resolver, err = tier.NewResolverFromFile(cfg.Providers.TierTablePath)
		if err != nil {
			return nil, err
		}
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("an LLM provider is required: set llm.provider to openai, anthropic, or ollama")
	}

	ingestStage := ingest.NewStage(ingest.NewHTTPExtractor(cfg.HTTP), resolver, cfg.Analysis.IngestTimeout)
	extractStage := extract.NewStage(extract.NewLLMExtractor(provider, cfg.LLM.Model), cfg.Analysis.ExtractTimeout)

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		ttl := cfg.Cache.TTL
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		responseCache = cache.NewMemoryCache(ttl, ttl/2)
	}
	limiter := worker.NewLimiter(cfg.Providers.RatePerHost, cfg.Providers.Burst)

	factCheck := evidence.NewGoogleFactCheck(evidence.GoogleFactCheckOptions{
		BaseURL:  cfg.Providers.FactCheckBaseURL,
		APIKey:   cfg.Providers.FactCheckAPIKey,
		Timeout:  cfg.Providers.CallTimeout,
		Proxy:    cfg.HTTP,
		Limiter:  limiter,
		Cache:    responseCache,
		CacheTTL: cfg.Cache.TTL,
	})
	search := evidence.NewHTMLSearch(evidence.HTMLSearchOptions{
		BaseURL:   cfg.Providers.SearchBaseURL,
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.Providers.CallTimeout,
		Proxy:     cfg.HTTP,
		Limiter:   limiter,
		Cache:     responseCache,
		CacheTTL:  cfg.Cache.TTL,
	})
	gatherer := evidence.NewGatherer(factCheck, search, resolver.TrustedDomains(),
		cfg.Analysis.FanOutWidth, cfg.Providers.CallTimeout, cfg.Analysis.GatherTimeout)
	gatherer.SetVerbose(cfg.Output.Verbose)

	synthStage := synth.NewStage(
		synth.NewLLMSynthesizer(provider, cfg.LLM.Model, cfg.LLM.MaxTokens),
		cfg.Analysis.SynthWorkers, cfg.Analysis.SynthTimeout)
	synthStage.SetVerbose(cfg.Output.Verbose)

	store := job.NewStore(cfg.Analysis.Retention)
	p := pipeline.New(ingestStage, extractStage, gatherer, synthStage, store, cfg.Analysis.JobTimeout)
	p.SetVerbose(cfg.Output.Verbose)

	return pipeline.NewEngine(p, store), nil
}
