// Package evidence gathers external evidence for extracted claims: published
// fact-checks and corroborating coverage on trusted domains.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/util"
	"github.com/ppiankov/credence/internal/worker"
)

// maxFactCheckRecords caps how many fact-check records one claim keeps.
const maxFactCheckRecords = 5

// FactCheckProvider queries a published fact-check database for a claim.
type FactCheckProvider interface {
	Query(ctx context.Context, claimText string) ([]model.FactCheckRecord, error)
}

// GoogleFactCheck implements FactCheckProvider over the Google Fact Check
// Tools claims:search API.
type GoogleFactCheck struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// GoogleFactCheckOptions configures the provider. Cache and Limiter may be
// nil to disable caching and throttling.
type GoogleFactCheckOptions struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Proxy    model.HTTPConfig
	Limiter  *worker.Limiter
	Cache    cache.Cache
	CacheTTL time.Duration
}

// NewGoogleFactCheck creates the provider.
func NewGoogleFactCheck(opts GoogleFactCheckOptions) *GoogleFactCheck {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &GoogleFactCheck{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.Proxy.HTTPProxy, opts.Proxy.HTTPSProxy, opts.Proxy.NoProxy),
			},
		},
		limiter:  opts.Limiter,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}
}

// factCheckResponse mirrors the claims:search wire format.
type factCheckResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Query searches for published fact-checks of the claim. An empty result is
// not an error.
func (g *GoogleFactCheck) Query(ctx context.Context, claimText string) ([]model.FactCheckRecord, error) {
	cacheKey := cache.Key("factcheck", claimText)
	if g.cache != nil {
		if data, found := g.cache.Get(cacheKey); found {
			var records []model.FactCheckRecord
			if err := json.Unmarshal(data, &records); err == nil {
				return records, nil
			}
		}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, g.baseURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	reqURL := fmt.Sprintf("%s?%s", g.baseURL, url.Values{
		"query":        {claimText},
		"key":          {g.apiKey},
		"languageCode": {"en"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fact-check query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact-check API status %d: %s", resp.StatusCode, string(body))
	}

	var parsed factCheckResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var records []model.FactCheckRecord
	for _, c := range parsed.Claims {
		for _, review := range c.ClaimReview {
			records = append(records, model.FactCheckRecord{
				Claimant: c.Claimant,
				Rating:   review.TextualRating,
				Source:   review.Publisher.Name,
				URL:      review.URL,
			})
			if len(records) >= maxFactCheckRecords {
				break
			}
		}
		if len(records) >= maxFactCheckRecords {
			break
		}
	}

	if g.cache != nil {
		if data, err := json.Marshal(records); err == nil {
			_ = g.cache.Set(cacheKey, data, g.cacheTTL)
		}
	}

	return records, nil
}
