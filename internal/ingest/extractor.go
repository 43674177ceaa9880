package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/util"
)

// extractorAttempts is the extractor's internal retry budget. Ingestion
// itself never retries; it surfaces whatever the extractor settles on.
const extractorAttempts = 2

// ContentExtractor resolves a URL into cleaned article text and the
// publisher domain it was served from.
type ContentExtractor interface {
	Extract(ctx context.Context, rawURL string) (text string, domain string, err error)
}

// HTTPExtractor is the default ContentExtractor: plain HTTP fetch, robots.txt
// gate, and visible-text extraction from the returned HTML.
type HTTPExtractor struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	userAgent  string
	maxBytes   int64
}

// NewHTTPExtractor creates an HTTPExtractor from the HTTP configuration.
func NewHTTPExtractor(cfg model.HTTPConfig) *HTTPExtractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &HTTPExtractor{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    util.NewRobotsChecker(cfg.UserAgent, timeout),
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
	}
}

// Extract fetches the URL and returns cleaned text plus the final host.
// Transient fetch failures are retried within the extractor's own budget.
func (e *HTTPExtractor) Extract(ctx context.Context, rawURL string) (string, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", "", fmt.Errorf("invalid url: %s", rawURL)
	}

	if !e.robots.Allowed(ctx, rawURL) {
		return "", "", fmt.Errorf("fetch disallowed by robots.txt: %s", rawURL)
	}

	var lastErr error
	for attempt := 0; attempt < extractorAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}

		text, domain, err := e.fetchOnce(ctx, rawURL)
		if err == nil {
			return text, domain, nil
		}
		lastErr = err
	}
	return "", "", lastErr
}

func (e *HTTPExtractor) fetchOnce(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}

	text, err := VisibleText(string(body))
	if err != nil {
		return "", "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("no readable text at %s", rawURL)
	}

	return text, resp.Request.URL.Host, nil
}
