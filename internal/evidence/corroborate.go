package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/tier"
	"github.com/ppiankov/credence/internal/util"
	"github.com/ppiankov/credence/internal/worker"
)

// maxSnippets caps how many corroborating snippets one claim keeps.
const maxSnippets = 5

// CorroborationProvider searches for coverage of a claim on trusted domains.
type CorroborationProvider interface {
	Search(ctx context.Context, claimText string, trustedDomains []string) ([]model.Snippet, error)
}

// HTMLSearchProvider implements CorroborationProvider by scraping an
// HTML search endpoint and keeping only results hosted on trusted domains.
type HTMLSearchProvider struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// HTMLSearchOptions configures the provider. Cache and Limiter may be nil.
type HTMLSearchOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Proxy     model.HTTPConfig
	Limiter   *worker.Limiter
	Cache     cache.Cache
	CacheTTL  time.Duration
}

// NewHTMLSearch creates the provider.
func NewHTMLSearch(opts HTMLSearchOptions) *HTMLSearchProvider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &HTMLSearchProvider{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
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

// Search queries the search endpoint for the claim and returns result links
// whose host belongs to one of the trusted domains. An empty result is not
// an error.
func (p *HTMLSearchProvider) Search(ctx context.Context, claimText string, trustedDomains []string) ([]model.Snippet, error) {
	cacheKey := cache.Key("search", claimText)
	if p.cache != nil {
		if data, found := p.cache.Get(cacheKey); found {
			var snippets []model.Snippet
			if err := json.Unmarshal(data, &snippets); err == nil {
				return snippets, nil
			}
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, p.baseURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	reqURL := fmt.Sprintf("%s?%s", p.baseURL, url.Values{
		"q": {claimText},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("search status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	snippets := collectResultLinks(doc, tier.NewTrustedSet(trustedDomains))

	if p.cache != nil {
		if data, err := json.Marshal(snippets); err == nil {
			_ = p.cache.Set(cacheKey, data, p.cacheTTL)
		}
	}

	return snippets, nil
}

// collectResultLinks walks the result page and keeps anchors that resolve to
// a trusted domain.
func collectResultLinks(doc *html.Node, trusted map[string]struct{}) []model.Snippet {
	var snippets []model.Snippet
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(snippets) >= maxSnippets {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if snip, ok := resultLink(n, trusted); ok {
				if _, dup := seen[snip.URL]; !dup {
					seen[snip.URL] = struct{}{}
					snippets = append(snippets, snip)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return snippets
}

func resultLink(n *html.Node, trusted map[string]struct{}) (model.Snippet, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}
	if href == "" {
		return model.Snippet{}, false
	}

	target := resolveRedirect(href)
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return model.Snippet{}, false
	}

	domain := tier.NormalizeDomain(u.Host)
	if _, ok := trusted[domain]; !ok {
		return model.Snippet{}, false
	}

	title := strings.TrimSpace(anchorText(n))
	if title == "" {
		return model.Snippet{}, false
	}

	return model.Snippet{
		Domain: domain,
		Title:  title,
		URL:    target,
	}, true
}

// resolveRedirect unwraps search-engine redirect links that carry the real
// destination in a "uddg" query parameter.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := u.Query().Get("uddg"); dest != "" {
		return dest
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func anchorText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
