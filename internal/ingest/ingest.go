// Package ingest resolves a submission into cleaned article text and a
// publisher trust tier.
package ingest

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/tier"
)

// Stage is the ingestion stage. It is bounded by its own timeout and never
// blocks past it.
type Stage struct {
	extractor ContentExtractor
	tiers     *tier.Resolver
	timeout   time.Duration
}

// NewStage creates the ingestion stage.
func NewStage(extractor ContentExtractor, tiers *tier.Resolver, timeout time.Duration) *Stage {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Stage{
		extractor: extractor,
		tiers:     tiers,
		timeout:   timeout,
	}
}

// Resolve turns the submitted input into ArticleContent. URL inputs go
// through the content extractor; raw text is used as-is, with the tier
// resolving to unknown unless a domain was supplied alongside it.
func (s *Stage) Resolve(ctx context.Context, input model.AnalysisInput) (*model.ArticleContent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if input.Text != "" {
		domain := tier.NormalizeDomain(input.Domain)
		return &model.ArticleContent{
			Text:   strings.TrimSpace(input.Text),
			Domain: domain,
			Tier:   s.tiers.Resolve(domain),
		}, nil
	}

	text, domain, err := s.extractor.Extract(ctx, input.URL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, model.NewAnalysisError(model.KindIngestionTimeout, "content extraction timed out for %s", input.URL)
		}
		return nil, model.NewAnalysisError(model.KindIngestionFailed, "content extraction failed: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, model.NewAnalysisError(model.KindIngestionFailed, "extractor returned empty text for %s", input.URL)
	}

	domain = tier.NormalizeDomain(domain)
	if domain == "" {
		if parsed, perr := url.Parse(input.URL); perr == nil {
			domain = tier.NormalizeDomain(parsed.Host)
		}
	}

	return &model.ArticleContent{
		Text:      text,
		SourceURL: input.URL,
		Domain:    domain,
		Tier:      s.tiers.Resolve(domain),
	}, nil
}
