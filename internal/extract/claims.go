// Package extract implements the deconstruction stage: turning cleaned
// article text into a bounded list of factual claims plus a bias report.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
)

// maxArticleChars bounds how much article text goes into one extraction
// prompt. Longer articles are truncated rather than chunked; the leading
// text carries the claims that matter for a credibility read.
const maxArticleChars = 15000

// ClaimExtractor turns article text into factual claims and a bias report.
type ClaimExtractor interface {
	Extract(ctx context.Context, text string) ([]model.Claim, model.BiasReport, error)
}

// LLMExtractor implements ClaimExtractor over a chat-completion provider.
type LLMExtractor struct {
	provider llm.Provider
	model    string
}

// NewLLMExtractor creates an extractor backed by the given provider.
func NewLLMExtractor(provider llm.Provider, modelName string) *LLMExtractor {
	return &LLMExtractor{
		provider: provider,
		model:    modelName,
	}
}

const extractSystem = "You are a news analyst. You identify verifiable factual assertions and assess tone. You respond only with JSON."

const extractPromptTemplate = `Analyze the article below.

1. List the distinct, independently verifiable factual claims it makes, as short standalone sentences, in the order they appear.
2. Summarize the article's tone and framing in two or three sentences.
3. Rate the bias from 1 (neutral) to 5 (highly biased).

Respond with a JSON object of this exact shape:
{"claims": ["...", "..."], "bias_summary": "...", "bias_rating": 3}

Article:
%s`

// extractorOutput is the JSON contract asked of the model. Claims may come
// back as strings or as single-field objects; both are accepted.
type extractorOutput struct {
	Claims      []json.RawMessage `json:"claims"`
	BiasSummary string            `json:"bias_summary"`
	BiasRating  int               `json:"bias_rating"`
}

// Extract runs one extraction call. Malformed output is an error; the stage
// owns the retry policy.
func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]model.Claim, model.BiasReport, error) {
	if len(text) > maxArticleChars {
		text = text[:maxArticleChars]
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:     extractSystem,
		Prompt:     fmt.Sprintf(extractPromptTemplate, text),
		Model:      e.model,
		JSONOutput: true,
	})
	if err != nil {
		return nil, model.BiasReport{}, fmt.Errorf("claim extraction call: %w", err)
	}

	claims, bias, err := parseExtractorOutput(resp.Text)
	if err != nil {
		return nil, model.BiasReport{}, fmt.Errorf("claim extraction output: %w", err)
	}
	return claims, bias, nil
}

// parseExtractorOutput parses the model's JSON, tolerating markdown fences
// and object-wrapped claim entries.
func parseExtractorOutput(raw string) ([]model.Claim, model.BiasReport, error) {
	cleaned := stripFences(raw)

	var out extractorOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, model.BiasReport{}, fmt.Errorf("parse JSON: %w", err)
	}

	var claims []model.Claim
	seen := make(map[string]bool)
	for _, entry := range out.Claims {
		text := claimText(entry)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		claims = append(claims, model.Claim{Index: len(claims), Text: text})
	}

	bias := model.BiasReport{
		Summary: strings.TrimSpace(out.BiasSummary),
		Rating:  out.BiasRating,
	}
	bias.Band = bias.DeriveBand()

	if len(claims) == 0 && bias.Summary == "" {
		return nil, model.BiasReport{}, fmt.Errorf("neither claims nor bias summary present")
	}
	return claims, bias, nil
}

// claimText extracts the claim string from a raw entry, which may be a JSON
// string or an object whose first string value is the claim.
func claimText(entry json.RawMessage) string {
	var s string
	if err := json.Unmarshal(entry, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj map[string]string
	if err := json.Unmarshal(entry, &obj); err == nil {
		for _, v := range obj {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
