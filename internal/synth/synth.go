// Package synth assigns an evidence-grounded verdict to each extracted claim.
package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/model"
)

// VerdictSynthesizer weighs a claim against its gathered evidence and returns
// a verdict from the fixed taxonomy.
type VerdictSynthesizer interface {
	Synthesize(ctx context.Context, claim model.Claim, evidence model.EvidenceBundle) (model.ClaimVerdict, error)
}

// LLMSynthesizer implements VerdictSynthesizer over a chat-completion
// provider.
type LLMSynthesizer struct {
	provider  llm.Provider
	model     string
	maxTokens int
}

// NewLLMSynthesizer creates a synthesizer. model may be empty to use the
// provider's default.
func NewLLMSynthesizer(provider llm.Provider, model string, maxTokens int) *LLMSynthesizer {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &LLMSynthesizer{provider: provider, model: model, maxTokens: maxTokens}
}

const synthSystem = `You are a meticulous fact-analysis assistant. You weigh a single factual claim against the evidence provided and nothing else. You never invent evidence. When the evidence is empty or inconclusive you say so.`

const synthPromptTemplate = `Claim under review:
%s

Evidence gathered:
%s

Classify the claim using exactly one of these verdicts:
- Well-Supported: multiple independent pieces of evidence confirm it
- Partially Supported: some evidence supports it but coverage is thin or mixed
- Lacks Evidence: no meaningful evidence was found either way
- Disputed: credible evidence points in both directions
- Actively Refuted: fact-checkers or trusted coverage contradict it

Respond in exactly this format:
Verdict: [<verdict>]
Rationale: <one or two sentences grounded in the evidence above>`

// Synthesize asks the provider for a verdict and parses the bracketed reply.
func (s *LLMSynthesizer) Synthesize(ctx context.Context, claim model.Claim, evidence model.EvidenceBundle) (model.ClaimVerdict, error) {
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System:    synthSystem,
		Prompt:    fmt.Sprintf(synthPromptTemplate, claim.Text, FormatEvidence(evidence)),
		Model:     s.model,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return model.ClaimVerdict{}, fmt.Errorf("synthesis completion: %w", err)
	}

	verdict, rationale, err := parseVerdict(resp.Text)
	if err != nil {
		return model.ClaimVerdict{}, err
	}

	return model.ClaimVerdict{
		Index:           claim.Index,
		Claim:           claim.Text,
		Verdict:         verdict,
		Rationale:       rationale,
		EvidenceSummary: summarizeEvidence(evidence),
		Degraded:        evidence.Degraded,
	}, nil
}

// FormatEvidence renders a bundle as the numbered evidence block the prompt
// expects. An empty bundle renders as an explicit "no evidence" marker so the
// model does not hallucinate support.
func FormatEvidence(evidence model.EvidenceBundle) string {
	if evidence.Empty() {
		return "(no evidence was found for this claim)"
	}

	var lines []string
	for _, fc := range evidence.FactChecks {
		line := fmt.Sprintf("Fact-check by %s rates it %q", fc.Source, fc.Rating)
		if fc.Claimant != "" {
			line += fmt.Sprintf(" (claimant: %s)", fc.Claimant)
		}
		lines = append(lines, line)
	}
	for _, snip := range evidence.Snippets {
		lines = append(lines, fmt.Sprintf("Coverage on %s: %q", snip.Domain, snip.Title))
	}

	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, line)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// parseVerdict scans the reply for the first occurrence of any verdict from
// the taxonomy and the rationale line that follows it.
func parseVerdict(text string) (model.Verdict, string, error) {
	best := -1
	var verdict model.Verdict
	for _, v := range model.AllVerdicts {
		if idx := strings.Index(text, string(v)); idx >= 0 && (best < 0 || idx < best) {
			best = idx
			verdict = v
		}
	}
	if best < 0 {
		return "", "", fmt.Errorf("no recognizable verdict in reply: %q", truncate(text, 120))
	}

	rationale := ""
	if idx := strings.Index(text, "Rationale:"); idx >= 0 {
		rationale = strings.TrimSpace(text[idx+len("Rationale:"):])
	}
	return verdict, rationale, nil
}

func summarizeEvidence(evidence model.EvidenceBundle) string {
	if evidence.Empty() {
		return "no evidence found"
	}
	return fmt.Sprintf("%d fact-check(s), %d corroborating result(s)", len(evidence.FactChecks), len(evidence.Snippets))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
