package synth

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

// Stage runs verdict synthesis for all claims with bounded concurrency.
// A synthesis failure downgrades that claim to Lacks Evidence instead of
// failing the job.
type Stage struct {
	synth   VerdictSynthesizer
	workers int
	timeout time.Duration
	verbose bool
}

// NewStage creates the stage. workers bounds concurrent provider calls.
func NewStage(synth VerdictSynthesizer, workers int, timeout time.Duration) *Stage {
	if workers <= 0 {
		workers = 1
	}
	return &Stage{synth: synth, workers: workers, timeout: timeout}
}

// SetVerbose enables per-claim progress output on stderr.
func (s *Stage) SetVerbose(v bool) {
	s.verbose = v
}

// Run synthesizes a verdict for every claim. The returned slice always has
// exactly len(claims) entries, verdict i belonging to claim index i. bundles
// must be index-aligned with claims.
func (s *Stage) Run(ctx context.Context, claims []model.Claim, bundles []model.EvidenceBundle) []model.ClaimVerdict {
	verdicts := make([]model.ClaimVerdict, len(claims))

	stageCtx := ctx
	var cancel context.CancelFunc
	if s.timeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)

	for i, claim := range claims {
		wg.Add(1)
		go func(i int, claim model.Claim) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-stageCtx.Done():
				verdicts[i] = fallbackVerdict(claim, bundleFor(bundles, i), stageCtx.Err())
				return
			}

			verdict, err := s.synth.Synthesize(stageCtx, claim, bundleFor(bundles, i))
			if err != nil {
				if s.verbose {
					fmt.Fprintf(os.Stderr, "claim %d: synthesis failed: %v\n", claim.Index, err)
				}
				verdicts[i] = fallbackVerdict(claim, bundleFor(bundles, i), err)
				return
			}
			verdicts[i] = verdict
		}(i, claim)
	}

	wg.Wait()
	return verdicts
}

func bundleFor(bundles []model.EvidenceBundle, i int) model.EvidenceBundle {
	if i >= 0 && i < len(bundles) {
		return bundles[i]
	}
	return model.EvidenceBundle{ClaimIndex: i, Degraded: true}
}

// fallbackVerdict is the deterministic stand-in when synthesis itself fails:
// the claim counts as unverified rather than supported or refuted.
func fallbackVerdict(claim model.Claim, evidence model.EvidenceBundle, cause error) model.ClaimVerdict {
	return model.ClaimVerdict{
		Index:           claim.Index,
		Claim:           claim.Text,
		Verdict:         model.VerdictLacksEvidence,
		Rationale:       fmt.Sprintf("verdict synthesis unavailable (%v); claim treated as unverified", cause),
		EvidenceSummary: summarizeEvidence(evidence),
		Degraded:        true,
	}
}
