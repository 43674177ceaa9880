package extract

import (
	"context"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

// Stage is the deconstruction stage. It enforces the claim cap and owns the
// retry policy: exactly one retry on a failed or malformed extraction, then
// the job fails — there is nothing to score without claims or bias context.
type Stage struct {
	extractor ClaimExtractor
	timeout   time.Duration
}

// NewStage creates the deconstruction stage.
func NewStage(extractor ClaimExtractor, timeout time.Duration) *Stage {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Stage{
		extractor: extractor,
		timeout:   timeout,
	}
}

// Deconstruct extracts claims and a bias report from cleaned text. Zero
// claims is a valid outcome. The returned claim list is capped at
// model.MaxClaims regardless of what the extractor produced.
func (s *Stage) Deconstruct(ctx context.Context, text string) ([]model.Claim, model.BiasReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	claims, bias, err := s.extractor.Extract(ctx, text)
	if err != nil {
		// One retry, then give up.
		claims, bias, err = s.extractor.Extract(ctx, text)
		if err != nil {
			return nil, model.BiasReport{}, model.NewAnalysisError(model.KindDeconstructionFailed, "claim extraction failed after retry: %v", err)
		}
	}

	if len(claims) > model.MaxClaims {
		claims = claims[:model.MaxClaims]
	}
	return claims, bias, nil
}
