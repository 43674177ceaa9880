// Package score turns the pipeline's qualitative outputs into the final
// 0-100 credibility score. It is pure computation: same inputs, same score.
package score

import (
	"math"

	"github.com/ppiankov/credence/internal/model"
)

// Component weights. Evidence dominates because it reflects the article's
// actual claims rather than its packaging.
const (
	weightSource   = 0.3
	weightEvidence = 0.5
	weightBias     = 0.2
)

// tierScores maps a publisher tier to its source sub-score.
var tierScores = map[model.Tier]int{
	model.Tier1:       100,
	model.Tier2:       80,
	model.Tier3:       60,
	model.Tier4:       40,
	model.Tier5:       20,
	model.TierSatire:  10,
	model.TierUnknown: 50,
}

// verdictScores maps a claim verdict to its per-claim evidence score.
var verdictScores = map[model.Verdict]int{
	model.VerdictWellSupported:      100,
	model.VerdictPartiallySupported: 70,
	model.VerdictLacksEvidence:      50,
	model.VerdictDisputed:           30,
	model.VerdictActivelyRefuted:    0,
}

// biasBandScores maps a bias band to its bias sub-score.
var biasBandScores = map[model.BiasBand]int{
	model.BiasMinimal:  90,
	model.BiasModerate: 60,
	model.BiasStrong:   30,
}

// SourceScore returns the source sub-score for a tier. Unrecognized tiers
// score as unknown.
func SourceScore(tier model.Tier) int {
	if s, ok := tierScores[tier]; ok {
		return s
	}
	return tierScores[model.TierUnknown]
}

// EvidenceScore averages the per-claim verdict scores. With no claims there
// is nothing to verify either way, so the sub-score is neutral 50.
func EvidenceScore(verdicts []model.ClaimVerdict) int {
	if len(verdicts) == 0 {
		return 50
	}
	total := 0
	for _, v := range verdicts {
		total += verdictScore(v.Verdict)
	}
	return int(math.Round(float64(total) / float64(len(verdicts))))
}

func verdictScore(v model.Verdict) int {
	if s, ok := verdictScores[v]; ok {
		return s
	}
	// Outside the taxonomy counts as unverified.
	return verdictScores[model.VerdictLacksEvidence]
}

// BiasScore returns the bias sub-score for a band. Unrecognized bands score
// as moderate.
func BiasScore(band model.BiasBand) int {
	if s, ok := biasBandScores[band]; ok {
		return s
	}
	return biasBandScores[model.BiasModerate]
}

// Compute combines the three sub-scores into the final weighted score,
// rounded half away from zero and clamped to [0, 100].
func Compute(tier model.Tier, verdicts []model.ClaimVerdict, band model.BiasBand) (int, model.ScoreComponents) {
	components := model.ScoreComponents{
		Source:   SourceScore(tier),
		Evidence: EvidenceScore(verdicts),
		Bias:     BiasScore(band),
	}

	weighted := weightSource*float64(components.Source) +
		weightEvidence*float64(components.Evidence) +
		weightBias*float64(components.Bias)

	final := int(math.Round(weighted))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	return final, components
}
