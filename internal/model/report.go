package model

import (
	"strings"
	"time"
)

// ArticleContent is the cleaned article produced by ingestion. It is built
// once and read-only for every later stage.
type ArticleContent struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url,omitempty"`
	Domain    string `json:"domain,omitempty"`
	Tier      Tier   `json:"tier"`
}

// BiasBand buckets the detected bias severity for scoring. The mapping from
// extractor output to a band is total: every extraction lands in exactly one
// band, with moderate as the fallback.
type BiasBand string

const (
	BiasMinimal  BiasBand = "minimal"
	BiasModerate BiasBand = "moderate"
	BiasStrong   BiasBand = "strong"
)

// BiasReport is the extractor's assessment of the article's tone.
// Rating is 1 (neutral) through 5 (highly biased), 0 when the extractor did
// not provide a numeric rating.
type BiasReport struct {
	Summary string   `json:"summary"`
	Rating  int      `json:"rating,omitempty"`
	Band    BiasBand `json:"band"`
}

// DeriveBand collapses the numeric rating (preferred) or the summary prose
// into a bias band. Total: anything unrecognized is moderate.
func (b BiasReport) DeriveBand() BiasBand {
	switch {
	case b.Rating >= 1 && b.Rating <= 2:
		return BiasMinimal
	case b.Rating == 3:
		return BiasModerate
	case b.Rating >= 4 && b.Rating <= 5:
		return BiasStrong
	}
	return bandFromText(b.Summary)
}

func bandFromText(summary string) BiasBand {
	lower := strings.ToLower(summary)
	// Strong markers win over neutral ones: "not neutral, heavily slanted"
	// should land in the strong band.
	for _, kw := range []string{"strong", "heavy", "heavily", "highly biased", "extreme", "propaganda"} {
		if strings.Contains(lower, kw) {
			return BiasStrong
		}
	}
	for _, kw := range []string{"neutral", "minimal", "unbiased", "balanced"} {
		if strings.Contains(lower, kw) {
			return BiasMinimal
		}
	}
	return BiasModerate
}

// ScoreComponents are the three named sub-scores, each 0-100.
type ScoreComponents struct {
	Source   int `json:"source"`
	Evidence int `json:"evidence"`
	Bias     int `json:"bias"`
}

// AnalysisReport is the terminal value of a completed analysis job.
type AnalysisReport struct {
	RequestID       string          `json:"request_id"`
	FinalScore      int             `json:"final_credibility_score"`
	Components      ScoreComponents `json:"components"`
	PublisherTier   Tier            `json:"publisher_tier"`
	Bias            BiasReport      `json:"bias_report"`
	Claims          []ClaimVerdict  `json:"claims"`
	ProcessingTime  time.Duration   `json:"-"`
	ProcessingMS    int64           `json:"processing_time_ms"`
	SourceURL       string          `json:"source_url,omitempty"`
}
