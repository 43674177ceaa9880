package model

// MaxClaims caps how many claims a single article contributes to the
// analysis. Extractors may return more; everything past the cap is dropped.
const MaxClaims = 7

// Claim represents a single factual assertion extracted from article text.
// Index is the extraction order and identifies the claim throughout the
// pipeline.
type Claim struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Verdict is the fixed outcome taxonomy assigned to a claim after evidence
// synthesis.
type Verdict string

const (
	VerdictWellSupported      Verdict = "Well-Supported"
	VerdictPartiallySupported Verdict = "Partially Supported"
	VerdictLacksEvidence      Verdict = "Lacks Evidence"
	VerdictDisputed           Verdict = "Disputed"
	VerdictActivelyRefuted    Verdict = "Actively Refuted"
)

// AllVerdicts lists the taxonomy in order of decreasing support.
var AllVerdicts = []Verdict{
	VerdictWellSupported,
	VerdictPartiallySupported,
	VerdictLacksEvidence,
	VerdictDisputed,
	VerdictActivelyRefuted,
}

// Valid reports whether v is part of the fixed taxonomy.
func (v Verdict) Valid() bool {
	for _, known := range AllVerdicts {
		if v == known {
			return true
		}
	}
	return false
}

// ClaimVerdict is the per-claim synthesis outcome. It is one-to-one with the
// extracted claim list by Index.
type ClaimVerdict struct {
	Index           int     `json:"index"`
	Claim           string  `json:"claim"`
	Verdict         Verdict `json:"verdict"`
	Rationale       string  `json:"rationale"`
	EvidenceSummary string  `json:"evidence_summary,omitempty"`
	Degraded        bool    `json:"degraded,omitempty"`
}
