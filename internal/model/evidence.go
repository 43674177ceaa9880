package model

// Tier is a publisher's assigned reliability class: "1" (most reliable)
// through "5" (least), plus "satire" and "unknown".
type Tier string

const (
	Tier1       Tier = "1"
	Tier2       Tier = "2"
	Tier3       Tier = "3"
	Tier4       Tier = "4"
	Tier5       Tier = "5"
	TierSatire  Tier = "satire"
	TierUnknown Tier = "unknown"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case Tier1, Tier2, Tier3, Tier4, Tier5, TierSatire, TierUnknown:
		return true
	}
	return false
}

// FactCheckRecord is a single published fact-check matched to a claim.
type FactCheckRecord struct {
	Claimant string `json:"claimant,omitempty"`
	Rating   string `json:"rating"`
	Source   string `json:"source"`
	URL      string `json:"url,omitempty"`
}

// Snippet is a corroborating search result from a trusted domain.
type Snippet struct {
	Domain  string `json:"domain"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
	URL     string `json:"url"`
}

// EvidenceBundle aggregates the fact-check and corroboration data gathered
// for one claim. An empty bundle is not an error; Degraded marks bundles
// where at least one provider call failed, so synthesis can produce a
// low-confidence verdict instead of fabricating support.
type EvidenceBundle struct {
	ClaimIndex int               `json:"claim_index"`
	FactChecks []FactCheckRecord `json:"fact_checks,omitempty"`
	Snippets   []Snippet         `json:"snippets,omitempty"`
	Degraded   bool              `json:"degraded,omitempty"`
}

// Empty reports whether the bundle carries no evidence at all.
func (b EvidenceBundle) Empty() bool {
	return len(b.FactChecks) == 0 && len(b.Snippets) == 0
}
