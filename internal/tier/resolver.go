// Package tier resolves publisher domains to reliability tiers.
package tier

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/credence/internal/model"
)

// defaultTable is the built-in publisher reliability table. Tier 1 is the
// highest trust, tier 5 the lowest; satire is its own category.
var defaultTable = map[string]model.Tier{
	// Tier 1: major international news wires
	"apnews.com":  model.Tier1,
	"reuters.com": model.Tier1,

	// Tier 2: major newspapers of record
	"nytimes.com": model.Tier2,
	"bbc.com":     model.Tier2,
	"wsj.com":     model.Tier2,

	// Tier 3: reputable but smaller or with known leanings
	"theguardian.com": model.Tier3,
	"npr.org":         model.Tier3,
	"aljazeera.com":   model.Tier3,

	// Tier 4: known hyper-partisan sources
	"breitbart.com":   model.Tier4,
	"dailycaller.com": model.Tier4,

	// Tier 5: documented propaganda or conspiracy outlets
	"infowars.com": model.Tier5,

	"theonion.com": model.TierSatire,
}

// Resolver maps publisher domains to tiers. Resolve is total: unmatched
// domains are "unknown", which scoring treats as mid-range neutral.
type Resolver struct {
	table map[string]model.Tier
}

// NewResolver creates a resolver over the built-in table.
func NewResolver() *Resolver {
	return &Resolver{table: defaultTable}
}

// NewResolverFromFile loads a YAML domain->tier table from path. Entries use
// the tier's string form ("1".."5", "satire").
func NewResolverFromFile(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier table: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse tier table: %w", err)
	}

	table := make(map[string]model.Tier, len(raw))
	for domain, tierStr := range raw {
		t := model.Tier(strings.ToLower(strings.TrimSpace(tierStr)))
		if !t.Valid() || t == model.TierUnknown {
			return nil, fmt.Errorf("tier table: invalid tier %q for %s", tierStr, domain)
		}
		table[NormalizeDomain(domain)] = t
	}
	return &Resolver{table: table}, nil
}

// Resolve returns the tier for a publisher domain.
func (r *Resolver) Resolve(domain string) model.Tier {
	if domain == "" {
		return model.TierUnknown
	}
	if t, ok := r.table[NormalizeDomain(domain)]; ok {
		return t
	}
	return model.TierUnknown
}

// TrustedDomains returns the tier 1 and tier 2 domains, used to scope
// corroboration searches.
func (r *Resolver) TrustedDomains() []string {
	var domains []string
	for domain, t := range r.table {
		if t == model.Tier1 || t == model.Tier2 {
			domains = append(domains, domain)
		}
	}
	return domains
}

// NewTrustedSet builds a normalized lookup set from a domain list.
func NewTrustedSet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[NormalizeDomain(d)] = struct{}{}
	}
	return set
}

// NormalizeDomain lowercases a host and strips a leading "www." and any
// port, so lookups match the table's bare-domain keys.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if idx := strings.Index(d, ":"); idx > 0 {
		d = d[:idx]
	}
	return strings.TrimPrefix(d, "www.")
}
