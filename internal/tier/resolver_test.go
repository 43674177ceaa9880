package tier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/credence/internal/model"
)

func TestResolve_KnownDomains(t *testing.T) {
	r := NewResolver()

	cases := []struct {
		domain string
		want   model.Tier
	}{
		{"reuters.com", model.Tier1},
		{"www.reuters.com", model.Tier1},
		{"BBC.com", model.Tier2},
		{"npr.org", model.Tier3},
		{"breitbart.com", model.Tier4},
		{"infowars.com", model.Tier5},
		{"theonion.com", model.TierSatire},
	}

	for _, tc := range cases {
		if got := r.Resolve(tc.domain); got != tc.want {
			t.Errorf("Resolve(%q) = %s, want %s", tc.domain, got, tc.want)
		}
	}
}

func TestResolve_UnknownIsTotal(t *testing.T) {
	r := NewResolver()

	for _, domain := range []string{"", "example.com", "blog.unheard-of.net", "reuters.com.evil.biz"} {
		if got := r.Resolve(domain); got != model.TierUnknown {
			t.Errorf("Resolve(%q) = %s, want unknown", domain, got)
		}
	}
}

func TestResolve_StripsPort(t *testing.T) {
	r := NewResolver()
	if got := r.Resolve("reuters.com:443"); got != model.Tier1 {
		t.Errorf("Resolve with port = %s, want 1", got)
	}
}

func TestTrustedDomains(t *testing.T) {
	r := NewResolver()
	trusted := r.TrustedDomains()

	set := make(map[string]bool)
	for _, d := range trusted {
		set[d] = true
	}

	for _, want := range []string{"apnews.com", "reuters.com", "nytimes.com", "bbc.com", "wsj.com"} {
		if !set[want] {
			t.Errorf("expected %s in trusted domains", want)
		}
	}
	if set["npr.org"] {
		t.Error("tier 3 domain should not be trusted for corroboration")
	}
}

func TestNewResolverFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	content := "example.org: \"1\"\nwww.satire.example: satire\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := NewResolverFromFile(path)
	if err != nil {
		t.Fatalf("NewResolverFromFile failed: %v", err)
	}

	if got := r.Resolve("example.org"); got != model.Tier1 {
		t.Errorf("Resolve(example.org) = %s, want 1", got)
	}
	if got := r.Resolve("satire.example"); got != model.TierSatire {
		t.Errorf("Resolve(satire.example) = %s, want satire", got)
	}
}

func TestNewResolverFromFile_InvalidTier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	if err := os.WriteFile(path, []byte("example.org: gold\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewResolverFromFile(path); err == nil {
		t.Error("expected error for invalid tier value")
	}
}
