package evidence

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

type fakeFactCheck struct {
	records map[string][]model.FactCheckRecord
	failOn  map[string]bool
	delay   time.Duration
	calls   int32
}

func (f *fakeFactCheck) Query(ctx context.Context, claimText string) ([]model.FactCheckRecord, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failOn[claimText] {
		return nil, errors.New("fact-check API down")
	}
	return f.records[claimText], nil
}

type fakeSearch struct {
	snippets map[string][]model.Snippet
	failOn   map[string]bool
}

func (f *fakeSearch) Search(ctx context.Context, claimText string, trusted []string) ([]model.Snippet, error) {
	if f.failOn[claimText] {
		return nil, errors.New("search unavailable")
	}
	return f.snippets[claimText], nil
}

func claimsFromTexts(texts ...string) []model.Claim {
	claims := make([]model.Claim, len(texts))
	for i, text := range texts {
		claims[i] = model.Claim{Index: i, Text: text}
	}
	return claims
}

func TestGatherer_OrderedBundles(t *testing.T) {
	fc := &fakeFactCheck{records: map[string][]model.FactCheckRecord{
		"claim b": {{Rating: "True", Source: "Checker"}},
	}}
	search := &fakeSearch{snippets: map[string][]model.Snippet{
		"claim a": {{Domain: "reuters.com", Title: "coverage"}},
	}}

	g := NewGatherer(fc, search, []string{"reuters.com"}, 3, time.Second, 5*time.Second)

	claims := claimsFromTexts("claim a", "claim b", "claim c")
	bundles := g.Gather(context.Background(), claims)

	if len(bundles) != 3 {
		t.Fatalf("expected 3 bundles, got %d", len(bundles))
	}
	for i, b := range bundles {
		if b.ClaimIndex != i {
			t.Errorf("bundle %d has claim index %d", i, b.ClaimIndex)
		}
		if b.Degraded {
			t.Errorf("bundle %d unexpectedly degraded", i)
		}
	}

	if len(bundles[0].Snippets) != 1 {
		t.Errorf("claim a: expected 1 snippet, got %d", len(bundles[0].Snippets))
	}
	if len(bundles[1].FactChecks) != 1 {
		t.Errorf("claim b: expected 1 fact-check, got %d", len(bundles[1].FactChecks))
	}
	if !bundles[2].Empty() {
		t.Errorf("claim c: expected empty bundle")
	}
}

func TestGatherer_ProviderFailureDegradesOnlyThatClaim(t *testing.T) {
	fc := &fakeFactCheck{
		failOn:  map[string]bool{"bad claim": true},
		records: map[string][]model.FactCheckRecord{"good claim": {{Rating: "True"}}},
	}
	search := &fakeSearch{snippets: map[string][]model.Snippet{
		"bad claim": {{Domain: "apnews.com", Title: "still found"}},
	}}

	g := NewGatherer(fc, search, nil, 2, time.Second, 5*time.Second)

	bundles := g.Gather(context.Background(), claimsFromTexts("good claim", "bad claim"))

	if bundles[0].Degraded {
		t.Error("healthy claim should not be degraded")
	}
	if !bundles[1].Degraded {
		t.Error("claim with failed provider should be degraded")
	}
	// Partial evidence survives alongside the degraded flag
	if len(bundles[1].Snippets) != 1 {
		t.Errorf("expected partial results to survive, got %d snippets", len(bundles[1].Snippets))
	}
}

func TestGatherer_BothProvidersFailing(t *testing.T) {
	fc := &fakeFactCheck{failOn: map[string]bool{"claim": true}}
	search := &fakeSearch{failOn: map[string]bool{"claim": true}}

	g := NewGatherer(fc, search, nil, 1, time.Second, 5*time.Second)

	bundles := g.Gather(context.Background(), claimsFromTexts("claim"))
	if !bundles[0].Degraded {
		t.Error("expected degraded bundle")
	}
	if !bundles[0].Empty() {
		t.Error("expected empty bundle")
	}
}

func TestGatherer_StageTimeoutLeavesDegradedGaps(t *testing.T) {
	fc := &fakeFactCheck{delay: 500 * time.Millisecond}
	search := &fakeSearch{}

	// Width 1 forces sequential tasks; the stage deadline expires before
	// most of them run.
	g := NewGatherer(fc, search, nil, 1, time.Second, 50*time.Millisecond)

	claims := claimsFromTexts("c0", "c1", "c2", "c3", "c4")
	bundles := g.Gather(context.Background(), claims)

	if len(bundles) != len(claims) {
		t.Fatalf("expected %d bundles regardless of timeout, got %d", len(claims), len(bundles))
	}

	degraded := 0
	for i, b := range bundles {
		if b.ClaimIndex != i {
			t.Errorf("bundle %d has claim index %d", i, b.ClaimIndex)
		}
		if b.Degraded {
			degraded++
		}
	}
	if degraded == 0 {
		t.Error("expected at least one degraded bundle after stage timeout")
	}
}

func TestGatherer_ZeroClaims(t *testing.T) {
	fc := &fakeFactCheck{}
	g := NewGatherer(fc, &fakeSearch{}, nil, 2, time.Second, time.Second)

	bundles := g.Gather(context.Background(), nil)
	if len(bundles) != 0 {
		t.Errorf("expected no bundles, got %d", len(bundles))
	}
	if atomic.LoadInt32(&fc.calls) != 0 {
		t.Errorf("providers should not be called with zero claims")
	}
}
