package evidence

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/worker"
)

// Gatherer fans out one evidence task per claim and fans the results back in
// as an ordered slice of bundles. A provider failure degrades that claim's
// bundle instead of failing the stage: scoring on partial evidence beats no
// score at all.
type Gatherer struct {
	factCheck    FactCheckProvider
	search       CorroborationProvider
	trusted      []string
	width        int
	callTimeout  time.Duration
	stageTimeout time.Duration
	verbose      bool
}

// NewGatherer creates the stage. width bounds concurrent per-claim tasks.
func NewGatherer(factCheck FactCheckProvider, search CorroborationProvider, trusted []string, width int, callTimeout, stageTimeout time.Duration) *Gatherer {
	if width <= 0 {
		width = 1
	}
	return &Gatherer{
		factCheck:    factCheck,
		search:       search,
		trusted:      trusted,
		width:        width,
		callTimeout:  callTimeout,
		stageTimeout: stageTimeout,
	}
}

// SetVerbose enables per-claim progress output on stderr.
func (g *Gatherer) SetVerbose(v bool) {
	g.verbose = v
}

// Gather collects evidence for every claim. The returned slice always has
// exactly len(claims) entries, bundle i belonging to claim index i. Claims
// whose task never ran (stage timeout) get an empty degraded bundle.
func (g *Gatherer) Gather(ctx context.Context, claims []model.Claim) []model.EvidenceBundle {
	bundles := make([]model.EvidenceBundle, len(claims))
	for i := range bundles {
		bundles[i] = model.EvidenceBundle{ClaimIndex: i, Degraded: true}
	}
	if len(claims) == 0 {
		return bundles
	}

	stageCtx := ctx
	var cancel context.CancelFunc
	if g.stageTimeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, g.stageTimeout)
		defer cancel()
	}

	pool := worker.NewPool(stageCtx, g.width)
	pool.Start()
	for _, claim := range claims {
		pool.Submit(&gatherTask{gatherer: g, claim: claim})
	}

	for _, res := range pool.Wait() {
		gr, ok := res.(*gatherResult)
		if !ok {
			continue
		}
		if gr.bundle.ClaimIndex >= 0 && gr.bundle.ClaimIndex < len(bundles) {
			bundles[gr.bundle.ClaimIndex] = gr.bundle
		}
	}

	return bundles
}

// gatherTask is the per-claim unit of work.
type gatherTask struct {
	gatherer *Gatherer
	claim    model.Claim
}

// gatherResult carries one claim's bundle out of the pool.
type gatherResult struct {
	bundle model.EvidenceBundle
	err    error
}

func (r *gatherResult) GetError() error { return r.err }

// Execute queries both providers concurrently, each under its own timeout.
// Failures are absorbed into the bundle's Degraded flag.
func (t *gatherTask) Execute(ctx context.Context) worker.Result {
	g := t.gatherer
	bundle := model.EvidenceBundle{ClaimIndex: t.claim.Index}

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		defer cancel()

		records, err := g.factCheck.Query(callCtx, t.claim.Text)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			bundle.Degraded = true
			if g.verbose {
				fmt.Fprintf(os.Stderr, "claim %d: fact-check lookup failed: %v\n", t.claim.Index, err)
			}
			return
		}
		bundle.FactChecks = records
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		defer cancel()

		snippets, err := g.search.Search(callCtx, t.claim.Text, g.trusted)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			bundle.Degraded = true
			if g.verbose {
				fmt.Fprintf(os.Stderr, "claim %d: corroboration search failed: %v\n", t.claim.Index, err)
			}
			return
		}
		bundle.Snippets = snippets
	}()

	wg.Wait()

	return &gatherResult{bundle: bundle}
}
