package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/job"
	"github.com/ppiankov/credence/internal/model"
)

type fakeIngester struct {
	article *model.ArticleContent
	err     error
}

func (f *fakeIngester) Resolve(ctx context.Context, input model.AnalysisInput) (*model.ArticleContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.article, nil
}

type fakeDeconstructor struct {
	claims []model.Claim
	bias   model.BiasReport
	err    error
}

func (f *fakeDeconstructor) Deconstruct(ctx context.Context, text string) ([]model.Claim, model.BiasReport, error) {
	if f.err != nil {
		return nil, model.BiasReport{}, f.err
	}
	return f.claims, f.bias, nil
}

type fakeGatherer struct {
	degradeAll bool
	calls      int32
}

func (f *fakeGatherer) Gather(ctx context.Context, claims []model.Claim) []model.EvidenceBundle {
	atomic.AddInt32(&f.calls, 1)
	bundles := make([]model.EvidenceBundle, len(claims))
	for i := range claims {
		bundles[i] = model.EvidenceBundle{ClaimIndex: i, Degraded: f.degradeAll}
	}
	return bundles
}

type fakeSynthesizer struct {
	verdict model.Verdict
	calls   int32
}

func (f *fakeSynthesizer) Run(ctx context.Context, claims []model.Claim, bundles []model.EvidenceBundle) []model.ClaimVerdict {
	atomic.AddInt32(&f.calls, 1)
	verdicts := make([]model.ClaimVerdict, len(claims))
	for i, c := range claims {
		verdicts[i] = model.ClaimVerdict{
			Index:    c.Index,
			Claim:    c.Text,
			Verdict:  f.verdict,
			Degraded: bundles[i].Degraded,
		}
	}
	return verdicts
}

func newTestStore(t *testing.T) *job.Store {
	t.Helper()
	return job.NewStore(time.Minute)
}

func waitTerminal(t *testing.T, store *job.Store, id string) model.AnalysisJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, err := store.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if j.Status.Terminal() {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return model.AnalysisJob{}
}

func TestPipeline_CompletesWithScore(t *testing.T) {
	store := newTestStore(t)
	p := New(
		&fakeIngester{article: &model.ArticleContent{Text: "body", Domain: "reuters.com", Tier: model.Tier1, SourceURL: "https://reuters.com/a"}},
		&fakeDeconstructor{
			claims: []model.Claim{{Index: 0, Text: "c0"}, {Index: 1, Text: "c1"}},
			bias:   model.BiasReport{Summary: "neutral reporting", Rating: 1},
		},
		&fakeGatherer{},
		&fakeSynthesizer{verdict: model.VerdictWellSupported},
		store,
		time.Minute,
	)

	j := store.Create(model.AnalysisInput{URL: "https://reuters.com/a"})
	p.Run(j.ID)

	got := waitTerminal(t, store, j.ID)
	if got.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s (error: %v)", got.Status, got.Error)
	}
	if got.Result == nil {
		t.Fatal("completed job has no result")
	}
	if got.CompletedAt == nil {
		t.Error("completed job missing completion timestamp")
	}

	r := got.Result
	// 0.3*100 + 0.5*100 + 0.2*90 = 98
	if r.FinalScore != 98 {
		t.Errorf("expected score 98, got %d (components %+v)", r.FinalScore, r.Components)
	}
	if r.PublisherTier != model.Tier1 {
		t.Errorf("expected tier 1, got %q", r.PublisherTier)
	}
	if r.Bias.Band != model.BiasMinimal {
		t.Errorf("expected minimal band, got %q", r.Bias.Band)
	}
	if len(r.Claims) != 2 {
		t.Errorf("expected 2 claim verdicts, got %d", len(r.Claims))
	}
	if r.RequestID != j.ID {
		t.Errorf("report request id %q does not match job %q", r.RequestID, j.ID)
	}
	if r.SourceURL != "https://reuters.com/a" {
		t.Errorf("source url lost: %q", r.SourceURL)
	}
	if r.ProcessingMS < 0 {
		t.Errorf("negative processing time %d", r.ProcessingMS)
	}
}

func TestPipeline_IngestionFailureIsTerminal(t *testing.T) {
	store := newTestStore(t)
	p := New(
		&fakeIngester{err: model.NewAnalysisError(model.KindIngestionFailed, "fetch refused")},
		&fakeDeconstructor{},
		&fakeGatherer{},
		&fakeSynthesizer{},
		store,
		time.Minute,
	)

	j := store.Create(model.AnalysisInput{URL: "https://unreachable.example.com"})
	p.Run(j.ID)

	got := waitTerminal(t, store, j.ID)
	if got.Status != model.StatusError {
		t.Fatalf("expected error status, got %s", got.Status)
	}
	if got.Error == nil || got.Error.Kind != model.KindIngestionFailed {
		t.Errorf("expected IngestionFailed, got %+v", got.Error)
	}
	if got.Result != nil {
		t.Error("failed job should carry no result")
	}
}

func TestPipeline_DeconstructionFailureIsTerminal(t *testing.T) {
	store := newTestStore(t)
	p := New(
		&fakeIngester{article: &model.ArticleContent{Text: "body", Tier: model.TierUnknown}},
		&fakeDeconstructor{err: model.NewAnalysisError(model.KindDeconstructionFailed, "extractor gave up")},
		&fakeGatherer{},
		&fakeSynthesizer{},
		store,
		time.Minute,
	)

	j := store.Create(model.AnalysisInput{Text: "some text"})
	p.Run(j.ID)

	got := waitTerminal(t, store, j.ID)
	if got.Status != model.StatusError {
		t.Fatalf("expected error status, got %s", got.Status)
	}
	if got.Error.Kind != model.KindDeconstructionFailed {
		t.Errorf("expected DeconstructionFailed, got %q", got.Error.Kind)
	}
}

func TestPipeline_ZeroClaimsShortCircuits(t *testing.T) {
	store := newTestStore(t)
	gather := &fakeGatherer{}
	synth := &fakeSynthesizer{}
	p := New(
		&fakeIngester{article: &model.ArticleContent{Text: "an opinion piece", Tier: model.TierUnknown}},
		&fakeDeconstructor{bias: model.BiasReport{Summary: "moderate framing", Rating: 3}},
		gather,
		synth,
		store,
		time.Minute,
	)

	j := store.Create(model.AnalysisInput{Text: "an opinion piece"})
	p.Run(j.ID)

	got := waitTerminal(t, store, j.ID)
	if got.Status != model.StatusCompleted {
		t.Fatalf("zero claims should still complete, got %s", got.Status)
	}

	r := got.Result
	if len(r.Claims) != 0 {
		t.Errorf("expected no claim verdicts, got %d", len(r.Claims))
	}
	// 0.3*50 + 0.5*50 + 0.2*60 = 52
	if r.Components.Evidence != 50 {
		t.Errorf("zero-claims evidence sub-score should be neutral 50, got %d", r.Components.Evidence)
	}
	if r.FinalScore != 52 {
		t.Errorf("expected score 52, got %d", r.FinalScore)
	}

	if atomic.LoadInt32(&gather.calls) != 0 {
		t.Error("gatherer should not run with zero claims")
	}
	if atomic.LoadInt32(&synth.calls) != 0 {
		t.Error("synthesizer should not run with zero claims")
	}
}

func TestPipeline_DegradedEvidenceStillCompletes(t *testing.T) {
	store := newTestStore(t)
	p := New(
		&fakeIngester{article: &model.ArticleContent{Text: "body", Tier: model.Tier2}},
		&fakeDeconstructor{
			claims: []model.Claim{{Index: 0, Text: "c0"}},
			bias:   model.BiasReport{Rating: 2},
		},
		&fakeGatherer{degradeAll: true},
		&fakeSynthesizer{verdict: model.VerdictLacksEvidence},
		store,
		time.Minute,
	)

	j := store.Create(model.AnalysisInput{Text: "body"})
	p.Run(j.ID)

	got := waitTerminal(t, store, j.ID)
	if got.Status != model.StatusCompleted {
		t.Fatalf("degraded evidence must not fail the job, got %s", got.Status)
	}
	if !got.Result.Claims[0].Degraded {
		t.Error("degradation flag lost on the verdict")
	}
}

func TestEngine_SubmitRejectsInvalidInput(t *testing.T) {
	store := newTestStore(t)
	e := NewEngine(New(&fakeIngester{}, &fakeDeconstructor{}, &fakeGatherer{}, &fakeSynthesizer{}, store, time.Minute), store)

	cases := []model.AnalysisInput{
		{},
		{URL: "https://a.example.com", Text: "both"},
	}
	for _, input := range cases {
		if _, err := e.Submit(input); err == nil {
			t.Errorf("expected validation error for %+v", input)
		}
	}
	if store.Len() != 0 {
		t.Errorf("invalid submissions must not create jobs, store has %d", store.Len())
	}
}

func TestEngine_SubmitAndPoll(t *testing.T) {
	store := newTestStore(t)
	p := New(
		&fakeIngester{article: &model.ArticleContent{Text: "body", Tier: model.Tier1}},
		&fakeDeconstructor{claims: []model.Claim{{Index: 0, Text: "c0"}}, bias: model.BiasReport{Rating: 1}},
		&fakeGatherer{},
		&fakeSynthesizer{verdict: model.VerdictWellSupported},
		store,
		time.Minute,
	)
	e := NewEngine(p, store)

	j, err := e.Submit(model.AnalysisInput{Text: "body"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if j.ID == "" {
		t.Fatal("submission returned no request id")
	}
	if j.Status != model.StatusPending {
		t.Errorf("fresh job should be pending, got %s", j.Status)
	}

	got := waitTerminal(t, store, j.ID)
	if got.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}

	snap, err := e.Poll(j.ID)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if snap.Result == nil {
		t.Error("poll after completion should include the report")
	}
}

func TestEngine_PollUnknownJob(t *testing.T) {
	store := newTestStore(t)
	e := NewEngine(New(&fakeIngester{}, &fakeDeconstructor{}, &fakeGatherer{}, &fakeSynthesizer{}, store, time.Minute), store)

	if _, err := e.Poll("no-such-job"); !errors.Is(err, job.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
