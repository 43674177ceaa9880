// Package pipeline orchestrates one analysis job through its stages:
// ingestion, deconstruction, evidence gathering, synthesis, scoring. The
// orchestrator is the single writer of its job's record; every run ends in a
// terminal state no matter which stage misbehaves.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/credence/internal/job"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/score"
)

// Ingester resolves a submission into cleaned article content.
type Ingester interface {
	Resolve(ctx context.Context, input model.AnalysisInput) (*model.ArticleContent, error)
}

// Deconstructor extracts claims and a bias report from article text.
type Deconstructor interface {
	Deconstruct(ctx context.Context, text string) ([]model.Claim, model.BiasReport, error)
}

// EvidenceGatherer collects evidence bundles, one per claim, index-aligned.
type EvidenceGatherer interface {
	Gather(ctx context.Context, claims []model.Claim) []model.EvidenceBundle
}

// Synthesizer assigns verdicts, one per claim, index-aligned.
type Synthesizer interface {
	Run(ctx context.Context, claims []model.Claim, bundles []model.EvidenceBundle) []model.ClaimVerdict
}

// Pipeline wires the stages over a job store.
type Pipeline struct {
	ingest      Ingester
	deconstruct Deconstructor
	gather      EvidenceGatherer
	synth       Synthesizer
	store       *job.Store
	jobTimeout  time.Duration
	verbose     bool
}

// New creates a pipeline. jobTimeout bounds one complete run.
func New(ingest Ingester, deconstruct Deconstructor, gather EvidenceGatherer, synth Synthesizer, store *job.Store, jobTimeout time.Duration) *Pipeline {
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}
	return &Pipeline{
		ingest:      ingest,
		deconstruct: deconstruct,
		gather:      gather,
		synth:       synth,
		store:       store,
		jobTimeout:  jobTimeout,
	}
}

// SetVerbose enables stage progress output on stderr.
func (p *Pipeline) SetVerbose(v bool) {
	p.verbose = v
}

// Run drives the job to a terminal state. It is safe to call in a goroutine;
// all failures land on the job record rather than escaping.
func (p *Pipeline) Run(jobID string) {
	started := time.Now()

	j, err := p.store.Get(jobID)
	if err != nil {
		// Evicted or never created; nothing to record against.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	if err := p.store.Update(jobID, func(j *model.AnalysisJob) {
		j.Status = model.StatusRunning
	}); err != nil {
		return
	}

	report, runErr := p.analyze(ctx, jobID, j.Input)
	if runErr != nil {
		p.fail(jobID, runErr)
		return
	}

	report.RequestID = jobID
	report.ProcessingTime = time.Since(started)
	report.ProcessingMS = report.ProcessingTime.Milliseconds()

	if err := p.store.Update(jobID, func(j *model.AnalysisJob) {
		j.Status = model.StatusCompleted
		j.Result = report
	}); err != nil && p.verbose {
		fmt.Fprintf(os.Stderr, "job %s: recording result failed: %v\n", jobID, err)
	}
}

// analyze runs the stages in order and assembles the report.
func (p *Pipeline) analyze(ctx context.Context, jobID string, input model.AnalysisInput) (*model.AnalysisReport, error) {
	p.progress(jobID, "ingesting")
	article, err := p.ingest.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	p.progress(jobID, "deconstructing")
	claims, bias, err := p.deconstruct.Deconstruct(ctx, article.Text)
	if err != nil {
		return nil, err
	}
	bias.Band = bias.DeriveBand()

	// Zero claims is a valid outcome: nothing to gather or synthesize, the
	// evidence sub-score falls back to neutral.
	var verdicts []model.ClaimVerdict
	if len(claims) > 0 {
		p.progress(jobID, "gathering evidence")
		bundles := p.gather.Gather(ctx, claims)

		p.progress(jobID, "synthesizing verdicts")
		verdicts = p.synth.Run(ctx, claims, bundles)
	}

	final, components := score.Compute(article.Tier, verdicts, bias.Band)

	return &model.AnalysisReport{
		FinalScore:    final,
		Components:    components,
		PublisherTier: article.Tier,
		Bias:          bias,
		Claims:        verdicts,
		SourceURL:     article.SourceURL,
	}, nil
}

func (p *Pipeline) fail(jobID string, cause error) {
	ae := model.AsAnalysisError(cause)
	if p.verbose {
		fmt.Fprintf(os.Stderr, "job %s: failed: %v\n", jobID, ae)
	}
	_ = p.store.Update(jobID, func(j *model.AnalysisJob) {
		j.Status = model.StatusError
		j.Error = ae
	})
}

func (p *Pipeline) progress(jobID, stage string) {
	if p.verbose {
		fmt.Fprintf(os.Stderr, "job %s: %s\n", jobID, stage)
	}
}
