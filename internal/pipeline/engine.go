package pipeline

import (
	"github.com/ppiankov/credence/internal/job"
	"github.com/ppiankov/credence/internal/model"
)

// Engine is the submit/poll surface over the pipeline. Submit returns as
// soon as the job is registered; the analysis runs in the background.
type Engine struct {
	pipeline *Pipeline
	store    *job.Store
}

// NewEngine creates the engine.
func NewEngine(p *Pipeline, store *job.Store) *Engine {
	return &Engine{pipeline: p, store: store}
}

// Submit validates the input, registers a pending job and starts its run.
// Validation failures are returned synchronously and never create a job.
func (e *Engine) Submit(input model.AnalysisInput) (model.AnalysisJob, error) {
	if err := input.Validate(); err != nil {
		return model.AnalysisJob{}, err
	}
	j := e.store.Create(input)
	go e.pipeline.Run(j.ID)
	return j, nil
}

// Poll returns the current snapshot of a job, or job.ErrNotFound.
func (e *Engine) Poll(id string) (model.AnalysisJob, error) {
	return e.store.Get(id)
}
