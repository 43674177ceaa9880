package model

import "time"

// JobStatus is the small terminal state machine every analysis job moves
// through: pending -> running -> completed | error. No state is re-entered.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusError     JobStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// AnalysisInput is a submission: exactly one of URL or Text must be set.
// Domain may accompany Text when the caller knows the publisher.
type AnalysisInput struct {
	URL    string `json:"url,omitempty"`
	Text   string `json:"text,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// Validate enforces the exactly-one-of contract.
func (in AnalysisInput) Validate() error {
	if in.URL == "" && in.Text == "" {
		return NewAnalysisError(KindInvalidInput, "either url or text is required")
	}
	if in.URL != "" && in.Text != "" {
		return NewAnalysisError(KindInvalidInput, "url and text are mutually exclusive")
	}
	return nil
}

// AnalysisJob is one in-flight or completed analysis request. It is created
// by submission, mutated only by its orchestrator run, and read by polling.
type AnalysisJob struct {
	ID          string          `json:"request_id"`
	Status      JobStatus       `json:"status"`
	Input       AnalysisInput   `json:"input"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      *AnalysisReport `json:"result,omitempty"`
	Error       *AnalysisError  `json:"error,omitempty"`
}
