package model

import "fmt"

// ErrorKind classifies analysis failures. Per-claim evidence and synthesis
// failures are absorbed as degradations and never appear here.
type ErrorKind string

const (
	KindInvalidInput         ErrorKind = "InvalidInput"
	KindIngestionFailed      ErrorKind = "IngestionFailed"
	KindIngestionTimeout     ErrorKind = "IngestionTimeout"
	KindDeconstructionFailed ErrorKind = "DeconstructionFailed"
	KindInternalFault        ErrorKind = "InternalFault"
)

// AnalysisError is the structured terminal error attached to a failed job.
type AnalysisError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewAnalysisError builds an AnalysisError with a formatted message.
func NewAnalysisError(kind ErrorKind, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsAnalysisError normalizes any error into an AnalysisError, wrapping
// unclassified errors as internal faults.
func AsAnalysisError(err error) *AnalysisError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AnalysisError); ok {
		return ae
	}
	return NewAnalysisError(KindInternalFault, "%v", err)
}
