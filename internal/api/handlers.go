package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppiankov/credence/internal/job"
	"github.com/ppiankov/credence/internal/model"
)

// maxRequestBody bounds the analyze request body (pasted article text).
const maxRequestBody = 1 << 20

// submitResponse acknowledges an accepted analysis request.
type submitResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleAnalyze accepts a submission and returns a request ID immediately;
// the analysis runs in the background.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var input model.AnalysisInput
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, string(model.KindInvalidInput), "request body is not valid JSON")
		return
	}

	j, err := s.engine.Submit(input)
	if err != nil {
		ae := model.AsAnalysisError(err)
		status := http.StatusInternalServerError
		if ae.Kind == model.KindInvalidInput {
			status = http.StatusBadRequest
		}
		writeError(w, status, string(ae.Kind), ae.Message)
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		RequestID: j.ID,
		Status:    string(j.Status),
	})
}

// handleGetJob returns the current snapshot of a job: its status while
// running, the full report once completed, the structured error if it failed.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	snap, err := s.engine.Poll(id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NotFound", "unknown or expired request id")
			return
		}
		writeError(w, http.StatusInternalServerError, string(model.KindInternalFault), "failed to look up job")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}
