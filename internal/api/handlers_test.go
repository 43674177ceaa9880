package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/job"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/pipeline"
)

type stubIngester struct{}

func (stubIngester) Resolve(ctx context.Context, input model.AnalysisInput) (*model.ArticleContent, error) {
	return &model.ArticleContent{Text: "body", Tier: model.Tier1}, nil
}

type stubDeconstructor struct{}

func (stubDeconstructor) Deconstruct(ctx context.Context, text string) ([]model.Claim, model.BiasReport, error) {
	return []model.Claim{{Index: 0, Text: "c0"}}, model.BiasReport{Rating: 1}, nil
}

type stubGatherer struct{}

func (stubGatherer) Gather(ctx context.Context, claims []model.Claim) []model.EvidenceBundle {
	return make([]model.EvidenceBundle, len(claims))
}

type stubSynthesizer struct{}

func (stubSynthesizer) Run(ctx context.Context, claims []model.Claim, bundles []model.EvidenceBundle) []model.ClaimVerdict {
	verdicts := make([]model.ClaimVerdict, len(claims))
	for i, c := range claims {
		verdicts[i] = model.ClaimVerdict{Index: c.Index, Claim: c.Text, Verdict: model.VerdictWellSupported}
	}
	return verdicts
}

func newTestServer(t *testing.T) (*Server, *job.Store) {
	t.Helper()
	store := job.NewStore(time.Minute)
	p := pipeline.New(stubIngester{}, stubDeconstructor{}, stubGatherer{}, stubSynthesizer{}, store, time.Minute)
	return NewServer(pipeline.NewEngine(p, store)), store
}

func TestAnalyze_AcceptsSubmission(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"text":"some article"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp submitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.RequestID == "" {
		t.Error("missing request_id")
	}
	if resp.Status != string(model.StatusPending) {
		t.Errorf("expected pending, got %q", resp.Status)
	}
}

func TestAnalyze_RejectsInvalidInput(t *testing.T) {
	server, store := newTestServer(t)

	cases := []string{
		`{}`,
		`{"url":"https://a.example.com","text":"both"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}

		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("body %q: bad error envelope: %v", body, err)
		}
		if resp.Error.Code != string(model.KindInvalidInput) {
			t.Errorf("body %q: expected InvalidInput code, got %q", body, resp.Error.Code)
		}
	}

	if store.Len() != 0 {
		t.Errorf("rejected submissions must not create jobs, store has %d", store.Len())
	}
}

func TestGetJob_ReturnsReportWhenDone(t *testing.T) {
	server, store := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"text":"article"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit failed: %d", rec.Code)
	}
	var submitted submitResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &submitted)

	deadline := time.Now().Add(2 * time.Second)
	var snap model.AnalysisJob
	for time.Now().Before(deadline) {
		j, err := store.Get(submitted.RequestID)
		if err != nil {
			t.Fatalf("store lookup failed: %v", err)
		}
		if j.Status.Terminal() {
			snap = j
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !snap.Status.Terminal() {
		t.Fatal("job never finished")
	}

	pollReq := httptest.NewRequest(http.MethodGet, "/api/v1/analyze/"+submitted.RequestID, nil)
	pollRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(pollRec, pollReq)

	if pollRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", pollRec.Code)
	}

	var polled model.AnalysisJob
	if err := json.Unmarshal(pollRec.Body.Bytes(), &polled); err != nil {
		t.Fatalf("bad poll body: %v", err)
	}
	if polled.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s", polled.Status)
	}
	if polled.Result == nil {
		t.Fatal("completed poll missing result")
	}
	if polled.Result.FinalScore != 98 {
		t.Errorf("expected score 98, got %d", polled.Result.FinalScore)
	}
}

func TestGetJob_UnknownID(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyze/does-not-exist", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error envelope: %v", err)
	}
	if resp.Error.Code != "NotFound" {
		t.Errorf("expected NotFound code, got %q", resp.Error.Code)
	}
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
