package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DailyDigest/internal/domain"
)

type fakeRunner struct {
	result domain.RunResult
	err    error
	gotNow time.Time
}

func (f *fakeRunner) Run(_ context.Context, now time.Time) (domain.RunResult, error) {
	f.gotNow = now
	return f.result, f.err
}

func newTestServer(runner Runner) *Server {
	s := New(":0", runner, nil)
	s.now = func() time.Time {
		return time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	}
	return s
}

func TestTriggerSuccess(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: domain.RunResult{
		LinkCount:    5,
		ArticleCount: 3,
		Filename:     "ai-news-2026-03-10.md",
		Preview:      "# Daily AI News...",
	}}
	router := newTestServer(runner).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success      bool   `json:"success"`
		LinkCount    int    `json:"linkCount"`
		ArticleCount int    `json:"articleCount"`
		Filename     string `json:"filename"`
		Summary      string `json:"summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.LinkCount != 5 || resp.ArticleCount != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Filename != "ai-news-2026-03-10.md" {
		t.Fatalf("unexpected filename: %q", resp.Filename)
	}
	if resp.Summary != "# Daily AI News..." {
		t.Fatalf("unexpected summary: %q", resp.Summary)
	}
	if runner.gotNow.IsZero() {
		t.Fatal("runner did not receive the injected instant")
	}
}

func TestTriggerFailureReturns500(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: fmt.Errorf("generate digest: gemini error 503")}
	router := newTestServer(runner).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}
	if resp.Error != "generate digest: gemini error 503" {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
}

func TestTriggerPreflight(t *testing.T) {
	t.Parallel()

	router := newTestServer(&fakeRunner{}).Router()

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected permissive CORS, got %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty preflight body, got %q", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestServer(&fakeRunner{}).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
