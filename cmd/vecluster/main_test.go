package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecluster/internal/config"
	"github.com/kailas-cloud/vecluster/internal/domain"
	logpkg "github.com/kailas-cloud/vecluster/internal/logger"
	openaiSum "github.com/kailas-cloud/vecluster/internal/transport/openai"
)

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "internal_error" || body["message"] != "internal error" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestWideEventMiddleware_RequestID(t *testing.T) {
	sentinel := zap.NewExample()
	var sawLogger bool
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(zap.NewNop()))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sawLogger = logpkg.FromContext(r.Context(), sentinel) != sentinel
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
	if !sawLogger {
		t.Error("request logger not in context")
	}
}

func TestBuildSummarizer_UnconfiguredUsesRules(t *testing.T) {
	remote := openaiSum.NewSummarizer(&openaiSum.Config{})
	s := buildSummarizer(config.SummaryConfig{Provider: "openai", Model: "gpt-4o-mini"}, remote, nil, zap.NewNop())

	sum, err := s.Summarize(context.Background(), []string{"the hourly price is expensive"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Source != domain.SourceRuleBased || sum.Text == "" {
		t.Errorf("summary = %+v, want rule-based", sum)
	}
}
