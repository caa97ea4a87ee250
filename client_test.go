package vecluster

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	domcluster "github.com/kailas-cloud/vecluster/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/vecluster/internal/domain/document"
)

var notes = []string{
	"I need to trust the sitter and a background check matters for safety",
	"Safety and trust come first, background check and verified references",
	"Communication is key, I want updates and messages during the day",
	"Better communication please, send updates and messages about the kids",
	"Scheduling is hard, availability changes and booking last minute fails",
	"Flexible scheduling matters, availability for booking on weekends",
	"The cost is too high, hourly price and fees are expensive",
	"Price and cost worry me, fees add up and it is expensive",
}

type mockSummarizer struct {
	calls atomic.Int32
	fn    func(ctx context.Context, texts []string) (SummaryResult, error)
}

func (m *mockSummarizer) Summarize(ctx context.Context, texts []string) (SummaryResult, error) {
	m.calls.Add(1)
	return m.fn(ctx, texts)
}

type failingUseCase struct{ err error }

func (f failingUseCase) Cluster(context.Context, []domdoc.Document, int) (*domcluster.Result, error) {
	return nil, f.err
}

func TestClient_Offline(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.ClusterTexts(context.Background(), notes, 4)
	if err != nil {
		t.Fatalf("ClusterTexts: %v", err)
	}
	if len(res.Clusters) != 4 {
		t.Fatalf("clusters = %d, want 4", len(res.Clusters))
	}
	last := res.Clusters[3].DataPoints
	if len(last) != 3 || last[0].ID != "point_0" || last[1].ID != "point_1" || last[2].ID != "point_7" {
		t.Errorf("last cluster = %+v", last)
	}
	for _, cl := range res.Clusters {
		if cl.Summary == "" {
			t.Errorf("cluster %d has no summary", cl.ID)
		}
	}
	if res.Usage != (Usage{Fallbacks: 4}) {
		t.Errorf("usage = %+v, want 4 rule-based summaries", res.Usage)
	}
	if res.Metadata.TotalPoints != 8 || res.Metadata.Timestamp.IsZero() {
		t.Errorf("metadata = %+v", res.Metadata)
	}
}

func TestClient_DataPointFields(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.Cluster(context.Background(), []DataPoint{
		{ID: "iv-7", Content: "Fees are too expensive", Name: "Sam", Type: "interview"},
		{Content: "The hourly price is high"},
	}, 1)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	got := res.Clusters[0].DataPoints
	if got[0] != (DataPoint{ID: "iv-7", Content: "Fees are too expensive", Name: "Sam", Type: "interview"}) {
		t.Errorf("first point = %+v", got[0])
	}
	if got[1].ID != "point_1" {
		t.Errorf("default id = %q, want point_1", got[1].ID)
	}
}

func TestClient_InvalidInput(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.ClusterTexts(context.Background(), nil, 2); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty input: got %v, want ErrInvalidInput", err)
	}

	long := DataPoint{ID: strings.Repeat("x", 300), Content: "text"}
	if _, err := c.Cluster(context.Background(), []DataPoint{long}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("long id: got %v, want ErrInvalidInput", err)
	}
}

func TestClient_CustomSummarizer(t *testing.T) {
	mock := &mockSummarizer{fn: func(_ context.Context, texts []string) (SummaryResult, error) {
		return SummaryResult{Text: "custom label", TotalTokens: 12}, nil
	}}
	c, err := New(WithSummarizer(mock), WithSummaryConcurrency(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.ClusterTexts(context.Background(), notes, 3)
	if err != nil {
		t.Fatalf("ClusterTexts: %v", err)
	}
	for _, cl := range res.Clusters {
		if cl.Summary != "custom label" {
			t.Errorf("cluster %d summary = %q", cl.ID, cl.Summary)
		}
	}
	if res.Usage != (Usage{SummaryTokens: 36, Remote: 3}) {
		t.Errorf("usage = %+v", res.Usage)
	}
	if mock.calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", mock.calls.Load())
	}
}

func TestClient_CustomSummarizerFallsBack(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context, texts []string) (SummaryResult, error)
	}{
		{"error", func(context.Context, []string) (SummaryResult, error) {
			return SummaryResult{}, errors.New("provider down")
		}},
		{"empty text", func(context.Context, []string) (SummaryResult, error) {
			return SummaryResult{TotalTokens: 3}, nil
		}},
		{"timeout", func(ctx context.Context, _ []string) (SummaryResult, error) {
			<-ctx.Done()
			return SummaryResult{}, ctx.Err()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(
				WithSummarizer(&mockSummarizer{fn: tt.fn}),
				WithSummaryTimeout(20*time.Millisecond),
			)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			res, err := c.ClusterTexts(context.Background(), notes[:2], 1)
			if err != nil {
				t.Fatalf("ClusterTexts must not fail on summary errors: %v", err)
			}
			if res.Usage.Fallbacks != 1 || res.Usage.Remote != 0 {
				t.Errorf("usage = %+v", res.Usage)
			}
			if !strings.Contains(res.Clusters[0].Summary, "trust") {
				t.Errorf("summary = %q, want the trust rule", res.Clusters[0].Summary)
			}
		})
	}
}

func TestClient_OpenAI(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"Parents worry. Build trust."},"finish_reason":"stop"}],` +
			`"usage":{"prompt_tokens":20,"completion_tokens":8,"total_tokens":28}}`))
	}))
	defer server.Close()

	c, err := New(WithOpenAI("sk-test", ""), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := c.ClusterTexts(context.Background(), notes[:2], 1)
	if err != nil {
		t.Fatalf("ClusterTexts: %v", err)
	}
	if res.Clusters[0].Summary != "Parents worry. Build trust." {
		t.Errorf("summary = %q", res.Clusters[0].Summary)
	}
	if res.Usage.SummaryTokens != 28 || res.Usage.Remote != 1 {
		t.Errorf("usage = %+v", res.Usage)
	}
	if gotModel != defaultModel {
		t.Errorf("model = %q, want %q", gotModel, defaultModel)
	}
}

func TestClient_ServiceError(t *testing.T) {
	c := &Client{svc: failingUseCase{err: ErrPipelinePanic}}
	_, err := c.ClusterTexts(context.Background(), []string{"a"}, 1)
	if !errors.Is(err, ErrPipelinePanic) {
		t.Fatalf("got %v, want ErrPipelinePanic", err)
	}
	if !strings.HasPrefix(err.Error(), "vecluster: ") {
		t.Errorf("error %q lacks package prefix", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	WithOpenAI("key", "gpt-4o").apply(cfg)
	WithBaseURL("http://localhost:8080/v1").apply(cfg)
	WithSummaryTimeout(3 * time.Second).apply(cfg)
	WithSummaryConcurrency(8).apply(cfg)
	WithVocabularySize(50).apply(cfg)
	WithMaxIterations(20).apply(cfg)

	if cfg.apiKey != "key" || cfg.model != "gpt-4o" || cfg.baseURL != "http://localhost:8080/v1" {
		t.Errorf("openai options = %+v", cfg)
	}
	if cfg.summaryTimeout != 3*time.Second || cfg.concurrency != 8 {
		t.Errorf("summary options = %v, %d", cfg.summaryTimeout, cfg.concurrency)
	}
	if cfg.vocabularySize != 50 || cfg.maxIterations != 20 {
		t.Errorf("pipeline options = %d, %d", cfg.vocabularySize, cfg.maxIterations)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestBuildPrimary(t *testing.T) {
	if p := buildPrimary(&clientConfig{}); p != nil {
		t.Errorf("expected nil primary without credentials, got %T", p)
	}
	if p := buildPrimary(&clientConfig{apiKey: "k"}); p == nil {
		t.Error("expected remote primary with an API key")
	}
	if p := buildPrimary(&clientConfig{summarizer: &mockSummarizer{}}); p == nil {
		t.Error("expected custom primary")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
	obs.usage(Usage{Fallbacks: 1})
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(WithPrometheus(reg), WithLogger(slog.Default()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ClusterTexts(context.Background(), notes, 2); err != nil {
		t.Fatalf("ClusterTexts: %v", err)
	}
	_, _ = c.ClusterTexts(context.Background(), nil, 2)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	samples := map[string]int{}
	for _, f := range families {
		samples[f.GetName()] = len(f.GetMetric())
	}
	if samples["vecluster_sdk_operations_total"] != 2 {
		t.Errorf("operations samples = %d, want ok and error", samples["vecluster_sdk_operations_total"])
	}
	if samples["vecluster_sdk_summaries_total"] != 2 {
		t.Errorf("summaries samples = %d, want 2", samples["vecluster_sdk_summaries_total"])
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(WithPrometheus(reg)); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(WithPrometheus(reg)); err != nil {
		t.Fatalf("second New on the same registry: %v", err)
	}
}
