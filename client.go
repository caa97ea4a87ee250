package vecluster

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecluster/internal/domain"
	domcluster "github.com/kailas-cloud/vecluster/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/vecluster/internal/domain/document"
	openaiSum "github.com/kailas-cloud/vecluster/internal/transport/openai"
	clusteruc "github.com/kailas-cloud/vecluster/internal/usecase/cluster"
	summaryuc "github.com/kailas-cloud/vecluster/internal/usecase/summary"
)

const (
	defaultProvider = "openai"
	defaultModel    = "gpt-4o-mini"
	customProvider  = "custom"
)

// clusterUseCase is the pipeline entry point, replaceable in tests.
type clusterUseCase interface {
	Cluster(ctx context.Context, docs []domdoc.Document, k int) (*domcluster.Result, error)
}

// Client runs the clustering pipeline in-process. It is safe for concurrent use.
type Client struct {
	svc clusterUseCase
	obs *observer
}

// New creates a Client. No network connection is made here.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	summarizer := summaryuc.NewFallbackSummarizer(
		buildPrimary(cfg), summaryuc.NewRuleBasedSummarizer(), zap.NewNop(),
	)
	svc := clusteruc.New(summarizer, zap.NewNop()).
		WithVocabularySize(cfg.vocabularySize).
		WithMaxIterations(cfg.maxIterations).
		WithSummaryConcurrency(cfg.concurrency)

	return &Client{svc: svc, obs: obs}, nil
}

// buildPrimary returns the remote tier, or nil when none is configured.
func buildPrimary(cfg *clientConfig) domain.Summarizer {
	model := cfg.model
	if model == "" {
		model = defaultModel
	}

	var remote domain.Summarizer
	provider := defaultProvider
	switch {
	case cfg.summarizer != nil:
		remote = &summarizerAdapter{inner: cfg.summarizer}
		provider = customProvider
	case cfg.apiKey != "":
		remote = openaiSum.NewSummarizer(&openaiSum.Config{
			APIKey:      cfg.apiKey,
			BaseURL:     cfg.baseURL,
			Model:       model,
			Temperature: openaiSum.DefaultTemperature,
			Provider:    provider,
		})
	default:
		return nil
	}

	return summaryuc.NewInstrumentedSummarizer(
		remote, provider, model, cfg.summaryTimeout, nil, zap.NewNop(),
	)
}

// ClusterTexts clusters bare texts. k <= 0 picks min(ceil(n/3), 5).
func (c *Client) ClusterTexts(ctx context.Context, texts []string, k int) (Result, error) {
	points := make([]DataPoint, len(texts))
	for i, t := range texts {
		points[i] = DataPoint{Content: t}
	}
	return c.Cluster(ctx, points, k)
}

// Cluster partitions points into at most k labeled clusters.
// k <= 0 picks min(ceil(n/3), 5); k above len(points) is reduced to it.
func (c *Client) Cluster(ctx context.Context, points []DataPoint, k int) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cluster", start, err) }()

	if len(points) == 0 {
		return Result{}, fmt.Errorf("vecluster: %w", domain.NewValidationError("data_points", "must not be empty"))
	}

	docs := make([]domdoc.Document, len(points))
	for i, p := range points {
		id := p.ID
		if id == "" {
			id = domdoc.DefaultID(i)
		}
		d, err := domdoc.New(id, p.Content, p.Name, p.Type)
		if err != nil {
			return Result{}, fmt.Errorf("vecluster: data point %d: %w", i, err)
		}
		docs[i] = d
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	out, err := c.svc.Cluster(ctx, docs, k)
	if err != nil {
		return Result{}, fmt.Errorf("vecluster: %w", err)
	}

	res = toResult(out)
	res.Usage = Usage{
		SummaryTokens: usage.TotalTokens(),
		Remote:        usage.Remote(),
		Fallbacks:     usage.Fallbacks(),
	}
	c.obs.usage(res.Usage)
	return res, nil
}

func toResult(r *domcluster.Result) Result {
	clusters := make([]Cluster, len(r.Clusters))
	for i, cl := range r.Clusters {
		members := cl.Members()
		points := make([]DataPoint, len(members))
		for j, d := range members {
			points[j] = DataPoint{ID: d.ID(), Content: d.Content(), Name: d.Name(), Type: d.Type()}
		}
		clusters[i] = Cluster{
			ID:              cl.ID(),
			DataPoints:      points,
			Summary:         cl.Summary(),
			SimilarityScore: cl.Similarity(),
			Centroid:        cl.Centroid(),
		}
	}

	md := r.Metadata
	return Result{
		Clusters: clusters,
		Metadata: Metadata{
			TotalPoints:    md.TotalDocuments,
			ProcessingTime: md.ProcessingTime,
			Algorithm:      md.Algorithm,
			Version:        md.Version,
			Timestamp:      md.Timestamp,
		},
	}
}

// summarizerAdapter wraps the public Summarizer to satisfy domain.Summarizer.
type summarizerAdapter struct {
	inner Summarizer
}

func (a *summarizerAdapter) Summarize(ctx context.Context, texts []string) (domain.Summary, error) {
	r, err := a.inner.Summarize(ctx, texts)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: %w", domain.ErrSummarizerProviderError, err)
	}
	if r.Text == "" {
		return domain.Summary{}, fmt.Errorf("%w: empty summary", domain.ErrSummarizerProviderError)
	}
	return domain.Summary{
		Text:        r.Text,
		Source:      domain.SourceRemote,
		TotalTokens: r.TotalTokens,
	}, nil
}
