package cluster

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/vecluster/internal/domain"
	domcluster "github.com/kailas-cloud/vecluster/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/vecluster/internal/domain/document"
	"github.com/kailas-cloud/vecluster/internal/metrics"
)

// DefaultSummaryConcurrency bounds parallel summary calls per request.
const DefaultSummaryConcurrency = 4

// Service runs the clustering pipeline for one request at a time.
// It holds no per-request state; concurrent calls are independent.
type Service struct {
	summarizer  Summarizer
	logger      *zap.Logger
	vocabSize   int
	maxIter     int
	concurrency int
	now         func() time.Time
}

// New creates a clustering service.
func New(summarizer Summarizer, logger *zap.Logger) *Service {
	return &Service{
		summarizer:  summarizer,
		logger:      logger,
		vocabSize:   DefaultVocabularySize,
		maxIter:     DefaultMaxIterations,
		concurrency: DefaultSummaryConcurrency,
		now:         time.Now,
	}
}

// WithVocabularySize overrides the vocabulary cap.
func (s *Service) WithVocabularySize(n int) *Service {
	if n > 0 {
		s.vocabSize = n
	}
	return s
}

// WithMaxIterations overrides the k-means iteration cap.
func (s *Service) WithMaxIterations(n int) *Service {
	if n > 0 {
		s.maxIter = n
	}
	return s
}

// WithSummaryConcurrency bounds parallel summary calls. 1 runs them sequentially.
func (s *Service) WithSummaryConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Cluster partitions docs into at most k labeled clusters.
// k <= 0 selects DefaultK; k above the document count is reduced to it.
func (s *Service) Cluster(ctx context.Context, docs []domdoc.Document, k int) (res *domcluster.Result, err error) {
	start := s.now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("clustering pipeline panic",
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			res, err = nil, fmt.Errorf("%w: %v", domain.ErrPipelinePanic, r)
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ClusteringRunsTotal.WithLabelValues(status).Inc()
	}()

	if len(docs) == 0 {
		return nil, domain.NewValidationError("data_points", "at least one data point is required")
	}
	if k <= 0 {
		k = DefaultK(len(docs))
	}
	if k > len(docs) {
		k = len(docs)
	}

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content()
	}

	analysis := Analyze(contents, k, s.vocabSize, s.maxIter)
	asg := analysis.Assignment
	metrics.KMeansIterations.WithLabelValues(strconv.FormatBool(asg.Converged)).Observe(float64(asg.Iterations))
	metrics.ClusteringDocuments.Observe(float64(len(docs)))

	summaries, err := s.summarize(ctx, analysis.Groups, contents)
	if err != nil {
		return nil, err
	}

	clusters := make([]domcluster.Cluster, len(analysis.Groups))
	for id, g := range analysis.Groups {
		members := make([]domdoc.Document, len(g.Members))
		for i, idx := range g.Members {
			members[i] = docs[idx]
		}
		clusters[id] = domcluster.New(id, members, g.Centroid, g.Similarity, summaries[id])
	}

	elapsed := s.now().Sub(start)
	metrics.ClusteringDuration.Observe(elapsed.Seconds())

	s.logger.Debug("clustering completed",
		zap.Int("documents", len(docs)),
		zap.Int("requested_k", k),
		zap.Int("clusters", len(clusters)),
		zap.Int("vocabulary", analysis.Vocabulary.Len()),
		zap.Int("iterations", asg.Iterations),
		zap.Bool("converged", asg.Converged),
		zap.Duration("duration", elapsed),
	)

	return &domcluster.Result{
		Clusters: clusters,
		Metadata: domcluster.Metadata{
			TotalDocuments: len(docs),
			ProcessingTime: elapsed,
			Algorithm:      domcluster.AlgorithmName,
			Version:        domcluster.AlgorithmVersion,
			Timestamp:      start.UTC(),
		},
	}, nil
}

// summarize fans out one summary call per group and joins them in group order.
func (s *Service) summarize(ctx context.Context, groups []Group, contents []string) ([]string, error) {
	out := make([]string, len(groups))
	usage := domain.UsageFromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for id, grp := range groups {
		texts := make([]string, len(grp.Members))
		for i, idx := range grp.Members {
			texts[i] = contents[idx]
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("summary goroutine panic",
						zap.Int("cluster_id", id),
						zap.Any("panic", r),
						zap.Stack("stacktrace"),
					)
					err = fmt.Errorf("%w: summary for cluster %d: %v", domain.ErrPipelinePanic, id, r)
				}
			}()

			sum, err := s.summarizer.Summarize(gctx, texts)
			if err != nil {
				return fmt.Errorf("summarize cluster %d: %w", id, err)
			}
			usage.Record(sum)
			out[id] = sum.Text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per cluster
	}
	return out, nil
}
