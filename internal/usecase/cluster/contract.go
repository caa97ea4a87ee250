package cluster

import (
	"context"

	"github.com/kailas-cloud/vecluster/internal/domain"
)

// Summarizer labels a cluster from its member texts.
// Implementations passed to the service are expected to never fail on
// external errors (see summary.FallbackSummarizer).
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (domain.Summary, error)
}
