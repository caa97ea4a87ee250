package vecluster

import "context"

// Summarizer labels a cluster from the texts of its members.
// Errors are not returned to the caller: the cluster is labeled by the
// rule-based tier instead.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (SummaryResult, error)
}

// SummaryResult carries the label and the tokens spent producing it.
type SummaryResult struct {
	Text        string
	TotalTokens int
}
