package domain

import "context"

// Summarizer labels a cluster from the raw texts of its members.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (Summary, error)
}

// HealthChecker verifies summarization provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SummarySource tells which tier produced a summary.
type SummarySource string

const (
	// SourceRemote is a summary produced by the text generation service.
	SourceRemote SummarySource = "remote"
	// SourceRuleBased is a summary produced by keyword rules.
	SourceRuleBased SummarySource = "rule_based"
)

// Summary carries the label text and token usage through the decorator chain.
type Summary struct {
	Text             string
	Source           SummarySource
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
