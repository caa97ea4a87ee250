package summary

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecluster/internal/domain"
	"github.com/kailas-cloud/vecluster/internal/metrics"
)

// DefaultTimeout bounds a single remote summary call.
const DefaultTimeout = 10 * time.Second

// InstrumentedSummarizer wraps the remote tier with a per-call timeout and
// budget enforcement. Transport metrics (requests, duration, tokens) are
// recorded in transport/openai; this layer owns budget metrics only.
type InstrumentedSummarizer struct {
	inner    domain.Summarizer
	provider string
	model    string
	timeout  time.Duration
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedSummarizer wraps a summarizer. budget may be nil; a
// non-positive timeout uses DefaultTimeout.
func NewInstrumentedSummarizer(
	inner domain.Summarizer, provider, model string, timeout time.Duration,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedSummarizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &InstrumentedSummarizer{
		inner:    inner,
		provider: provider,
		model:    model,
		timeout:  timeout,
		budget:   budget,
		logger:   logger,
	}
}

// Summarize checks the budget, calls the inner summarizer under a timeout,
// and records token usage.
func (p *InstrumentedSummarizer) Summarize(ctx context.Context, texts []string) (domain.Summary, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Warn("Summary budget exceeded",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Error(err),
			)
			return domain.Summary{}, fmt.Errorf("budget check: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	result, err := p.inner.Summarize(ctx, texts)
	duration := time.Since(start)

	if err != nil {
		p.logger.Debug("Summary request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.Summary{}, fmt.Errorf("summarize: %w", err)
	}

	if p.budget != nil && result.TotalTokens > 0 {
		p.budget.Record(int64(result.TotalTokens))
		remaining := metrics.SummaryBudgetTokensRemaining
		remaining.WithLabelValues(p.provider, "daily").Set(float64(p.budget.RemainingDaily()))
		remaining.WithLabelValues(p.provider, "monthly").Set(float64(p.budget.RemainingMonthly()))
	}

	p.logger.Debug("Summary request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("texts", len(texts)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
