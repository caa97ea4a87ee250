package summary

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecluster/internal/domain"
	"github.com/kailas-cloud/vecluster/internal/metrics"
)

// Fallback reasons reported in summary_fallbacks_total.
const (
	ReasonUnavailable   = "unavailable"
	ReasonQuota         = "quota"
	ReasonTimeout       = "timeout"
	ReasonCanceled      = "canceled"
	ReasonProviderError = "provider_error"
	ReasonUnknown       = "unknown"
)

// FallbackSummarizer tries primary once and answers from secondary on any error.
type FallbackSummarizer struct {
	primary   domain.Summarizer
	secondary domain.Summarizer
	logger    *zap.Logger
}

// NewFallbackSummarizer composes two tiers. A nil primary always falls back.
func NewFallbackSummarizer(primary, secondary domain.Summarizer, logger *zap.Logger) *FallbackSummarizer {
	return &FallbackSummarizer{primary: primary, secondary: secondary, logger: logger}
}

// Summarize implements domain.Summarizer.
func (f *FallbackSummarizer) Summarize(ctx context.Context, texts []string) (domain.Summary, error) {
	if f.primary == nil {
		return f.fallback(ctx, texts, fmt.Errorf("no primary summarizer: %w", domain.ErrSummarizerUnavailable))
	}

	s, err := f.primary.Summarize(ctx, texts)
	if err == nil {
		return s, nil
	}
	return f.fallback(ctx, texts, err)
}

func (f *FallbackSummarizer) fallback(ctx context.Context, texts []string, cause error) (domain.Summary, error) {
	reason := FallbackReason(cause)
	metrics.SummaryFallbacksTotal.WithLabelValues(reason).Inc()
	f.logger.Warn("Remote summary failed, using rule-based summary",
		zap.String("reason", reason),
		zap.Int("texts", len(texts)),
		zap.Error(cause),
	)

	// The secondary runs without the request deadline so a cancelled
	// request still gets a label.
	s, err := f.secondary.Summarize(context.WithoutCancel(ctx), texts)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("fallback summarize: %w", err)
	}
	return s, nil
}

// FallbackReason classifies a primary-tier error.
func FallbackReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSummarizerUnavailable):
		return ReasonUnavailable
	case errors.Is(err, domain.ErrSummaryQuotaExceeded):
		return ReasonQuota
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, domain.ErrSummarizerProviderError):
		return ReasonProviderError
	default:
		return ReasonUnknown
	}
}
