package domain

import (
	"context"
	"sync"
)

type summaryUsageKey struct{}

// SummaryUsage collects completion token usage for a single HTTP request.
// The handler puts a pointer into the context before calling the service;
// summarizers write to it concurrently; the handler reads it for response headers.
type SummaryUsage struct {
	mu        sync.Mutex
	tokens    int
	remote    int
	fallbacks int
}

// NewContextWithUsage returns a context with a summary usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *SummaryUsage) {
	u := &SummaryUsage{}
	return context.WithValue(ctx, summaryUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *SummaryUsage {
	u, _ := ctx.Value(summaryUsageKey{}).(*SummaryUsage)
	return u
}

// Record registers one produced summary.
func (u *SummaryUsage) Record(s Summary) {
	if u == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens += s.TotalTokens
	if s.Source == SourceRemote {
		u.remote++
	} else {
		u.fallbacks++
	}
}

// TotalTokens returns the completion tokens consumed by the request.
func (u *SummaryUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tokens
}

// Fallbacks returns how many summaries came from the rule-based tier.
func (u *SummaryUsage) Fallbacks() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.fallbacks
}

// Remote returns how many summaries came from the remote tier.
func (u *SummaryUsage) Remote() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.remote
}
