package vecluster

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey  string
	baseURL string
	model   string

	summarizer     Summarizer
	summaryTimeout time.Duration
	concurrency    int

	vocabularySize int
	maxIterations  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithOpenAI enables remote summaries through the OpenAI chat completion API.
// An empty model uses gpt-4o-mini.
func WithOpenAI(apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.model = model
	})
}

// WithBaseURL points the OpenAI client at a compatible endpoint.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithSummarizer sets a custom remote summarizer. It takes precedence over WithOpenAI.
func WithSummarizer(s Summarizer) Option {
	return optionFunc(func(c *clientConfig) {
		c.summarizer = s
	})
}

// WithSummaryTimeout bounds each remote summary call. Default: 10s.
func WithSummaryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.summaryTimeout = d
	})
}

// WithSummaryConcurrency bounds parallel summary calls per request. Default: 4.
func WithSummaryConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithVocabularySize caps the number of terms per request. Default: 100.
func WithVocabularySize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vocabularySize = n
	})
}

// WithMaxIterations caps k-means iterations. Default: 100.
func WithMaxIterations(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxIterations = n
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
