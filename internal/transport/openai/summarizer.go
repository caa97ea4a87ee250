package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecluster/internal/domain"
	"github.com/kailas-cloud/vecluster/internal/metrics"
)

// Defaults for completion requests.
const (
	DefaultMaxTokens   = 150
	DefaultTemperature = float32(0.7)
)

// SystemPrompt is the persona sent with every completion.
const SystemPrompt = "You are a business analyst reviewing customer interview notes. " +
	"Summarize the shared theme of the notes in exactly two sentences: " +
	"first the main pain point, then the business opportunity it suggests. " +
	"Reply with the two sentences only."

// Summarizer labels clusters through an OpenAI-compatible chat completion API.
// The HTTP client is created on first use and reused afterwards.
type Summarizer struct {
	cfg Config

	once   sync.Once
	client *openai.Client
}

// Config holds the completion provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Provider    string
	Logger      *zap.Logger
}

// NewSummarizer creates a remote summarizer. No connection is made here.
func NewSummarizer(cfg *Config) *Summarizer {
	c := *cfg
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return &Summarizer{cfg: c}
}

func (s *Summarizer) getClient() *openai.Client {
	s.once.Do(func() {
		clientCfg := openai.DefaultConfig(s.cfg.APIKey)
		if s.cfg.BaseURL != "" {
			clientCfg.BaseURL = s.cfg.BaseURL
		}
		s.client = openai.NewClientWithConfig(clientCfg)
		s.cfg.Logger.Debug("Completion client initialized",
			zap.String("provider", s.cfg.Provider),
			zap.String("base_url", clientCfg.BaseURL),
		)
	})
	return s.client
}

// Configured reports whether credentials are present.
func (s *Summarizer) Configured() bool {
	return strings.TrimSpace(s.cfg.APIKey) != ""
}

// Summarize implements domain.Summarizer with a single chat completion.
func (s *Summarizer) Summarize(ctx context.Context, texts []string) (domain.Summary, error) {
	if !s.Configured() {
		return domain.Summary{}, fmt.Errorf("%s api key not set: %w", s.cfg.Provider, domain.ErrSummarizerUnavailable)
	}

	req := openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(texts)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	start := time.Now()

	resp, err := s.getClient().CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.SummaryRequestsTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "error").Inc()
		metrics.SummaryErrorsTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "api_error").Inc()
		return domain.Summary{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.SummaryRequestsTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "error").Inc()
		metrics.SummaryErrorsTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "empty_response").Inc()
		return domain.Summary{}, fmt.Errorf("empty completion response: %w", domain.ErrSummarizerProviderError)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		metrics.SummaryRequestsTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "error").Inc()
		metrics.SummaryErrorsTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "blank_content").Inc()
		return domain.Summary{}, fmt.Errorf("blank completion content: %w", domain.ErrSummarizerProviderError)
	}

	metrics.SummaryRequestsTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "success").Inc()
	metrics.SummaryRequestDuration.WithLabelValues(s.cfg.Provider, s.cfg.Model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.SummaryTokensTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "prompt").Add(float64(usage.PromptTokens))
		metrics.SummaryTokensTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "completion").Add(float64(usage.CompletionTokens))
		metrics.SummaryTokensTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model, "total").Add(float64(usage.TotalTokens))
	}

	return domain.Summary{
		Text:             text,
		Source:           domain.SourceRemote,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	if !s.Configured() {
		return fmt.Errorf("health check: %w", domain.ErrSummarizerUnavailable)
	}
	if _, err := s.getClient().ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// BuildPrompt concatenates member texts into the user message.
func BuildPrompt(texts []string) string {
	var b strings.Builder
	b.WriteString("Interview notes:\n")
	for _, t := range texts {
		b.WriteString("\n- ")
		b.WriteString(strings.TrimSpace(t))
	}
	return b.String()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrSummarizerProviderError; context errors are kept
// in the chain so callers can tell a timeout from a provider failure.
func parseAPIError(err error) error {
	wrap := domain.ErrSummarizerProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("completion request: %w: %w", err, wrap)
	}

	return fmt.Errorf("completion request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
