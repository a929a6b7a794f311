package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// RetryPolicy bounds provider call retries.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxRetries      uint64
}

// DefaultRetryPolicy retries rate limits and transport failures with
// exponential backoff: base 2s, cap 30s, three attempts total.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 2 * time.Second,
	MaxInterval:     30 * time.Second,
	Multiplier:      2.0,
	MaxRetries:      2,
}

func (p RetryPolicy) backoff() backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.InitialInterval
	expo.MaxInterval = p.MaxInterval
	expo.Multiplier = p.Multiplier
	expo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(expo, p.MaxRetries)
}

// statsAccumulator tracks per-instance provider totals.
type statsAccumulator struct {
	mu    sync.Mutex
	stats domain.ProviderStats
}

func (a *statsAccumulator) add(resp domain.ChatResponse) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.TotalCostUSD += resp.CostUSD
	a.stats.TotalInputTokens += resp.InputTokens
	a.stats.TotalOutputTokens += resp.OutputTokens
	a.stats.Requests++
}

func (a *statsAccumulator) snapshot() domain.ProviderStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *statsAccumulator) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = domain.ProviderStats{}
}

// OpenAIClient implements domain.ProviderClient against any OpenAI-compatible
// chat completions endpoint (GLM, OpenAI, OpenRouter, Groq).
type OpenAIClient struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
	retry   RetryPolicy
	acc     statsAccumulator
}

// NewOpenAIClient constructs a client for one provider endpoint and model.
func NewOpenAIClient(name, baseURL, apiKey, model string, timeout time.Duration, retry RetryPolicy) *OpenAIClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		hc:      &http.Client{Timeout: timeout},
		retry:   retry,
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// CostFor is the pure pricing function for the configured model.
func (c *OpenAIClient) CostFor(inputTokens, outputTokens int64) float64 {
	return Cost(c.model, inputTokens, outputTokens)
}

// Stats returns accumulated totals for this instance.
func (c *OpenAIClient) Stats() domain.ProviderStats { return c.acc.snapshot() }

// ResetStats clears accumulated totals.
func (c *OpenAIClient) ResetStats() { c.acc.reset() }

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat calls the chat completions endpoint, retrying rate-limit and transport
// failures. Client errors other than 429 are permanent.
func (c *OpenAIClient) Chat(ctx domain.Context, messages []domain.ChatMessage, temperature float64, maxTokens int) (domain.ChatResponse, error) {
	if c.apiKey == "" {
		return domain.ChatResponse{}, fmt.Errorf("op=ai.chat provider=%s: %w: api key missing", c.name, domain.ErrConfig)
	}
	body := map[string]any{
		"model":       c.model,
		"temperature": temperature,
		"messages":    wireMessages(messages),
	}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}
	b, _ := json.Marshal(body)

	var out chatCompletionResponse
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrTransport, err))
		}
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues(c.name, "chat").Inc()
		observability.AIRequestDuration.WithLabelValues(c.name, "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			slog.Warn("ai provider transport failure", slog.String("provider", c.name), slog.Any("error", err))
			return fmt.Errorf("%w: %v", domain.ErrTransport, err)
		}
		defer func() { _ = resp.Body.Close() }()
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: read body: %v", domain.ErrTransport, err)
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("ai provider rate limited", slog.String("provider", c.name), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("%w: status 429", domain.ErrRateLimited)
		case resp.StatusCode >= 500:
			slog.Warn("ai provider server error", slog.String("provider", c.name), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("%w: status %d", domain.ErrAPI, resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("%w: status %d: %s", domain.ErrAPI, resp.StatusCode, snippet(bodyBytes, 200)))
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: decode: %v", domain.ErrInvalidResponse, err))
		}
		if len(out.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("%w: no choices", domain.ErrInvalidResponse))
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.retry.backoff(), ctx)); err != nil {
		return domain.ChatResponse{}, fmt.Errorf("op=ai.chat provider=%s model=%s: %w", c.name, c.model, err)
	}

	model := out.Model
	if model == "" {
		model = c.model
	}
	resp := domain.ChatResponse{
		Content:      out.Choices[0].Message.Content,
		Model:        model,
		InputTokens:  out.Usage.PromptTokens,
		OutputTokens: out.Usage.CompletionTokens,
	}
	resp.CostUSD = c.CostFor(resp.InputTokens, resp.OutputTokens)
	c.acc.add(resp)
	return resp, nil
}

func wireMessages(messages []domain.ChatMessage) []map[string]string {
	out := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]string{"role": m.Role, "content": m.Content})
	}
	return out
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
