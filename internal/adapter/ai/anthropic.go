package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// AnthropicClient implements domain.ProviderClient using the Anthropic
// Messages API.
type AnthropicClient struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	retry   RetryPolicy
	acc     statsAccumulator
}

// NewAnthropicClient constructs a client for an Anthropic model.
func NewAnthropicClient(apiKey, model string, timeout time.Duration, retry RetryPolicy) *AnthropicClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicClient{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
		retry:   retry,
	}
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string { return c.model }

// CostFor is the pure pricing function for the configured model.
func (c *AnthropicClient) CostFor(inputTokens, outputTokens int64) float64 {
	return Cost(c.model, inputTokens, outputTokens)
}

// Stats returns accumulated totals for this instance.
func (c *AnthropicClient) Stats() domain.ProviderStats { return c.acc.snapshot() }

// ResetStats clears accumulated totals.
func (c *AnthropicClient) ResetStats() { c.acc.reset() }

// convertMessages maps chat messages to Anthropic message params. System
// messages are carried separately; the first one wins.
func convertMessages(messages []domain.ChatMessage) ([]anthropic.MessageParam, string) {
	out := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, m := range messages {
		switch m.Role {
		case "system":
			if systemText == "" {
				systemText = m.Content
			}
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, systemText
}

// textContent concatenates the text blocks of a response. Block type is a
// plain string in the SDK; tool-use and thinking blocks are skipped.
func textContent(blocks []anthropic.ContentBlockUnion) string {
	var sb strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// Chat performs a single completion with bounded retries.
func (c *AnthropicClient) Chat(ctx domain.Context, messages []domain.ChatMessage, temperature float64, maxTokens int) (domain.ChatResponse, error) {
	if len(messages) == 0 {
		return domain.ChatResponse{}, fmt.Errorf("op=ai.chat provider=anthropic: %w: empty messages", domain.ErrInvalidRecord)
	}
	msgs, systemText := convertMessages(messages)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	var result domain.ChatResponse
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		start := time.Now()
		resp, err := c.client.Messages.New(callCtx, params)
		observability.AIRequestsTotal.WithLabelValues("anthropic", "chat").Inc()
		observability.AIRequestDuration.WithLabelValues("anthropic", "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			return classifyAnthropicErr(err)
		}
		text := textContent(resp.Content)
		if text == "" {
			return backoff.Permanent(fmt.Errorf("%w: no text content", domain.ErrInvalidResponse))
		}
		result = domain.ChatResponse{
			Content:      text,
			Model:        string(resp.Model),
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.retry.backoff(), ctx)); err != nil {
		return domain.ChatResponse{}, fmt.Errorf("op=ai.chat provider=anthropic model=%s: %w", c.model, err)
	}
	result.CostUSD = c.CostFor(result.InputTokens, result.OutputTokens)
	c.acc.add(result)
	return result, nil
}

func classifyAnthropicErr(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return fmt.Errorf("%w: status 429", domain.ErrRateLimited)
		case apiErr.StatusCode >= 500:
			return fmt.Errorf("%w: status %d", domain.ErrAPI, apiErr.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("%w: status %d", domain.ErrAPI, apiErr.StatusCode))
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}
