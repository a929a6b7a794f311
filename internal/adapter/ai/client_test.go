package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

var testRetry = RetryPolicy{
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	Multiplier:      2.0,
	MaxRetries:      2,
}

func completionBody(content string, promptTokens, completionTokens int64) string {
	b, _ := json.Marshal(map[string]any{
		"model": "glm-4-flash",
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
		},
	})
	return string(b)
}

func TestChatSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(completionBody(`{"score": 80}`, 1200, 300)))
	}))
	defer srv.Close()

	c := NewOpenAIClient("glm", srv.URL, "test-key", "gpt-4o-mini", time.Second, testRetry)
	resp, err := c.Chat(context.Background(), []domain.ChatMessage{
		{Role: "system", Content: "score jobs"},
		{Role: "user", Content: "the posting"},
	}, 0.3, 1024)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.Equal(t, 0.3, gotBody["temperature"])
	assert.Equal(t, float64(1024), gotBody["max_tokens"])

	assert.Equal(t, `{"score": 80}`, resp.Content)
	assert.Equal(t, "glm-4-flash", resp.Model, "server-reported model wins")
	assert.Equal(t, int64(1200), resp.InputTokens)
	assert.Equal(t, int64(300), resp.OutputTokens)
	assert.Equal(t, c.CostFor(1200, 300), resp.CostUSD)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(1200), stats.TotalInputTokens)
	assert.Equal(t, resp.CostUSD, stats.TotalCostUSD)

	c.ResetStats()
	assert.Equal(t, domain.ProviderStats{}, c.Stats())
}

func TestChatRetriesRateLimit(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(completionBody("ok", 10, 5)))
	}))
	defer srv.Close()

	c := NewOpenAIClient("glm", srv.URL, "k", "glm-4-flash", time.Second, testRetry)
	resp, err := c.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int64(2), calls.Load())
}

func TestChatRetriesServerError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(completionBody("ok", 10, 5)))
	}))
	defer srv.Close()

	c := NewOpenAIClient("glm", srv.URL, "k", "glm-4-flash", time.Second, testRetry)
	_, err := c.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), calls.Load(), "two retries then success")
}

func TestChatExhaustsRetries(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClient("glm", srv.URL, "k", "glm-4-flash", time.Second, testRetry)
	_, err := c.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, int64(3), calls.Load(), "initial attempt plus MaxRetries")
}

func TestChatClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "bad key"}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("glm", srv.URL, "k", "glm-4-flash", time.Second, testRetry)
	_, err := c.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAPI)
	assert.Equal(t, int64(1), calls.Load(), "4xx other than 429 must not retry")
}

func TestChatNoChoicesIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model": "m", "choices": []}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("glm", srv.URL, "k", "glm-4-flash", time.Second, testRetry)
	_, err := c.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidResponse)
}

func TestChatMissingKey(t *testing.T) {
	c := NewOpenAIClient("glm", "http://unused", "", "glm-4-flash", time.Second, testRetry)
	_, err := c.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestChatOmitsMaxTokensWhenZero(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(completionBody("ok", 1, 1)))
	}))
	defer srv.Close()

	c := NewOpenAIClient("glm", srv.URL, "k", "glm-4-flash", time.Second, testRetry)
	_, err := c.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	require.NoError(t, err)
	_, present := gotBody["max_tokens"]
	assert.False(t, present)
}
