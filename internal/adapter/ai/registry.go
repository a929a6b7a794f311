package ai

import (
	"fmt"
	"sync"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// Registry hands out a configured ProviderClient per purpose (filter,
// tailor). Clients are cached per purpose so their cost totals accumulate
// across calls.
type Registry struct {
	cfg       config.Config
	providers config.LLMProviders
	retry     RetryPolicy

	mu      sync.Mutex
	clients map[string]domain.ProviderClient
}

// NewRegistry constructs a registry from the environment config and the
// llm_providers profile.
func NewRegistry(cfg config.Config, providers config.LLMProviders) *Registry {
	initial, maxInt, mult := cfg.GetAIBackoffConfig()
	retry := RetryPolicy{
		InitialInterval: initial,
		MaxInterval:     maxInt,
		Multiplier:      mult,
		MaxRetries:      uint64(cfg.ProviderMaxRetries),
	}
	return &Registry{
		cfg:       cfg,
		providers: providers,
		retry:     retry,
		clients:   map[string]domain.ProviderClient{},
	}
}

// ForPurpose returns the client configured for purpose. Unknown purposes fall
// back to the default provider with a logged warning.
func (r *Registry) ForPurpose(purpose string) (domain.ProviderClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[purpose]; ok {
		return c, nil
	}
	spec, ok := r.providers.Purposes[purpose]
	if !ok {
		spec = r.providers.Default
		if spec.Provider == "" {
			return nil, fmt.Errorf("op=ai.registry purpose=%s: %w: no provider configured and no default", purpose, domain.ErrConfig)
		}
		slog.Warn("unknown provider purpose; using default",
			slog.String("purpose", purpose),
			slog.String("provider", spec.Provider),
			slog.String("model", spec.Model))
	}
	client, err := r.build(spec)
	if err != nil {
		return nil, err
	}
	r.clients[purpose] = client
	return client, nil
}

func (r *Registry) build(spec config.ProviderSpec) (domain.ProviderClient, error) {
	switch spec.Provider {
	case "glm":
		return NewOpenAIClient("glm", r.cfg.GLMBaseURL, r.cfg.GLMAPIKey, spec.Model, r.cfg.ProviderTimeout, r.retry), nil
	case "openai":
		return NewOpenAIClient("openai", r.cfg.OpenAIBaseURL, r.cfg.OpenAIAPIKey, spec.Model, r.cfg.ProviderTimeout, r.retry), nil
	case "openrouter":
		return NewOpenAIClient("openrouter", r.cfg.OpenRouterBase, r.cfg.OpenRouterAPIKey, spec.Model, r.cfg.ProviderTimeout, r.retry), nil
	case "groq":
		return NewOpenAIClient("groq", r.cfg.GroqBaseURL, r.cfg.GroqAPIKey, spec.Model, r.cfg.ProviderTimeout, r.retry), nil
	case "anthropic":
		return NewAnthropicClient(r.cfg.AnthropicAPIKey, spec.Model, r.cfg.ProviderTimeout, r.retry), nil
	}
	return nil, fmt.Errorf("op=ai.registry provider=%s: %w: unsupported provider", spec.Provider, domain.ErrConfig)
}

// TotalCost sums accumulated spend across all built clients.
func (r *Registry) TotalCost() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, c := range r.clients {
		total += c.Stats().TotalCostUSD
	}
	return total
}
