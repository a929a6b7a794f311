// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	DBPath string `env:"DB_PATH" envDefault:"data/jobs.db"`
	// DataDir is scanned for scraped <source>_*.json files.
	DataDir         string `env:"DATA_DIR" envDefault:"data/scraped"`
	ConfigDir       string `env:"CONFIG_DIR" envDefault:"config"`
	OutputDir       string `env:"OUTPUT_DIR" envDefault:"output/resumes"`
	InstructionsDir string `env:"INSTRUCTIONS_DIR" envDefault:"output/instructions"`

	GLMAPIKey        string `env:"GLM_API_KEY"`
	GLMBaseURL       string `env:"GLM_BASE_URL" envDefault:"https://api.z.ai/api/paas/v4"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OpenRouterBase   string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	GroqAPIKey       string `env:"GROQ_API_KEY"`
	GroqBaseURL      string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`

	// Scorer knobs
	BatchSize          int  `env:"BATCH_SIZE" envDefault:"5"`
	ScoreLimit         int  `env:"SCORE_LIMIT" envDefault:"0"`
	SemanticDedup      bool `env:"SEMANTIC_DEDUP" envDefault:"true"`
	Tier1Resume        bool `env:"TIER1_RESUME" envDefault:"true"`
	ProviderMaxRetries int  `env:"PROVIDER_MAX_RETRIES" envDefault:"2"`

	// Provider Backoff Configuration
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"30s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"2.0"`
	ProviderTimeout          time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"60s"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`
	TelegramBaseURL  string `env:"TELEGRAM_BASE_URL" envDefault:"https://api.telegram.org"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-job-hunter"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// GetAIBackoffConfig returns backoff configuration appropriate for the current
// environment. Test environments use much shorter intervals.
func (c Config) GetAIBackoffConfig() (initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 10 * time.Millisecond, 100 * time.Millisecond, 2.0
	}
	return c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
