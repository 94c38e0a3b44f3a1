package llm

import (
	"context"
	"os"
	"strconv"

	"github.com/cloudwego/eino/components/model"
)

// Defaults for the shared generation parameters. Grounded answers are
// bounded and low-variance on purpose.
const (
	DefaultMaxTokens   = 600
	DefaultTemperature = 0.3
)

// NewFromEnv constructs a Generator by reading provider configuration
// from environment variables. MODEL_PROVIDER selects the backend; each
// provider uses its native credential env vars.
//
// Environment variables:
//
//	MODEL_PROVIDER = ollama | openai | azure | ark | gemini (default: ollama)
//
//	Ollama: OLLAMA_HOST (default: http://localhost:11434), OLLAMA_MODEL (default: llama3)
//	OpenAI: OPENAI_API_KEY, OPENAI_MODEL (default: gpt-4o)
//	Azure:  AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_DEPLOYMENT,
//	        AZURE_OPENAI_API_VERSION (default: 2025-04-01-preview)
//	Ark:    ARK_API_KEY, ARK_MODEL, ARK_BASE_URL
//	Gemini: GOOGLE_API_KEY, GEMINI_MODEL (default: gemini-1.5-pro)
//
//	Shared: MODEL_MAX_TOKENS (default: 600), MODEL_TEMPERATURE (default: 0.3)
func NewFromEnv(ctx context.Context) (Generator, error) {
	cfg := &Config{
		Backend:     Backend(getEnvOrDefault("MODEL_PROVIDER", string(BackendOllama))),
		MaxTokens:   getEnvInt("MODEL_MAX_TOKENS", DefaultMaxTokens),
		Temperature: getEnvFloat32("MODEL_TEMPERATURE", DefaultTemperature),
	}

	switch cfg.Backend {
	case BackendOllama:
		cfg.BaseURL = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		cfg.Model = getEnvOrDefault("OLLAMA_MODEL", "llama3")
	case BackendOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-4o")
	case BackendAzure:
		cfg.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
		cfg.BaseURL = os.Getenv("AZURE_OPENAI_ENDPOINT")
		cfg.Model = os.Getenv("AZURE_OPENAI_DEPLOYMENT")
		cfg.AzureAPIVersion = getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2025-04-01-preview")
	case BackendArk:
		cfg.APIKey = os.Getenv("ARK_API_KEY")
		cfg.BaseURL = os.Getenv("ARK_BASE_URL")
		cfg.Model = os.Getenv("ARK_MODEL")
	case BackendGemini:
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
		cfg.Model = getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-pro")
	}

	return New(ctx, cfg)
}

// New constructs a Generator from an explicit Config, delegating to the
// appropriate backend constructor.
func New(ctx context.Context, cfg *Config) (Generator, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		m   model.ToolCallingChatModel
		err error
	)
	switch cfg.Backend {
	case BackendOllama:
		m, err = newOllama(ctx, cfg)
	case BackendOpenAI:
		m, err = newOpenAI(ctx, cfg)
	case BackendAzure:
		m, err = newAzure(ctx, cfg)
	case BackendArk:
		m, err = newArk(ctx, cfg)
	case BackendGemini:
		m, err = newGemini(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}
	return &chatGenerator{model: m}, nil
}

// getEnvOrDefault returns the value of the named environment variable,
// or fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat32 returns the float32 value of the named environment
// variable, or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
