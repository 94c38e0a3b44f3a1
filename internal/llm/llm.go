// Package llm provides a single-shot text generation interface over the
// eino ChatModel adapters. The answer synthesizer needs exactly one
// exchange per question (system prompt + user prompt → completion), so
// this package deliberately exposes no tool calling or streaming.
// Supported backends: Ollama, OpenAI, Azure OpenAI, Ark, Google Gemini.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Generator produces one completion for a system/user prompt pair.
// Implementations must be safe to call from multiple goroutines.
type Generator interface {
	// Complete sends the prompts to the model and returns the raw
	// completion text.
	Complete(ctx context.Context, system, user string) (string, error)
}

// Backend enumerates the supported inference providers.
type Backend string

const (
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendArk selects the Volcano Engine Ark model runtime.
	BackendArk Backend = "ark"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
)

// Config holds generation settings resolved from environment variables
// or explicit caller-supplied values.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the model name or deployment ID (e.g. "gpt-4o", "llama3").
	Model string

	// BaseURL overrides the default API endpoint (required for Ollama,
	// Azure, and Ark).
	BaseURL string

	// APIKey is the credential for the selected provider.
	APIKey string

	// AzureAPIVersion is the Azure OpenAI REST API version (Azure only).
	AzureAPIVersion string

	// MaxTokens caps the completion length (default: 600 — grounded
	// answers are short by construction).
	MaxTokens int

	// Temperature controls randomness (default: 0.3 — answers must stay
	// close to the retrieved context).
	Temperature float32
}

// Validate checks that the config carries everything its backend needs.
// Error messages name the environment variable an operator would set.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama:
		if c.Model == "" {
			return fmt.Errorf("llm: OLLAMA_MODEL is required for ollama backend")
		}
	case BackendOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("llm: OPENAI_API_KEY is required for openai backend")
		}
		if c.Model == "" {
			return fmt.Errorf("llm: OPENAI_MODEL is required for openai backend")
		}
	case BackendAzure:
		if c.APIKey == "" {
			return fmt.Errorf("llm: AZURE_OPENAI_API_KEY is required for azure backend")
		}
		if c.BaseURL == "" {
			return fmt.Errorf("llm: AZURE_OPENAI_ENDPOINT is required for azure backend")
		}
		if c.Model == "" {
			return fmt.Errorf("llm: AZURE_OPENAI_DEPLOYMENT is required for azure backend")
		}
	case BackendArk:
		if c.APIKey == "" {
			return fmt.Errorf("llm: ARK_API_KEY is required for ark backend")
		}
		if c.Model == "" {
			return fmt.Errorf("llm: ARK_MODEL is required for ark backend")
		}
	case BackendGemini:
		if c.APIKey == "" {
			return fmt.Errorf("llm: GOOGLE_API_KEY is required for gemini backend")
		}
		if c.Model == "" {
			return fmt.Errorf("llm: GEMINI_MODEL is required for gemini backend")
		}
	default:
		return fmt.Errorf("llm: unknown backend %q — valid values: ollama, openai, azure, ark, gemini", c.Backend)
	}
	return nil
}

// chatGenerator adapts an eino ChatModel to the Generator interface.
type chatGenerator struct {
	model model.ToolCallingChatModel
}

// Complete sends one system+user exchange and returns the completion.
func (g *chatGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	out, err := g.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("llm: generate failed: %w", err)
	}
	return out.Content, nil
}
