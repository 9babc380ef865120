// Package generation turns retrieved context and conversation history into a
// mentor response. It defines a provider-agnostic LLM interface with
// implementations for Ollama and OpenAI and a deterministic mock for tests.
package generation

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text from a prompt using the configured model.
	// Returns the generated text or an error if generation fails.
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Model specifies the model identifier (e.g., "mistral", "gpt-4o-mini")
	Model string

	// Host is the server URL for self-hosted providers (Ollama)
	Host string

	// Temperature controls randomness (0.0 = provider default)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string
}

// DefaultLLMConfig returns defaults for a local Ollama model.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model: "mistral",
		Host:  "http://localhost:11434",
	}
}
