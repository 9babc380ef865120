package generation

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrGenerationFailed = errors.New("response generation failed")
)

// Generator produces mentor responses using an LLM.
// It invokes the LLM on an already-assembled prompt and does not retry.
type Generator struct {
	llm    LLM
	config LLMConfig
}

// NewGenerator creates a generator with the given LLM implementation.
func NewGenerator(llm LLM, config LLMConfig) *Generator {
	return &Generator{
		llm:    llm,
		config: config,
	}
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.config.Model
}

// Generate returns the LLM's response to prompt.
// It must not perform retrieval or prompt construction.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("%w: LLM is required", ErrGenerationFailed)
	}
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrGenerationFailed)
	}

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: LLM invocation failed: %w", ErrGenerationFailed, err)
	}

	return text, nil
}
