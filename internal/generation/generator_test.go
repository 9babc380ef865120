package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerator_Generate_Success(t *testing.T) {
	mockLLM := NewMockLLM("Start with one small task today.")
	config := DefaultLLMConfig()
	config.Model = "test-model"

	gen := NewGenerator(mockLLM, config)

	text, err := gen.Generate(context.Background(), "USER'S QUESTION: how do I start?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Start with one small task today." {
		t.Errorf("unexpected text: %s", text)
	}
	if gen.Model() != "test-model" {
		t.Errorf("expected model test-model, got %s", gen.Model())
	}
	if mockLLM.LastPrompt != "USER'S QUESTION: how do I start?" {
		t.Errorf("mock LLM received %q", mockLLM.LastPrompt)
	}
}

func TestGenerator_Generate_LLMError(t *testing.T) {
	llmErr := errors.New("connection refused")
	gen := NewGenerator(NewMockLLMWithError(llmErr), DefaultLLMConfig())

	_, err := gen.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
	if !errors.Is(err, llmErr) {
		t.Errorf("expected wrapped LLM error, got %v", err)
	}
}

func TestGenerator_Generate_NilLLM(t *testing.T) {
	gen := NewGenerator(nil, DefaultLLMConfig())

	_, err := gen.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerator_Generate_EmptyPrompt(t *testing.T) {
	mockLLM := NewMockLLM("unused")
	gen := NewGenerator(mockLLM, DefaultLLMConfig())

	_, err := gen.Generate(context.Background(), "")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
	if mockLLM.Calls != 0 {
		t.Error("LLM should not be called for an empty prompt")
	}
}

func TestMockLLM_DefaultResponse(t *testing.T) {
	b, _ := NewPromptBuilder(TemplateMentor)
	prompt, _ := b.Build("how do I focus?", nil, nil)

	text, err := (&MockLLM{}).Generate(context.Background(), prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "how do I focus?") {
		t.Errorf("default response should echo the question, got %q", text)
	}
}

func TestNewOpenAILLM_MissingAPIKey(t *testing.T) {
	_, err := NewOpenAILLM(LLMConfig{Model: "gpt-4o-mini"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewOpenAILLM_MissingModel(t *testing.T) {
	_, err := NewOpenAILLM(LLMConfig{APIKey: "sk-test"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewOllamaLLM(t *testing.T) {
	if _, err := NewOllamaLLM(LLMConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for missing model, got %v", err)
	}

	llm, err := NewOllamaLLM(DefaultLLMConfig())
	if err != nil {
		t.Fatalf("NewOllamaLLM() error = %v", err)
	}
	if _, err := llm.Generate(context.Background(), ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty prompt, got %v", err)
	}
}
