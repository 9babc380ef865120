package generation

import (
	"context"
	"strings"
	"sync"
)

// MockLLM is a deterministic LLM implementation for testing.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	// If empty, a default response is generated from the prompt.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// LastPrompt stores the most recent prompt passed to Generate.
	LastPrompt string

	// Calls counts Generate invocations.
	Calls int

	mu sync.Mutex
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response or generates a deterministic one.
func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastPrompt = prompt
	m.Calls++

	if m.Error != nil {
		return "", m.Error
	}

	if m.Response != "" {
		return m.Response, nil
	}

	return generateMockResponse(prompt), nil
}

// generateMockResponse echoes the question line of the prompt.
func generateMockResponse(prompt string) string {
	question := "your question"
	for _, line := range strings.Split(prompt, "\n") {
		for _, prefix := range []string{"USER'S QUESTION:", "STUDENT'S LATEST MESSAGE:", "Student:"} {
			if rest, ok := strings.CutPrefix(strings.TrimSpace(line), prefix); ok && strings.TrimSpace(rest) != "" {
				question = strings.TrimSpace(rest)
			}
		}
	}
	return "It makes sense to ask about " + question + ". Let's take it one step at a time."
}
