package orchestrator

import (
	"sync"

	"github.com/Yates-Labs/mentor/internal/generation"
)

// Memory holds the most recent turns of one conversation, oldest first.
// Adding beyond the capacity drops the oldest turn. A non-positive capacity
// keeps nothing.
type Memory struct {
	mu    sync.Mutex
	size  int
	turns []generation.ConversationTurn
}

// NewMemory creates a Memory keeping the last size turns.
func NewMemory(size int) *Memory {
	if size < 0 {
		size = 0
	}
	return &Memory{
		size:  size,
		turns: make([]generation.ConversationTurn, 0, size),
	}
}

// Add appends a completed exchange.
func (m *Memory) Add(question, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.size == 0 {
		return
	}
	if len(m.turns) == m.size {
		copy(m.turns, m.turns[1:])
		m.turns = m.turns[:len(m.turns)-1]
	}
	m.turns = append(m.turns, generation.ConversationTurn{Question: question, Answer: answer})
}

// Turns returns a copy of the stored turns, oldest first.
func (m *Memory) Turns() []generation.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.ConversationTurn(nil), m.turns...)
}

// Len returns the number of stored turns.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Reset forgets every turn.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = m.turns[:0]
}

// LastTurns returns at most n of the newest turns in history, oldest first.
func LastTurns(history []generation.ConversationTurn, n int) []generation.ConversationTurn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return history
}
