package rag

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder is a deterministic Embedder for tests. Identical texts produce
// identical unit vectors. Vectors holds fixed embeddings by text and takes precedence.
type MockEmbedder struct {
	Dimension int
	Vectors   map[string][]float32
	Error     error
	// Calls records the texts of every Embed call.
	Calls [][]string
}

// NewMockEmbedder creates a MockEmbedder producing vectors of the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{Dimension: dimension}
}

// GetModel returns the embedding model identifier
func (m *MockEmbedder) GetModel() string {
	return "mock"
}

// GetDimension returns the embedding vector dimension
func (m *MockEmbedder) GetDimension() int {
	return m.Dimension
}

// Embed returns a deterministic vector per text.
func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	m.Calls = append(m.Calls, append([]string(nil), texts...))
	if m.Error != nil {
		return nil, m.Error
	}
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	records := make([]EmbeddingRecord, len(texts))
	for i, text := range texts {
		vec, ok := m.Vectors[text]
		if !ok {
			vec = hashVector(text, m.Dimension)
		}
		records[i] = EmbeddingRecord{Text: text, Embedding: vec, Index: i, Model: "mock"}
	}
	return records, nil
}

func hashVector(text string, dim int) []float32 {
	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		h := fnv.New32a()
		h.Write([]byte{byte(i), byte(i >> 8)})
		h.Write([]byte(text))
		v := float64(h.Sum32())/math.MaxUint32*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		n := math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / n)
		}
	}
	return vec
}
