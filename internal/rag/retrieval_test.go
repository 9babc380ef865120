package rag

import (
	"context"
	"errors"
	"testing"
)

// mockVectorStore implements VectorStore interface for testing
type mockVectorStore struct {
	records    map[string]ChunkRecord
	searchFunc func(ctx context.Context, queryVector []float32, topK int) ([]RetrievalResult, error)
	queryFunc  func(ctx context.Context, ids []string) (map[string]string, error)
	insertFunc func(ctx context.Context, records []ChunkRecord) error
	flushFunc  func(ctx context.Context) error

	insertCalls int
	flushCalls  int
	lastTopK    int
}

func (m *mockVectorStore) Insert(ctx context.Context, records []ChunkRecord) error {
	m.insertCalls++
	if m.insertFunc != nil {
		return m.insertFunc(ctx, records)
	}
	if m.records == nil {
		m.records = make(map[string]ChunkRecord)
	}
	for _, rec := range records {
		m.records[rec.ID] = rec
	}
	return nil
}

func (m *mockVectorStore) Flush(ctx context.Context) error {
	m.flushCalls++
	if m.flushFunc != nil {
		return m.flushFunc(ctx)
	}
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]RetrievalResult, error) {
	m.lastTopK = topK
	if m.searchFunc != nil {
		return m.searchFunc(ctx, queryVector, topK)
	}
	return []RetrievalResult{}, nil
}

func (m *mockVectorStore) Query(ctx context.Context, ids []string) (map[string]string, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, ids)
	}
	found := make(map[string]string)
	for _, id := range ids {
		if rec, ok := m.records[id]; ok {
			found[id] = rec.ContentHash
		}
	}
	return found, nil
}

func (m *mockVectorStore) Count(ctx context.Context) (int, error) {
	return len(m.records), nil
}

func (m *mockVectorStore) Reset(ctx context.Context) error {
	m.records = nil
	return nil
}

func (m *mockVectorStore) Close() error {
	return nil
}

func TestNewRetriever(t *testing.T) {
	tests := []struct {
		name        string
		embedder    Embedder
		vectorStore VectorStore
		topK        int
		wantErr     bool
	}{
		{"valid inputs", NewMockEmbedder(3), &mockVectorStore{}, 4, false},
		{"nil embedder", nil, &mockVectorStore{}, 4, true},
		{"nil vector store", NewMockEmbedder(3), nil, 4, true},
		{"zero topK", NewMockEmbedder(3), &mockVectorStore{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retriever, err := NewRetriever(tt.embedder, tt.vectorStore, tt.topK)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRetriever() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && retriever == nil {
				t.Error("NewRetriever() returned nil retriever")
			}
		})
	}
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()
	want := []RetrievalResult{
		{Chunk: Chunk{ID: "book.pdf:3:0", Content: "Rest is part of the work."}, Distance: 0.21},
		{Chunk: Chunk{ID: "book.pdf:3:1", Content: "Plan the week on Sunday."}, Distance: 0.45},
	}
	store := &mockVectorStore{
		searchFunc: func(ctx context.Context, queryVector []float32, topK int) ([]RetrievalResult, error) {
			if len(queryVector) != 3 {
				t.Errorf("query vector dimension = %d, want 3", len(queryVector))
			}
			return want, nil
		},
	}

	retriever, err := NewRetriever(NewMockEmbedder(3), store, 4)
	if err != nil {
		t.Fatalf("NewRetriever() error = %v", err)
	}

	got, err := retriever.Retrieve(ctx, "how do I stop burning out?")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Retrieve() returned %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Chunk.ID != want[i].Chunk.ID {
			t.Errorf("result %d = %s, want %s", i, got[i].Chunk.ID, want[i].Chunk.ID)
		}
	}
	if store.lastTopK != 4 {
		t.Errorf("search topK = %d, want 4", store.lastTopK)
	}
}

func TestRetrieve_emptyQuery(t *testing.T) {
	retriever, _ := NewRetriever(NewMockEmbedder(3), &mockVectorStore{}, 4)
	if _, err := retriever.Retrieve(context.Background(), ""); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Retrieve(\"\") error = %v, want ErrEmptyQuery", err)
	}
}

func TestEmbeddingError(t *testing.T) {
	embedder := NewMockEmbedder(3)
	embedder.Error = ErrEmbeddingFailed

	retriever, _ := NewRetriever(embedder, &mockVectorStore{}, 4)
	_, err := retriever.Retrieve(context.Background(), "test query")
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Errorf("expected embedding error to propagate, got %v", err)
	}
}

func TestSearchError(t *testing.T) {
	store := &mockVectorStore{
		searchFunc: func(ctx context.Context, queryVector []float32, topK int) ([]RetrievalResult, error) {
			return nil, ErrSearchFailed
		},
	}

	retriever, _ := NewRetriever(NewMockEmbedder(3), store, 4)
	_, err := retriever.Retrieve(context.Background(), "test query")
	if !errors.Is(err, ErrSearchFailed) {
		t.Errorf("expected search error to propagate, got %v", err)
	}
}
