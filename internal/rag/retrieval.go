package rag

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// Retriever provides semantic retrieval of stored chunks.
type Retriever struct {
	embedder    Embedder
	vectorStore VectorStore
	topK        int
}

// NewRetriever creates a new Retriever returning up to topK results per query.
func NewRetriever(embedder Embedder, vectorStore VectorStore, topK int) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		topK:        topK,
	}, nil
}

// TopK returns the configured result count.
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve embeds query and returns the nearest chunks, ordered by ascending distance.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]RetrievalResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	embeddingRecords, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("no embedding generated for query")
	}

	results, err := r.vectorStore.Search(ctx, embeddingRecords[0].Embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search for query: %w", err)
	}

	return results, nil
}
