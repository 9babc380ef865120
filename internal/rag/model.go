package rag

import (
	"context"
	"errors"
)

// Common errors for vector store operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrEmptyRecords     = errors.New("no records provided for insertion")
	ErrConnectionFailed = errors.New("failed to connect to vector store")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// Chunk is a bounded span of a source document, the unit of embedding and retrieval.
type Chunk struct {
	// ID is "{Source}:{Page}:{ChunkIndex}"; an absent page renders as "".
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
	// Page is nil for non-paged sources (CSV rows, text files).
	Page *int `json:"page,omitempty"`
	// ChunkIndex is 0-based and restarts for every source/page pair.
	ChunkIndex  int    `json:"chunk_index"`
	ContentHash string `json:"content_hash"`
}

// ChunkRecord is a chunk together with its embedding, as persisted by a VectorStore.
type ChunkRecord struct {
	Chunk
	Embedding []float32 `json:"embedding"`
}

// RetrievalResult is a chunk returned by similarity search with its distance
// to the query. Lower distance means more similar.
type RetrievalResult struct {
	Chunk    Chunk   `json:"chunk"`
	Distance float64 `json:"distance"`
}

// WriteStats summarises one StoreWriter run.
type WriteStats struct {
	// Total is the number of chunks offered to the writer.
	Total int
	// Existing is how many of them were already stored before the run.
	Existing int
	// Added is how many new chunks were embedded and inserted.
	Added int
	// Stale counts existing chunks whose stored content hash differs from the new content.
	Stale int
}

// VectorStore defines the interface for chunk storage and similarity search.
type VectorStore interface {
	// Insert adds records. Records are never updated in place.
	Insert(ctx context.Context, records []ChunkRecord) error

	// Flush ensures all pending data is persisted
	Flush(ctx context.Context) error

	// Search returns up to topK chunks nearest to queryVector, ordered by ascending distance
	Search(ctx context.Context, queryVector []float32, topK int) ([]RetrievalResult, error)

	// Query reports which IDs exist. The returned map holds only existing IDs,
	// mapped to their stored content hash.
	Query(ctx context.Context, ids []string) (map[string]string, error)

	// Count returns the number of stored chunks
	Count(ctx context.Context) (int, error)

	// Reset deletes every stored chunk
	Reset(ctx context.Context) error

	// Close releases resources and closes connections
	Close() error
}
