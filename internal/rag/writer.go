package rag

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultBatchSize bounds how many new chunks are embedded and inserted at once.
const DefaultBatchSize = 5000

// StoreWriter persists identified chunks, skipping any ID already stored.
// It is not safe for concurrent use.
type StoreWriter struct {
	embedder    Embedder
	vectorStore VectorStore
	batchSize   int
	logger      *zap.Logger
}

// WriterOption configures a StoreWriter.
type WriterOption func(*StoreWriter)

// WithBatchSize sets the embed/insert batch size. Non-positive values are ignored.
func WithBatchSize(n int) WriterOption {
	return func(w *StoreWriter) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithWriterLogger sets the logger.
func WithWriterLogger(logger *zap.Logger) WriterOption {
	return func(w *StoreWriter) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewStoreWriter creates a StoreWriter.
func NewStoreWriter(embedder Embedder, vectorStore VectorStore, opts ...WriterOption) (*StoreWriter, error) {
	if embedder == nil {
		return nil, errors.New("embedder cannot be nil")
	}
	if vectorStore == nil {
		return nil, errors.New("vector store cannot be nil")
	}

	w := &StoreWriter{
		embedder:    embedder,
		vectorStore: vectorStore,
		batchSize:   DefaultBatchSize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write stores the chunks whose IDs are not yet present, in input order.
// Chunks must already carry IDs (see AssignChunkIDs). Batches are embedded,
// inserted and flushed one at a time; on failure earlier batches stay written.
func (w *StoreWriter) Write(ctx context.Context, chunks []Chunk) (WriteStats, error) {
	stats := WriteStats{Total: len(chunks)}
	if len(chunks) == 0 {
		w.logger.Info("No new documents to add")
		return stats, nil
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		if c.ID == "" {
			return stats, fmt.Errorf("chunk %d from %s has no ID", i, c.Source)
		}
		ids[i] = c.ID
	}

	existing, err := w.vectorStore.Query(ctx, ids)
	if err != nil {
		return stats, fmt.Errorf("failed to check existing chunks: %w", err)
	}

	seen := make(map[string]bool, len(chunks))
	newChunks := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if storedHash, ok := existing[c.ID]; ok {
			stats.Existing++
			hash := c.ContentHash
			if hash == "" {
				hash = ContentHash(c.Content)
			}
			if storedHash != "" && storedHash != hash {
				stats.Stale++
				w.logger.Warn("stored chunk content differs; keeping stored version",
					zap.String("chunk_id", c.ID))
			}
			continue
		}
		// Duplicate IDs within one input keep the first occurrence.
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		newChunks = append(newChunks, c)
	}

	w.logger.Info("Number of existing documents in DB", zap.Int("existing", stats.Existing))

	if len(newChunks) == 0 {
		w.logger.Info("No new documents to add")
		return stats, nil
	}

	w.logger.Info("Adding new documents", zap.Int("count", len(newChunks)))

	for batchStart := 0; batchStart < len(newChunks); batchStart += w.batchSize {
		batchEnd := min(batchStart+w.batchSize, len(newChunks))
		batch := newChunks[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		embeddingRecords, err := w.embedder.Embed(ctx, texts)
		if err != nil {
			return stats, fmt.Errorf("failed to generate embeddings for batch starting at %d: %w", batchStart, err)
		}
		if len(embeddingRecords) != len(batch) {
			return stats, fmt.Errorf("%w: got %d embeddings for batch of %d", ErrEmbeddingFailed, len(embeddingRecords), len(batch))
		}

		records := make([]ChunkRecord, len(batch))
		for i, c := range batch {
			if c.ContentHash == "" {
				c.ContentHash = ContentHash(c.Content)
			}
			records[i] = ChunkRecord{
				Chunk:     c,
				Embedding: embeddingRecords[i].Embedding,
			}
		}

		if err := w.vectorStore.Insert(ctx, records); err != nil {
			return stats, fmt.Errorf("failed to insert batch starting at %d: %w", batchStart, err)
		}

		// Flush after each batch
		if err := w.vectorStore.Flush(ctx); err != nil {
			return stats, fmt.Errorf("failed to flush batch starting at %d: %w", batchStart, err)
		}

		stats.Added += len(batch)
		w.logger.Debug("batch written", zap.Int("start", batchStart), zap.Int("size", len(batch)))
	}

	return stats, nil
}
