package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yates-Labs/mentor/internal/ingest"
	"github.com/Yates-Labs/mentor/internal/rag"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrNoPaths       = errors.New("no data paths given")
	ErrNothingLoaded = errors.New("no documents could be loaded")
)

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Documents int
	Chunks    int
	Stats     rag.WriteStats
	// LoadErrors holds the combined per-file errors of files that were
	// skipped. The run still succeeds when other files loaded.
	LoadErrors error
}

// Ingestor loads source files, chunks them and writes new chunks to the store.
type Ingestor struct {
	loader  *ingest.Loader
	chunker *rag.Chunker
	writer  *rag.StoreWriter
	store   rag.VectorStore
	logger  *zap.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithIngestLogger sets the ingestion logger.
func WithIngestLogger(l *zap.Logger) IngestorOption {
	return func(in *Ingestor) {
		if l != nil {
			in.logger = l
		}
	}
}

// NewIngestor creates an ingestion pipeline. store is only used for resets;
// writes go through writer.
func NewIngestor(loader *ingest.Loader, chunker *rag.Chunker, writer *rag.StoreWriter, store rag.VectorStore, opts ...IngestorOption) (*Ingestor, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if chunker == nil {
		return nil, fmt.Errorf("chunker cannot be nil")
	}
	if writer == nil {
		return nil, fmt.Errorf("store writer cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}

	in := &Ingestor{
		loader:  loader,
		chunker: chunker,
		writer:  writer,
		store:   store,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

// Ingest loads every path, splits the documents into identified chunks and
// stores the ones not yet present. With reset the store is cleared first.
// Files that fail to load are reported in the result; the run fails only
// when nothing loaded at all or the store rejects a write.
func (in *Ingestor) Ingest(ctx context.Context, paths []string, reset bool) (IngestResult, error) {
	var result IngestResult
	if len(paths) == 0 {
		return result, ErrNoPaths
	}

	if reset {
		in.logger.Info("Clearing Database")
		if err := in.store.Reset(ctx); err != nil {
			return result, fmt.Errorf("failed to reset store: %w", err)
		}
	}

	// Step 1: Load documents
	docs, loadErr := in.loader.LoadAll(paths)
	result.Documents = len(docs)
	result.LoadErrors = loadErr
	for _, err := range multierr.Errors(loadErr) {
		in.logger.Warn("skipped file", zap.Error(err))
	}
	if len(docs) == 0 && loadErr != nil {
		return result, fmt.Errorf("%w: %w", ErrNothingLoaded, loadErr)
	}
	in.logger.Info("loaded documents", zap.Int("documents", len(docs)))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("context cancelled after loading: %w", err)
	}

	// Step 2: Split and identify
	chunks, err := in.chunker.Split(docs)
	if err != nil {
		return result, fmt.Errorf("failed to split documents: %w", err)
	}
	chunks = rag.AssignChunkIDs(chunks)
	result.Chunks = len(chunks)
	in.logger.Debug("split documents", zap.Int("chunks", len(chunks)))

	// Step 3: Write new chunks
	stats, err := in.writer.Write(ctx, chunks)
	result.Stats = stats
	if err != nil {
		return result, fmt.Errorf("failed to write chunks: %w", err)
	}

	in.logger.Info("ingestion complete",
		zap.Int("documents", result.Documents),
		zap.Int("chunks", result.Chunks),
		zap.Int("existing", stats.Existing),
		zap.Int("added", stats.Added),
		zap.Int("stale", stats.Stale))
	return result, nil
}
