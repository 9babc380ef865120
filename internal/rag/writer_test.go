package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func pagedChunks(source string, pages ...int) []Chunk {
	var chunks []Chunk
	for _, p := range pages {
		page := p
		chunks = append(chunks, Chunk{
			Source:  source,
			Page:    &page,
			Content: fmt.Sprintf("%s page %d chunk %d", source, p, len(chunks)),
		})
	}
	return AssignChunkIDs(chunks)
}

func TestNewStoreWriter(t *testing.T) {
	if _, err := NewStoreWriter(nil, &mockVectorStore{}); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := NewStoreWriter(NewMockEmbedder(4), nil); err == nil {
		t.Error("expected error for nil vector store")
	}
}

func TestStoreWriter_IdempotentOnBadger(t *testing.T) {
	ctx := context.Background()
	store := newTestBadgerStore(t, 8)
	embedder := NewMockEmbedder(8)

	writer, err := NewStoreWriter(embedder, store)
	if err != nil {
		t.Fatalf("NewStoreWriter() error = %v", err)
	}

	chunks := pagedChunks("guide.pdf", 1, 1, 1, 2)

	first, err := writer.Write(ctx, chunks)
	if err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if first.Added != 4 || first.Existing != 0 {
		t.Errorf("first run stats = %+v, want 4 added", first)
	}

	second, err := writer.Write(ctx, chunks)
	if err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	if second.Added != 0 || second.Existing != 4 || second.Stale != 0 {
		t.Errorf("second run stats = %+v, want 0 added, 4 existing", second)
	}
	if len(embedder.Calls) != 1 {
		t.Errorf("embedder called %d times, want 1", len(embedder.Calls))
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 4 {
		t.Errorf("Count() = %d, want 4", n)
	}
}

func TestStoreWriter_OnlyNewChunksEmbedded(t *testing.T) {
	ctx := context.Background()
	store := &mockVectorStore{}
	embedder := NewMockEmbedder(4)
	writer, _ := NewStoreWriter(embedder, store)

	if _, err := writer.Write(ctx, pagedChunks("a.pdf", 1, 1)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	stats, err := writer.Write(ctx, pagedChunks("a.pdf", 1, 1, 1))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if stats.Added != 1 || stats.Existing != 2 {
		t.Errorf("stats = %+v, want 1 added, 2 existing", stats)
	}
	last := embedder.Calls[len(embedder.Calls)-1]
	if len(last) != 1 {
		t.Errorf("last embed call had %d texts, want 1", len(last))
	}
	if _, ok := store.records["a.pdf:1:2"]; !ok {
		t.Error("new chunk a.pdf:1:2 not stored")
	}
}

func TestStoreWriter_Batches(t *testing.T) {
	ctx := context.Background()
	store := &mockVectorStore{}
	writer, _ := NewStoreWriter(NewMockEmbedder(4), store, WithBatchSize(2))

	stats, err := writer.Write(ctx, pagedChunks("b.pdf", 1, 1, 1, 1, 1))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if stats.Added != 5 {
		t.Errorf("Added = %d, want 5", stats.Added)
	}
	if store.insertCalls != 3 || store.flushCalls != 3 {
		t.Errorf("insert/flush calls = %d/%d, want 3/3", store.insertCalls, store.flushCalls)
	}
}

func TestStoreWriter_FailingBatchKeepsEarlierBatches(t *testing.T) {
	ctx := context.Background()
	store := &mockVectorStore{}
	calls := 0
	store.insertFunc = func(ctx context.Context, records []ChunkRecord) error {
		calls++
		if calls == 2 {
			return ErrInsertFailed
		}
		if store.records == nil {
			store.records = make(map[string]ChunkRecord)
		}
		for _, r := range records {
			store.records[r.ID] = r
		}
		return nil
	}
	writer, _ := NewStoreWriter(NewMockEmbedder(4), store, WithBatchSize(2))

	stats, err := writer.Write(ctx, pagedChunks("c.pdf", 1, 1, 1, 1))
	if !errors.Is(err, ErrInsertFailed) {
		t.Fatalf("Write() error = %v, want ErrInsertFailed", err)
	}
	if stats.Added != 2 || len(store.records) != 2 {
		t.Errorf("added = %d, stored = %d; want first batch of 2 kept", stats.Added, len(store.records))
	}
}

func TestStoreWriter_StaleContentFlagged(t *testing.T) {
	ctx := context.Background()
	store := newTestBadgerStore(t, 4)
	core, logs := observer.New(zapcore.WarnLevel)
	writer, _ := NewStoreWriter(NewMockEmbedder(4), store, WithWriterLogger(zap.New(core)))

	original := pagedChunks("d.pdf", 1)
	if _, err := writer.Write(ctx, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	edited := []Chunk{{Source: "d.pdf", Page: original[0].Page, Content: "rewritten text"}}
	stats, err := writer.Write(ctx, AssignChunkIDs(edited))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if stats.Stale != 1 || stats.Added != 0 {
		t.Errorf("stats = %+v, want 1 stale, 0 added", stats)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one stale warning, got %d", logs.Len())
	}

	found, _ := store.Query(ctx, []string{original[0].ID})
	if found[original[0].ID] != original[0].ContentHash {
		t.Error("stale chunk was rewritten")
	}
}

func TestStoreWriter_EmptyInput(t *testing.T) {
	embedder := NewMockEmbedder(4)
	writer, _ := NewStoreWriter(embedder, &mockVectorStore{})

	stats, err := writer.Write(context.Background(), nil)
	if err != nil {
		t.Fatalf("Write(nil) error = %v", err)
	}
	if stats != (WriteStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if len(embedder.Calls) != 0 {
		t.Error("embedder should not be called for empty input")
	}
}

func TestStoreWriter_RequiresIDs(t *testing.T) {
	writer, _ := NewStoreWriter(NewMockEmbedder(4), &mockVectorStore{})
	if _, err := writer.Write(context.Background(), []Chunk{{Content: "x"}}); err == nil {
		t.Error("expected error for chunk without ID")
	}
}

func TestStoreWriter_QueryError(t *testing.T) {
	store := &mockVectorStore{
		queryFunc: func(ctx context.Context, ids []string) (map[string]string, error) {
			return nil, ErrConnectionFailed
		},
	}
	writer, _ := NewStoreWriter(NewMockEmbedder(4), store)
	if _, err := writer.Write(context.Background(), pagedChunks("e.pdf", 1)); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Write() error = %v, want ErrConnectionFailed", err)
	}
}
