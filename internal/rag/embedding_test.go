package rag

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestNewOpenAIEmbedder_MissingAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedder("", "text-embedding-3-small", 1536)
	if err != ErrMissingAPIKey {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestOpenAIEmbedder_EmptyTexts(t *testing.T) {
	embedder, err := NewOpenAIEmbedder("sk-unused", "text-embedding-3-small", 1536)
	if err != nil {
		t.Fatalf("failed to create embedder: %v", err)
	}

	_, err = embedder.Embed(context.Background(), []string{})
	if err != ErrEmptyTexts {
		t.Errorf("expected ErrEmptyTexts, got %v", err)
	}
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set")
	}

	embedder, err := NewOpenAIEmbedder(apiKey, "text-embedding-3-small", 1536)
	if err != nil {
		t.Fatalf("failed to create embedder: %v", err)
	}

	texts := []string{"hello world", "test embedding"}
	records, err := embedder.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(records) != len(texts) {
		t.Errorf("expected %d records, got %d", len(texts), len(records))
	}
	for i, record := range records {
		if record.Text != texts[i] {
			t.Errorf("record %d: expected text %q, got %q", i, texts[i], record.Text)
		}
		if len(record.Embedding) != 1536 {
			t.Errorf("record %d: expected dimension 1536, got %d", i, len(record.Embedding))
		}
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		t.Skip("OLLAMA_HOST not set")
	}

	embedder, err := NewOllamaEmbedder(host, "all-minilm", 384)
	if err != nil {
		t.Fatalf("failed to create embedder: %v", err)
	}

	records, err := embedder.Embed(context.Background(), []string{"procrastination", "burnout"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(records) != 2 || len(records[0].Embedding) != 384 {
		t.Errorf("unexpected embeddings: %d records", len(records))
	}
}

func TestOllamaEmbedder_EmptyTexts(t *testing.T) {
	embedder, err := NewOllamaEmbedder("http://localhost:11434", "all-minilm", 384)
	if err != nil {
		t.Fatalf("failed to create embedder: %v", err)
	}
	if _, err := embedder.Embed(context.Background(), nil); err != ErrEmptyTexts {
		t.Errorf("expected ErrEmptyTexts, got %v", err)
	}
	if embedder.GetModel() != "all-minilm" || embedder.GetDimension() != 384 {
		t.Errorf("unexpected model/dimension: %s/%d", embedder.GetModel(), embedder.GetDimension())
	}
}

func TestMockEmbedder(t *testing.T) {
	embedder := NewMockEmbedder(16)
	ctx := context.Background()

	a, err := embedder.Embed(ctx, []string{"same", "other"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, _ := embedder.Embed(ctx, []string{"same"})

	if len(a[0].Embedding) != 16 {
		t.Fatalf("dimension = %d, want 16", len(a[0].Embedding))
	}
	if squaredL2(a[0].Embedding, b[0].Embedding) != 0 {
		t.Error("identical texts should embed identically")
	}
	if squaredL2(a[0].Embedding, a[1].Embedding) == 0 {
		t.Error("different texts should embed differently")
	}

	embedder.Vectors = map[string][]float32{"fixed": make([]float32, 16)}
	fixed, _ := embedder.Embed(ctx, []string{"fixed"})
	for _, v := range fixed[0].Embedding {
		if v != 0 {
			t.Fatal("fixed vector not used")
		}
	}

	embedder.Error = ErrEmbeddingFailed
	if _, err := embedder.Embed(ctx, []string{"x"}); !errors.Is(err, ErrEmbeddingFailed) {
		t.Errorf("expected configured error, got %v", err)
	}
}
