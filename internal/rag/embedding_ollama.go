package rag

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbedder implements the Embedder interface against a local Ollama server.
type OllamaEmbedder struct {
	embedder  embeddings.Embedder
	model     string
	dimension int
}

// NewOllamaEmbedder creates an embedder for model served at host.
func NewOllamaEmbedder(host, model string, dimension int) (*OllamaEmbedder, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if host != "" {
		opts = append(opts, ollama.WithServerURL(host))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedder: %w", err)
	}

	return &OllamaEmbedder{
		embedder:  embedder,
		model:     model,
		dimension: dimension,
	}, nil
}

// GetModel returns the embedding model identifier
func (e *OllamaEmbedder) GetModel() string {
	return e.model
}

// GetDimension returns the embedding vector dimension
func (e *OllamaEmbedder) GetDimension() int {
	return e.dimension
}

// Embed generates embeddings for the provided texts
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbeddingFailed, len(vectors), len(texts))
	}

	records := make([]EmbeddingRecord, len(texts))
	for i, v := range vectors {
		records[i] = EmbeddingRecord{
			Text:      texts[i],
			Embedding: v,
			Index:     i,
			Model:     e.model,
		}
	}
	return records, nil
}
