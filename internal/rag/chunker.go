package rag

import (
	"errors"
	"fmt"

	"github.com/Yates-Labs/mentor/internal/ingest"
	"github.com/tmc/langchaingo/textsplitter"
)

var (
	ErrInvalidChunkSize = errors.New("invalid chunk size")
)

// Chunker splits documents into overlapping chunks with a recursive character splitter.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewChunker creates a Chunker. size and overlap are measured in characters.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidChunkSize, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunkSize, overlap, size)
	}

	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
	}, nil
}

// Split chunks every document in order. Each chunk copies its document's source
// and page; IDs are not assigned. Empty documents yield nothing.
func (c *Chunker) Split(docs []ingest.Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		parts, err := c.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to split %s: %w", doc.Metadata.Source, err)
		}
		for _, part := range parts {
			chunks = append(chunks, Chunk{
				Content: part,
				Source:  doc.Metadata.Source,
				Page:    doc.Metadata.Page,
			})
		}
	}
	return chunks, nil
}
