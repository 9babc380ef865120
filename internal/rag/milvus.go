package rag

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Milvus field names
const (
	fieldChunkID     = "chunk_id"
	fieldSource      = "source"
	fieldPage        = "page"
	fieldChunkIndex  = "chunk_index"
	fieldContent     = "content"
	fieldContentHash = "content_hash"
	fieldEmbedding   = "embedding"

	// noPage stores an absent page in the int64 page column
	noPage int64 = -1

	// queryBatchSize bounds the number of IDs in one "in" expression
	queryBatchSize = 1000
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension (e.g., 384 for all-minilm)

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
	Ef             int // HNSW ef at search time (default: 64)
}

// DefaultMilvusConfig returns the default configuration for a local Milvus.
func DefaultMilvusConfig() MilvusConfig {
	return MilvusConfig{
		Address:        "localhost:19530",
		CollectionName: "mentor_chunks",
		Dimension:      384,
		M:              16,
		EfConstruction: 256,
		Ef:             64,
	}
}

// MilvusStore implements VectorStore interface using Milvus
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore creates a new Milvus vector store instance
// Connects to Milvus and ensures the collection exists with proper schema
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}
	if config.Ef <= 0 {
		config.Ef = 64
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !has {
		if err := m.createCollection(ctx); err != nil {
			return err
		}
	}

	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

func (m *MilvusStore) createCollection(ctx context.Context) error {
	// Chunk IDs are deterministic, so they are the primary key
	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         false,
		Fields: []*entity.Field{
			{
				Name:       fieldChunkID,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "2048",
				},
			},
			{
				Name:     fieldSource,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "2048",
				},
			},
			{
				Name:     fieldPage,
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     fieldChunkIndex,
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     fieldContent,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     fieldContentHash,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     fieldEmbedding,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(m.config.Dimension),
				},
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// L2 keeps distances comparable with the local store
	idx, err := entity.NewIndexHNSW(entity.L2, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, fieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Insert adds chunk records to Milvus
func (m *MilvusStore) Insert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	ids := make([]string, len(records))
	sources := make([]string, len(records))
	pages := make([]int64, len(records))
	indexes := make([]int64, len(records))
	contents := make([]string, len(records))
	hashes := make([]string, len(records))
	embeddings := make([][]float32, len(records))

	for i, rec := range records {
		if len(rec.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: chunk %s: expected %d, got %d", ErrInvalidDimension, rec.ID, m.config.Dimension, len(rec.Embedding))
		}
		ids[i] = rec.ID
		sources[i] = rec.Source
		pages[i] = noPage
		if rec.Page != nil {
			pages[i] = int64(*rec.Page)
		}
		indexes[i] = int64(rec.ChunkIndex)
		contents[i] = rec.Content
		hashes[i] = rec.ContentHash
		embeddings[i] = rec.Embedding
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(fieldChunkID, ids),
		entity.NewColumnVarChar(fieldSource, sources),
		entity.NewColumnInt64(fieldPage, pages),
		entity.NewColumnInt64(fieldChunkIndex, indexes),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnVarChar(fieldContentHash, hashes),
		entity.NewColumnFloatVector(fieldEmbedding, m.config.Dimension, embeddings),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	return nil
}

// Flush ensures inserted data is persisted
func (m *MilvusStore) Flush(ctx context.Context) error {
	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}
	return nil
}

// Search performs top-K similarity search
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int) ([]RetrievalResult, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(m.config.Ef)
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(queryVector)}
	outputFields := []string{fieldChunkID, fieldSource, fieldPage, fieldChunkIndex, fieldContent, fieldContentHash}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		"",
		outputFields,
		vectors,
		fieldEmbedding,
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []RetrievalResult{}, nil
	}

	hits := make([]RetrievalResult, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		var chunk Chunk
		for _, field := range results[0].Fields {
			if err := readChunkField(&chunk, field, i); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
			}
		}
		hits = append(hits, RetrievalResult{
			Chunk:    chunk,
			Distance: float64(results[0].Scores[i]),
		})
	}

	return hits, nil
}

// readChunkField copies row i of a result column into chunk.
func readChunkField(chunk *Chunk, field entity.Column, i int) error {
	switch field.Name() {
	case fieldChunkID, fieldSource, fieldContent, fieldContentHash:
		col, ok := field.(*entity.ColumnVarChar)
		if !ok {
			return fmt.Errorf("unexpected column type for %s", field.Name())
		}
		v := col.Data()[i]
		switch field.Name() {
		case fieldChunkID:
			chunk.ID = v
		case fieldSource:
			chunk.Source = v
		case fieldContent:
			chunk.Content = v
		case fieldContentHash:
			chunk.ContentHash = v
		}
	case fieldPage, fieldChunkIndex:
		col, ok := field.(*entity.ColumnInt64)
		if !ok {
			return fmt.Errorf("unexpected column type for %s", field.Name())
		}
		v := col.Data()[i]
		if field.Name() == fieldChunkIndex {
			chunk.ChunkIndex = int(v)
		} else if v != noPage {
			page := int(v)
			chunk.Page = &page
		}
	}
	return nil
}

// Query returns the stored content hash of every ID that exists.
func (m *MilvusStore) Query(ctx context.Context, ids []string) (map[string]string, error) {
	found := make(map[string]string)

	for start := 0; start < len(ids); start += queryBatchSize {
		end := min(start+queryBatchSize, len(ids))

		results, err := m.client.Query(
			ctx,
			m.config.CollectionName,
			nil, // partition names
			idFilter(ids[start:end]),
			[]string{fieldChunkID, fieldContentHash},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query chunks: %w", err)
		}

		var gotIDs, gotHashes []string
		for _, column := range results {
			col, ok := column.(*entity.ColumnVarChar)
			if !ok {
				continue
			}
			switch column.Name() {
			case fieldChunkID:
				gotIDs = col.Data()
			case fieldContentHash:
				gotHashes = col.Data()
			}
		}
		for i, id := range gotIDs {
			hash := ""
			if i < len(gotHashes) {
				hash = gotHashes[i]
			}
			found[id] = hash
		}
	}

	return found, nil
}

// idFilter builds a boolean expression matching any of ids.
func idFilter(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	return fmt.Sprintf("%s in [%s]", fieldChunkID, strings.Join(quoted, ", "))
}

// Count returns the collection row count
func (m *MilvusStore) Count(ctx context.Context) (int, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get stats: %w", err)
	}
	n, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("failed to parse row count %q: %w", stats["row_count"], err)
	}
	return n, nil
}

// Reset drops and recreates the collection
func (m *MilvusStore) Reset(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if has {
		if err := m.client.DropCollection(ctx, m.config.CollectionName); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
	}
	return m.ensureCollection(ctx)
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
