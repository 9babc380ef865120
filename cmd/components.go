package cmd

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/mentor/internal/config"
	"github.com/Yates-Labs/mentor/internal/generation"
	"github.com/Yates-Labs/mentor/internal/ingest"
	"github.com/Yates-Labs/mentor/internal/logging"
	"github.com/Yates-Labs/mentor/internal/orchestrator"
	"github.com/Yates-Labs/mentor/internal/rag"
	"github.com/Yates-Labs/mentor/internal/safety"
	"go.uber.org/zap"
)

func buildEmbedder(cfg config.EmbeddingConfig) (rag.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		e, err := rag.NewOpenAIEmbedder(cfg.APIKey, cfg.Model, cfg.Dimension)
		if err != nil {
			return nil, err
		}
		return e, nil
	case config.ProviderOllama:
		e, err := rag.NewOllamaEmbedder(cfg.Host, cfg.Model, cfg.Dimension)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (rag.VectorStore, error) {
	switch cfg.Store.Backend {
	case config.BackendBadger:
		s, err := rag.NewBadgerStore(cfg.Store.Path, cfg.Embedding.Dimension, logger.Named("badger"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMilvus:
		mc := rag.DefaultMilvusConfig()
		mc.Address = cfg.Store.Milvus.Address
		mc.CollectionName = cfg.Store.Milvus.CollectionName
		mc.Dimension = cfg.Embedding.Dimension
		mc.M = cfg.Store.Milvus.M
		mc.EfConstruction = cfg.Store.Milvus.EfConstruction
		s, err := rag.NewMilvusStore(ctx, mc)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func buildGenerator(cfg config.LLMConfig) (*generation.Generator, error) {
	llmConfig := generation.LLMConfig{
		Model:       cfg.Model,
		Host:        cfg.Host,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		APIKey:      cfg.APIKey,
	}

	var (
		llm generation.LLM
		err error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		llm, err = generation.NewOpenAILLM(llmConfig)
	case config.ProviderOllama:
		llm, err = generation.NewOllamaLLM(llmConfig)
	default:
		err = fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}
	return generation.NewGenerator(llm, llmConfig), nil
}

// buildPipeline assembles the query pipeline. The returned store must be closed by the caller.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger, audit *logging.Audit) (*orchestrator.Pipeline, rag.VectorStore, error) {
	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	retriever, err := rag.NewRetriever(embedder, store, cfg.Retrieval.TopK)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	prompts, err := generation.NewPromptBuilder(cfg.Prompt.Template)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	generator, err := buildGenerator(cfg.LLM)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	pipeline, err := orchestrator.NewPipeline(
		safety.NewFilter(cfg.Safety.CrisisKeywords, cfg.Safety.CrisisResponse),
		retriever,
		rag.NewRelevanceGate(cfg.Retrieval.Threshold()),
		prompts,
		generator,
		orchestrator.WithLogger(logger.Named("pipeline")),
		orchestrator.WithAudit(audit),
	)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	if n, err := store.Count(ctx); err == nil && n == 0 {
		logger.Warn("vector store is empty; run `mentor ingest` to add documents")
	}
	return pipeline, store, nil
}

// buildIngestor assembles the ingestion pipeline. The returned store must be closed by the caller.
func buildIngestor(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*orchestrator.Ingestor, *ingest.Loader, rag.VectorStore, error) {
	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	chunker, err := rag.NewChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	writer, err := rag.NewStoreWriter(embedder, store,
		rag.WithBatchSize(cfg.Store.BatchSize),
		rag.WithWriterLogger(logger.Named("writer")),
	)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	loader := ingest.NewLoader(
		ingest.WithLogger(logger.Named("loader")),
		ingest.WithExtensions(cfg.Ingest.Extensions),
	)

	ingestor, err := orchestrator.NewIngestor(loader, chunker, writer, store,
		orchestrator.WithIngestLogger(logger.Named("ingest")))
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return ingestor, loader, store, nil
}
