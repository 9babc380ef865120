// Package orchestrator wires loading, chunking, storage, safety, retrieval and
// generation into the ingestion and query pipelines.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Yates-Labs/mentor/internal/generation"
	"github.com/Yates-Labs/mentor/internal/logging"
	"github.com/Yates-Labs/mentor/internal/rag"
	"github.com/Yates-Labs/mentor/internal/safety"
	"go.uber.org/zap"
)

var (
	ErrEmptyQuestion = errors.New("question cannot be empty")
)

// Answer is the outcome of one question.
type Answer struct {
	// Text is the generated response, or the crisis response when Intercepted.
	Text string
	// Sources lists the IDs of the chunks given to the model, in retrieval
	// order without duplicates. Empty unless Relevant.
	Sources []string
	// Relevant reports whether retrieved context passed the relevance gate.
	Relevant bool
	// Intercepted reports whether the safety filter replaced generation.
	Intercepted bool
}

// Pipeline answers questions: safety check, retrieval, relevance gate,
// prompt assembly and generation.
type Pipeline struct {
	filter    *safety.Filter
	retriever *rag.Retriever
	gate      rag.RelevanceGate
	prompts   *generation.PromptBuilder
	generator *generation.Generator
	audit     *logging.Audit
	logger    *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithAudit sets the audit log that records queries, responses and crisis events.
func WithAudit(a *logging.Audit) PipelineOption {
	return func(p *Pipeline) {
		if a != nil {
			p.audit = a
		}
	}
}

// NewPipeline creates a query pipeline from its stages.
func NewPipeline(
	filter *safety.Filter,
	retriever *rag.Retriever,
	gate rag.RelevanceGate,
	prompts *generation.PromptBuilder,
	generator *generation.Generator,
	opts ...PipelineOption,
) (*Pipeline, error) {
	if filter == nil {
		return nil, fmt.Errorf("safety filter cannot be nil")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever cannot be nil")
	}
	if prompts == nil {
		return nil, fmt.Errorf("prompt builder cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}

	p := &Pipeline{
		filter:    filter,
		retriever: retriever,
		gate:      gate,
		prompts:   prompts,
		generator: generator,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.audit == nil {
		p.audit = logging.NewAudit(nil)
	}
	return p, nil
}

// Ask answers question given the prior turns of the conversation.
// Crisis input is answered with the fixed crisis response; neither the
// store nor the model is consulted.
func (p *Pipeline) Ask(ctx context.Context, question string, history []generation.ConversationTurn) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}

	p.audit.Query(question)

	if verdict := p.filter.Evaluate(question); verdict.State == safety.Intercepted {
		p.audit.Crisis(verdict.Keyword)
		p.logger.Warn("crisis keyword detected; skipping generation")
		resp := p.filter.Response()
		p.audit.Response(resp)
		return Answer{Text: resp, Intercepted: true}, nil
	}

	// Stage 1: Retrieval
	results, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieval failed: %w", err)
	}
	p.logger.Debug("retrieved context", zap.Int("results", len(results)))

	// Stage 2: Relevance gate
	relevant := p.gate.IsRelevant(results)
	if len(results) > 0 {
		p.logger.Debug("relevance check",
			zap.Float64("best_distance", results[0].Distance),
			zap.Float64("threshold", p.gate.Threshold),
			zap.Bool("relevant", relevant))
	}
	var contextResults []rag.RetrievalResult
	if relevant {
		contextResults = results
	}

	// Stage 3: Prompt assembly
	if !p.prompts.UsesHistory() {
		history = nil
	}
	prompt, err := p.prompts.Build(question, contextResults, history)
	if err != nil {
		return Answer{}, fmt.Errorf("prompt assembly failed: %w", err)
	}
	p.logger.Debug("assembled prompt", zap.Int("characters", len(prompt)))

	// Stage 4: Generation
	text, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}

	sources := sourceIDs(contextResults)
	p.audit.Response(text)
	p.audit.Sources(sources)

	return Answer{
		Text:     text,
		Sources:  sources,
		Relevant: relevant,
	}, nil
}

// sourceIDs returns chunk IDs in order with duplicates removed.
func sourceIDs(results []rag.RetrievalResult) []string {
	ids := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if seen[r.Chunk.ID] {
			continue
		}
		seen[r.Chunk.ID] = true
		ids = append(ids, r.Chunk.ID)
	}
	return ids
}
