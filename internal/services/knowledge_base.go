package services

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/metrics"
)

type SearchRequest struct {
	Query  string
	Limit  int
	Rerank bool
}

// SearchHit is a stored project returned by semantic search. Score is 0-100.
type SearchHit struct {
	ProjectID string
	Text      string
	Score     float64
	Reasoning string
	Metadata  map[string]any
}

// KnowledgeBase stores project texts and answers semantic queries over them.
type KnowledgeBase interface {
	Initialize(ctx context.Context) error
	Upsert(ctx context.Context, projectID, text string, metadata map[string]any) error
	Search(ctx context.Context, req SearchRequest) ([]SearchHit, error)
	Delete(ctx context.Context, projectID string) error
}

type knowledgeBase struct {
	embedder            Embedder
	index               QdrantService
	reranker            Reranker
	candidateMultiplier int
	logger              *zap.Logger
}

// NewKnowledgeBase combines an embedder, a vector index and an optional reranker.
// When reranking, the vector stage fetches limit*candidateMultiplier candidates.
func NewKnowledgeBase(embedder Embedder, index QdrantService, reranker Reranker, candidateMultiplier int, log *zap.Logger) KnowledgeBase {
	if candidateMultiplier < 1 {
		candidateMultiplier = 1
	}
	return &knowledgeBase{
		embedder:            embedder,
		index:               index,
		reranker:            reranker,
		candidateMultiplier: candidateMultiplier,
		logger:              log.Named("knowledge_base"),
	}
}

func (kb *knowledgeBase) Initialize(ctx context.Context) error {
	return kb.index.InitCollection(ctx)
}

func (kb *knowledgeBase) Upsert(ctx context.Context, projectID, text string, metadata map[string]any) error {
	embedding, err := kb.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed project %s: %w", projectID, err)
	}

	if err := kb.index.UpsertProject(ctx, projectID, text, metadata, embedding); err != nil {
		return fmt.Errorf("store project %s: %w", projectID, err)
	}
	return nil
}

func (kb *knowledgeBase) Search(ctx context.Context, req SearchRequest) (hits []SearchHit, err error) {
	rerank := req.Rerank && kb.reranker != nil
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.KnowledgeBaseSearchesTotal.WithLabelValues(strconv.FormatBool(rerank), status).Inc()
	}()

	if req.Limit <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d: %w", req.Limit, ErrInvalidArgument)
	}

	embedding, err := kb.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetch := req.Limit
	if rerank {
		fetch = req.Limit * kb.candidateMultiplier
	}

	results, err := kb.index.SearchSimilar(ctx, embedding, fetch)
	if err != nil {
		return nil, err
	}

	hits = make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			ProjectID: r.ProjectID,
			Text:      r.Text,
			Score:     similarityToScore(r.Score),
			Metadata:  r.Metadata,
		})
	}

	if !rerank || len(hits) == 0 {
		return capHits(hits, req.Limit), nil
	}

	reranked, err := kb.reranker.Rerank(ctx, req.Query, hits, req.Limit)
	if err != nil {
		kb.logger.Warn("rerank failed, keeping vector order",
			zap.Int("candidates", len(hits)),
			zap.Error(err),
		)
		return capHits(hits, req.Limit), nil
	}
	return reranked, nil
}

func (kb *knowledgeBase) Delete(ctx context.Context, projectID string) error {
	return kb.index.DeleteProject(ctx, projectID)
}

// similarityToScore maps cosine similarity onto the 0-100 scale used for thresholds.
func similarityToScore(similarity float32) float64 {
	return clampScore(math.Round(float64(similarity)*10000) / 100)
}

func clampScore(score float64) float64 {
	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

func capHits(hits []SearchHit, limit int) []SearchHit {
	if len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
