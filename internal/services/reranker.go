package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Reranker re-orders search hits by relevance to the query and keeps the best topK.
type Reranker interface {
	Rerank(ctx context.Context, query string, hits []SearchHit, topK int) ([]SearchHit, error)
}

type llmReranker struct {
	agent         Agent
	promptBuilder *PromptBuilder
	logger        *zap.Logger
}

// NewLLMReranker scores all candidates with a single agent call.
func NewLLMReranker(agent Agent, log *zap.Logger) Reranker {
	return &llmReranker{
		agent:         agent,
		promptBuilder: NewPromptBuilder(),
		logger:        log.Named("reranker"),
	}
}

type rerankResponse struct {
	Rankings []struct {
		Index     int     `json:"index"`
		Score     float64 `json:"score"`
		Reasoning string  `json:"reasoning"`
	} `json:"rankings"`
}

func (r *llmReranker) Rerank(ctx context.Context, query string, hits []SearchHit, topK int) ([]SearchHit, error) {
	if len(hits) == 0 {
		return hits, nil
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}

	raw, err := r.agent.Generate(ctx, r.promptBuilder.BuildRerankPrompt(query, texts), GenerateOptions{
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	var resp rerankResponse
	if err := parseJSONResponse(raw, &resp); err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	ranked := make([]SearchHit, len(hits))
	seen := make([]bool, len(hits))
	for i, h := range hits {
		ranked[i] = h
		ranked[i].Score = 0
		ranked[i].Reasoning = ""
	}

	scored := 0
	for _, rk := range resp.Rankings {
		if rk.Index < 0 || rk.Index >= len(hits) || seen[rk.Index] {
			continue
		}
		seen[rk.Index] = true
		ranked[rk.Index].Score = clampScore(rk.Score)
		ranked[rk.Index].Reasoning = rk.Reasoning
		scored++
	}

	if scored == 0 {
		return nil, fmt.Errorf("rerank returned no usable rankings: %w", ErrMalformedResponse)
	}
	if scored < len(hits) {
		r.logger.Debug("reranker skipped candidates", zap.Int("scored", scored), zap.Int("candidates", len(hits)))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return capHits(ranked, topK), nil
}
