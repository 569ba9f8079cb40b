package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/models"
)

const (
	DefaultThreshold     = 60.0
	DefaultBatchSize     = 5
	DefaultSemanticLimit = 10

	matchingTemperature = 0.3
	semanticReasoning   = "Matched via semantic search against the project knowledge base"
)

type MatcherService interface {
	MatchProjects(ctx context.Context, companyProfile string, projects []models.Project, agent Agent, threshold float64) ([]models.MatchingResult, error)
	MatchProjectsBatch(ctx context.Context, companyProfile string, projects []models.Project, agent Agent, threshold float64, batchSize int) ([]models.MatchingResult, error)
	MatchProjectsWithKnowledgeBase(ctx context.Context, companyProfile string, limit int, threshold float64) ([]models.MatchingResult, error)
}

type matcherService struct {
	kb            KnowledgeBase
	promptBuilder *PromptBuilder
	logger        *zap.Logger
}

func NewMatcherService(kb KnowledgeBase, log *zap.Logger) MatcherService {
	return &matcherService{
		kb:            kb,
		promptBuilder: NewPromptBuilder(),
		logger:        log.Named("matcher"),
	}
}

// MatchProjects scores every project against the company profile, one agent
// call at a time. A project whose call or parse fails is kept with score 0.
// If ctx is cancelled midway, results computed so far are discarded and the
// context error is returned.
func (m *matcherService) MatchProjects(ctx context.Context, companyProfile string, projects []models.Project, agent Agent, threshold float64) ([]models.MatchingResult, error) {
	if err := validateMatchInput(companyProfile, projects, agent); err != nil {
		return nil, err
	}

	results, err := m.matchSequential(ctx, companyProfile, projects, agent, threshold)
	if err != nil {
		return nil, err
	}

	sortByScore(results)
	return results, nil
}

// MatchProjectsBatch runs MatchProjects over contiguous chunks of batchSize and
// re-sorts the combined results. Cancellation behaves as in MatchProjects.
func (m *matcherService) MatchProjectsBatch(ctx context.Context, companyProfile string, projects []models.Project, agent Agent, threshold float64, batchSize int) ([]models.MatchingResult, error) {
	if err := validateMatchInput(companyProfile, projects, agent); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	results := make([]models.MatchingResult, 0, len(projects))
	for start := 0; start < len(projects); start += batchSize {
		end := min(start+batchSize, len(projects))

		m.logger.Debug("matching batch",
			zap.Int("batch", start/batchSize+1),
			zap.Int("from", start),
			zap.Int("to", end),
		)

		batch, err := m.matchSequential(ctx, companyProfile, projects[start:end], agent, threshold)
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}

	sortByScore(results)
	return results, nil
}

// MatchProjectsWithKnowledgeBase finds stored projects close to the company
// profile with a single reranked search.
func (m *matcherService) MatchProjectsWithKnowledgeBase(ctx context.Context, companyProfile string, limit int, threshold float64) ([]models.MatchingResult, error) {
	if strings.TrimSpace(companyProfile) == "" {
		return nil, fmt.Errorf("company profile is required: %w", ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d: %w", limit, ErrInvalidArgument)
	}

	hits, err := m.kb.Search(ctx, SearchRequest{
		Query:  m.promptBuilder.BuildSemanticQuery(companyProfile),
		Limit:  limit,
		Rerank: true,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w: %w", ErrMatchFailure, err)
	}

	results := make([]models.MatchingResult, 0, len(hits))
	for _, hit := range hits {
		reasoning := strings.TrimSpace(hit.Reasoning)
		if reasoning == "" {
			reasoning = semanticReasoning
		}

		results = append(results, models.MatchingResult{
			ID:           hit.ProjectID,
			Score:        hit.Score,
			IsGoodFit:    hit.Score >= threshold,
			Reasoning:    reasoning,
			MatchedAreas: matchedAreas(hit.Text, companyProfile),
		})
	}

	sortByScore(results)
	return results, nil
}

func (m *matcherService) matchSequential(ctx context.Context, companyProfile string, projects []models.Project, agent Agent, threshold float64) ([]models.MatchingResult, error) {
	results := make([]models.MatchingResult, 0, len(projects))

	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := scoreFit(ctx, agent, m.promptBuilder, companyProfile, project.Description)
		if err != nil {
			m.logger.Warn("failed to analyze project",
				zap.String("project_id", project.ID),
				zap.String("agent", agent.Name()),
				zap.Error(err),
			)
			results = append(results, models.MatchingResult{
				ID:           project.ID,
				Score:        0,
				IsGoodFit:    false,
				Reasoning:    fmt.Sprintf("Error analyzing project: %v", err),
				MatchedAreas: []string{},
			})
			continue
		}

		results = append(results, models.MatchingResult{
			ID:           project.ID,
			Score:        resp.Score,
			IsGoodFit:    resp.Score >= threshold,
			Reasoning:    resp.Reasoning,
			MatchedAreas: resp.MatchedAreas,
		})
	}

	return results, nil
}

// scoreFit asks agent for a fit score of companyProfile against projectText.
func scoreFit(ctx context.Context, agent Agent, pb *PromptBuilder, companyProfile, projectText string) (*matchResponse, error) {
	raw, err := agent.Generate(ctx, pb.BuildMatchingPrompt(companyProfile, projectText), GenerateOptions{
		Temperature: matchingTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}
	return parseMatchResponse(raw)
}

func validateMatchInput(companyProfile string, projects []models.Project, agent Agent) error {
	if strings.TrimSpace(companyProfile) == "" {
		return fmt.Errorf("company profile is required: %w", ErrInvalidArgument)
	}
	if len(projects) == 0 {
		return fmt.Errorf("at least one project is required: %w", ErrInvalidArgument)
	}
	if agent == nil {
		return fmt.Errorf("agent is required: %w", ErrInvalidArgument)
	}
	return nil
}

func sortByScore(results []models.MatchingResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
