package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/models"
)

const (
	DefaultSimilarityThreshold = 70.0
	DefaultFitThreshold        = 60.0
	DefaultLimitSimilar        = 10

	// goodFitMajority is the share of good-fit neighbours needed for a positive verdict.
	goodFitMajority = 50.0
)

type FitOptions struct {
	SimilarityThreshold float64
	FitThreshold        float64
	LimitSimilar        int
}

func DefaultFitOptions() FitOptions {
	return FitOptions{
		SimilarityThreshold: DefaultSimilarityThreshold,
		FitThreshold:        DefaultFitThreshold,
		LimitSimilar:        DefaultLimitSimilar,
	}
}

type FitAnalyzer interface {
	IsProjectGoodFit(ctx context.Context, projectDescription, companyProfile string, opts FitOptions) (*models.FitAnalysis, error)
}

type fitAnalyzer struct {
	kb            KnowledgeBase
	agent         Agent
	promptBuilder *PromptBuilder
	logger        *zap.Logger
}

func NewFitAnalyzer(kb KnowledgeBase, agent Agent, log *zap.Logger) FitAnalyzer {
	return &fitAnalyzer{
		kb:            kb,
		agent:         agent,
		promptBuilder: NewPromptBuilder(),
		logger:        log.Named("fit_analyzer"),
	}
}

// IsProjectGoodFit judges a new project by how well the company fits the most
// similar stored projects. Candidates whose scoring fails are left out of the
// statistics entirely, unlike MatchProjects which keeps them at score 0.
func (f *fitAnalyzer) IsProjectGoodFit(ctx context.Context, projectDescription, companyProfile string, opts FitOptions) (*models.FitAnalysis, error) {
	if strings.TrimSpace(projectDescription) == "" {
		return nil, fmt.Errorf("project description is required: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(companyProfile) == "" {
		return nil, fmt.Errorf("company profile is required: %w", ErrInvalidArgument)
	}
	if opts.LimitSimilar <= 0 {
		return nil, fmt.Errorf("limitSimilar must be positive, got %d: %w", opts.LimitSimilar, ErrInvalidArgument)
	}

	hits, err := f.kb.Search(ctx, SearchRequest{
		Query:  projectDescription,
		Limit:  opts.LimitSimilar,
		Rerank: true,
	})
	if err != nil {
		return nil, fmt.Errorf("similar project search: %w: %w", ErrMatchFailure, err)
	}

	var candidates []SearchHit
	for _, hit := range hits {
		if hit.Score >= opts.SimilarityThreshold {
			candidates = append(candidates, hit)
		}
	}

	if len(candidates) == 0 {
		f.logger.Info("no similar projects above threshold",
			zap.Int("hits", len(hits)),
			zap.Float64("similarity_threshold", opts.SimilarityThreshold),
		)
		return noFitAnalysis(fmt.Sprintf(
			"No similar projects found in the knowledge base above the similarity threshold of %g.",
			opts.SimilarityThreshold)), nil
	}

	similar := make([]models.SimilarProject, 0, len(candidates))
	for _, hit := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := scoreFit(ctx, f.agent, f.promptBuilder, companyProfile, hit.Text)
		if err != nil {
			f.logger.Warn("failed to score similar project, dropping it",
				zap.String("project_id", hit.ProjectID),
				zap.Error(err),
			)
			continue
		}
		if !resp.HasScore {
			f.logger.Warn("similar project reply has no score, dropping it",
				zap.String("project_id", hit.ProjectID),
				zap.Error(ErrMalformedResponse),
			)
			continue
		}

		similar = append(similar, models.SimilarProject{
			ID:              hit.ProjectID,
			Similarity:      hit.Score,
			CompanyFitScore: resp.Score,
			IsCompanyFit:    resp.Score >= opts.FitThreshold,
		})
	}

	if len(similar) == 0 {
		return noFitAnalysis("Unable to analyze similar projects against the company profile."), nil
	}

	return aggregateFit(similar), nil
}

func aggregateFit(similar []models.SimilarProject) *models.FitAnalysis {
	total := len(similar)
	goodFit := 0
	scoreSum := 0.0
	for _, sp := range similar {
		if sp.IsCompanyFit {
			goodFit++
		}
		scoreSum += sp.CompanyFitScore
	}

	percentage := float64(goodFit) / float64(total) * 100
	average := scoreSum / float64(total)
	isGoodFit := percentage >= goodFitMajority

	return &models.FitAnalysis{
		IsGoodFit:       isGoodFit,
		Confidence:      int(math.Round(percentage)),
		Reasoning:       fitReasoning(isGoodFit, percentage, average, total, goodFit),
		SimilarProjects: similar,
		Statistics: models.FitStatistics{
			TotalSimilarProjects: total,
			GoodFitProjects:      goodFit,
			GoodFitPercentage:    round2(percentage),
			AverageFitScore:      round2(average),
		},
	}
}

func fitReasoning(isGoodFit bool, percentage, average float64, total, goodFit int) string {
	if isGoodFit {
		return fmt.Sprintf(
			"This project appears to be a good fit. The company was a good fit for %d of %d similar projects (%.0f%%), with an average fit score of %.0f.",
			goodFit, total, math.Round(percentage), math.Round(average))
	}
	return fmt.Sprintf(
		"This project may not be a good fit. The company was a good fit for only %d of %d similar projects (%.0f%%), with an average fit score of %.0f.",
		goodFit, total, math.Round(percentage), math.Round(average))
}

func noFitAnalysis(reasoning string) *models.FitAnalysis {
	return &models.FitAnalysis{
		IsGoodFit:       false,
		Confidence:      0,
		Reasoning:       reasoning,
		SimilarProjects: []models.SimilarProject{},
		Statistics:      models.FitStatistics{},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
