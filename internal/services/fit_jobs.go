package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/repositories"
)

// FitJobService runs persisted fit analysis jobs.
type FitJobService interface {
	ProcessJob(ctx context.Context, jobID uuid.UUID) error
}

type fitJobService struct {
	jobRepo  repositories.FitJobRepository
	analyzer FitAnalyzer
	logger   *zap.Logger
}

func NewFitJobService(jobRepo repositories.FitJobRepository, analyzer FitAnalyzer, log *zap.Logger) FitJobService {
	return &fitJobService{
		jobRepo:  jobRepo,
		analyzer: analyzer,
		logger:   log.Named("fit_jobs"),
	}
}

func (s *fitJobService) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	claimed, err := s.jobRepo.Claim(jobID)
	if err != nil {
		return fmt.Errorf("failed to claim job: %w", err)
	}
	if !claimed {
		s.logger.Debug("job already taken", zap.String("job_id", jobID.String()))
		return nil
	}

	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		s.markFailed(jobID, err)
		return fmt.Errorf("failed to get job: %w", err)
	}

	s.logger.Info("fit analysis started", zap.String("job_id", jobID.String()))

	analysis, err := s.analyzer.IsProjectGoodFit(ctx, job.ProjectDescription, job.CompanyProfile, FitOptions{
		SimilarityThreshold: job.SimilarityThreshold,
		FitThreshold:        job.FitThreshold,
		LimitSimilar:        job.LimitSimilar,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			s.requeue(jobID)
			return fmt.Errorf("fit analysis interrupted: %w", err)
		}
		s.markFailed(jobID, err)
		return fmt.Errorf("failed to analyze fit: %w", err)
	}

	if err := s.jobRepo.UpdateResult(jobID, analysis); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Info("fit analysis completed",
		zap.String("job_id", jobID.String()),
		zap.Bool("good_fit", analysis.IsGoodFit),
		zap.Int("confidence", analysis.Confidence),
	)
	return nil
}

func (s *fitJobService) requeue(jobID uuid.UUID) {
	if err := s.jobRepo.Requeue(jobID); err != nil {
		s.logger.Error("failed to requeue interrupted job",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("fit analysis interrupted, job requeued", zap.String("job_id", jobID.String()))
}

func (s *fitJobService) markFailed(jobID uuid.UUID, cause error) {
	if err := s.jobRepo.UpdateError(jobID, cause.Error()); err != nil {
		s.logger.Error("failed to record job error",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
	}
}
