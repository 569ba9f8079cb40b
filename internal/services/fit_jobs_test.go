package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/models"
)

type stubAnalyzer struct {
	analysis *models.FitAnalysis
	err      error
	opts     []FitOptions
}

func (s *stubAnalyzer) IsProjectGoodFit(_ context.Context, _, _ string, opts FitOptions) (*models.FitAnalysis, error) {
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

func queuedJob() *models.FitAnalysisJob {
	return &models.FitAnalysisJob{
		ID:                  uuid.New(),
		ProjectDescription:  "new rfp",
		CompanyProfile:      testProfile,
		SimilarityThreshold: 65,
		FitThreshold:        55,
		LimitSimilar:        4,
		Status:              models.StatusQueued,
	}
}

func TestProcessJob_Completes(t *testing.T) {
	job := queuedJob()
	repo := newFakeJobRepo(job)
	analyzer := &stubAnalyzer{analysis: &models.FitAnalysis{IsGoodFit: true, Confidence: 80}}
	s := NewFitJobService(repo, analyzer, zap.NewNop())

	require.NoError(t, s.ProcessJob(context.Background(), job.ID))

	stored, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, 80, stored.Result.Confidence)
	require.Len(t, analyzer.opts, 1)
	assert.Equal(t, FitOptions{SimilarityThreshold: 65, FitThreshold: 55, LimitSimilar: 4}, analyzer.opts[0])
}

func TestProcessJob_Fails(t *testing.T) {
	job := queuedJob()
	repo := newFakeJobRepo(job)
	s := NewFitJobService(repo, &stubAnalyzer{err: ErrMatchFailure}, zap.NewNop())

	err := s.ProcessJob(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrMatchFailure)

	stored, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Contains(t, *stored.ErrorMessage, ErrMatchFailure.Error())
}

func TestProcessJob_SkipsClaimedJob(t *testing.T) {
	job := queuedJob()
	job.Status = models.StatusProcessing
	repo := newFakeJobRepo(job)
	analyzer := &stubAnalyzer{analysis: &models.FitAnalysis{}}
	s := NewFitJobService(repo, analyzer, zap.NewNop())

	require.NoError(t, s.ProcessJob(context.Background(), job.ID))
	assert.Empty(t, analyzer.opts)
	assert.Equal(t, models.StatusProcessing, repo.status(job.ID))
}

func TestWorker_ProcessesEnqueuedJob(t *testing.T) {
	job := queuedJob()
	repo := newFakeJobRepo(job)
	s := NewFitJobService(repo, &stubAnalyzer{analysis: &models.FitAnalysis{IsGoodFit: true}}, zap.NewNop())

	w := NewWorker(repo, s, 2, 4, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	assert.True(t, w.EnqueueJob(job.ID))
	assert.Eventually(t, func() bool {
		return repo.status(job.ID) == models.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_PollsPendingJobs(t *testing.T) {
	job := queuedJob()
	repo := newFakeJobRepo(job)
	s := NewFitJobService(repo, &stubAnalyzer{analysis: &models.FitAnalysis{}}, zap.NewNop())

	w := NewWorker(repo, s, 1, 1, zap.NewNop()).(*worker)
	w.pollInterval = 20 * time.Millisecond
	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return repo.status(job.ID) == models.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_EnqueueAfterStop(t *testing.T) {
	repo := newFakeJobRepo()
	w := NewWorker(repo, NewFitJobService(repo, &stubAnalyzer{}, zap.NewNop()), 1, 1, zap.NewNop())
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	assert.False(t, w.EnqueueJob(uuid.New()))
}

func TestProcessJob_InterruptedJobIsRequeued(t *testing.T) {
	job := queuedJob()
	repo := newFakeJobRepo(job)
	s := NewFitJobService(repo, &stubAnalyzer{err: context.Canceled}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.ProcessJob(ctx, job.ID)
	assert.ErrorIs(t, err, context.Canceled)

	stored, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, stored.Status)
	assert.Nil(t, stored.ErrorMessage)

	pending, err := repo.FindPendingJobs(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, job.ID, pending[0].ID)
}

func TestWorker_RequeuesStaleProcessingJobs(t *testing.T) {
	stale := queuedJob()
	stale.Status = models.StatusProcessing
	stale.UpdatedAt = time.Now().Add(-time.Hour)

	fresh := queuedJob()
	fresh.Status = models.StatusProcessing
	fresh.UpdatedAt = time.Now()

	repo := newFakeJobRepo(stale, fresh)
	s := NewFitJobService(repo, &stubAnalyzer{analysis: &models.FitAnalysis{}}, zap.NewNop())

	w := NewWorker(repo, s, 1, 2, zap.NewNop()).(*worker)
	w.pollInterval = 20 * time.Millisecond
	w.staleAfter = 10 * time.Minute
	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return repo.status(stale.ID) == models.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, models.StatusProcessing, repo.status(fresh.ID))
}
