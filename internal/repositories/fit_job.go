package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/project-matcher/internal/models"
)

type FitJobRepository interface {
	Create(job *models.FitAnalysisJob) error
	FindByID(id uuid.UUID) (*models.FitAnalysisJob, error)
	Claim(id uuid.UUID) (bool, error)
	UpdateResult(id uuid.UUID, result *models.FitAnalysis) error
	UpdateError(id uuid.UUID, errorMsg string) error
	Requeue(id uuid.UUID) error
	RequeueStale(olderThan time.Duration) (int64, error)
	FindPendingJobs(limit int) ([]models.FitAnalysisJob, error)
}

type fitJobRepository struct {
	db *gorm.DB
}

func NewFitJobRepository(db *gorm.DB) FitJobRepository {
	return &fitJobRepository{db: db}
}

func (r *fitJobRepository) Create(job *models.FitAnalysisJob) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create fit analysis job: %w", err)
	}
	return nil
}

func (r *fitJobRepository) FindByID(id uuid.UUID) (*models.FitAnalysisJob, error) {
	var job models.FitAnalysisJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("fit analysis job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find fit analysis job: %w", err)
	}
	return &job, nil
}

// Claim moves a queued job to processing. It reports false when the job was
// not queued, so concurrent workers never run the same job twice.
func (r *fitJobRepository) Claim(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.FitAnalysisJob{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim fit analysis job: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *fitJobRepository) UpdateResult(id uuid.UUID, result *models.FitAnalysis) error {
	// Updates with a struct so the json serializer on Result is applied.
	res := r.db.Model(&models.FitAnalysisJob{ID: id}).
		Select("status", "result", "updated_at").
		Updates(&models.FitAnalysisJob{
			Status:    models.StatusCompleted,
			Result:    result,
			UpdatedAt: time.Now(),
		})

	if res.Error != nil {
		return fmt.Errorf("failed to update result: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("fit analysis job %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *fitJobRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

// Requeue hands a processing job back to the queue.
func (r *fitJobRepository) Requeue(id uuid.UUID) error {
	result := r.db.Model(&models.FitAnalysisJob{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":     models.StatusQueued,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to requeue fit analysis job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("processing fit analysis job %s: %w", id, ErrNotFound)
	}
	return nil
}

// RequeueStale puts back jobs left in processing for longer than olderThan,
// typically by a process that died mid-run.
func (r *fitJobRepository) RequeueStale(olderThan time.Duration) (int64, error) {
	result := r.db.Model(&models.FitAnalysisJob{}).
		Where("status = ? AND updated_at < ?", models.StatusProcessing, time.Now().Add(-olderThan)).
		Updates(map[string]interface{}{
			"status":     models.StatusQueued,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to requeue stale fit analysis jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *fitJobRepository) FindPendingJobs(limit int) ([]models.FitAnalysisJob, error) {
	var jobs []models.FitAnalysisJob
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return jobs, nil
}

func (r *fitJobRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.Model(&models.FitAnalysisJob{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update fit analysis job: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("fit analysis job %s: %w", id, ErrNotFound)
	}

	return nil
}
