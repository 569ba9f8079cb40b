package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/project-matcher/internal/models"
)

var ErrNotFound = errors.New("record not found")

type ProjectRepository interface {
	Upsert(project *models.Project) error
	FindByID(id string) (*models.Project, error)
	Delete(id string) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// projectUpdateColumns are overwritten when a stored id is written again.
// created_at keeps its first value.
var projectUpdateColumns = []string{
	"description", "title", "agency", "status", "posted_date", "due_date",
	"url", "document_url", "budget", "award_amount", "awarded_to", "award_date",
	"naics_code", "solicitation_number", "is_bookmarked", "is_applied",
	"is_dismissed", "updated_at",
}

func upsertProject(db *gorm.DB, project *models.Project) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(projectUpdateColumns),
	}).Create(project)
}

// Upsert implements ProjectRepository.
func (r *projectRepository) Upsert(project *models.Project) error {
	err := upsertProject(r.db, project).Error
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}

	return nil
}

// FindByID implements ProjectRepository.
func (r *projectRepository) FindByID(id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return &project, nil
}

// Delete implements ProjectRepository.
func (r *projectRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&models.Project{}).Error; err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}
