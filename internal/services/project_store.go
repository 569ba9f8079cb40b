package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/models"
	"alfredoptarigan/project-matcher/internal/repositories"
)

type ProjectStore interface {
	Initialize(ctx context.Context) error
	StoreProject(ctx context.Context, project *models.Project, metadata map[string]any) error
	StoreProjects(ctx context.Context, projects []models.Project) *models.BatchStoreResult
	GetProject(ctx context.Context, id string) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type projectStore struct {
	kb      KnowledgeBase
	catalog repositories.ProjectRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewProjectStore writes projects to the knowledge base and mirrors them into
// the catalog. The knowledge base is authoritative: catalog failures are only logged.
func NewProjectStore(kb KnowledgeBase, catalog repositories.ProjectRepository, log *zap.Logger) ProjectStore {
	return &projectStore{
		kb:      kb,
		catalog: catalog,
		logger:  log.Named("project_store"),
		now:     time.Now,
	}
}

func (s *projectStore) Initialize(ctx context.Context) error {
	if err := s.kb.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize knowledge base: %w", err)
	}
	return nil
}

func (s *projectStore) StoreProject(ctx context.Context, project *models.Project, metadata map[string]any) error {
	if project == nil {
		return fmt.Errorf("project is required: %w", ErrInvalidArgument)
	}
	project.ID = strings.TrimSpace(project.ID)
	if project.ID == "" {
		return fmt.Errorf("project id is required: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(project.Description) == "" {
		return fmt.Errorf("project %s: description is required: %w", project.ID, ErrInvalidArgument)
	}

	payload := make(map[string]any, len(metadata)+16)
	for key, value := range metadata {
		payload[key] = value
	}
	for key, value := range project.Metadata() {
		payload[key] = value
	}
	payload[payloadAddedAt] = s.now().UTC().Format(time.RFC3339)

	if err := s.kb.Upsert(ctx, project.ID, project.EmbeddingText(), payload); err != nil {
		return err
	}

	if s.catalog != nil {
		if err := s.catalog.Upsert(project); err != nil {
			s.logger.Warn("failed to mirror project into catalog",
				zap.String("project_id", project.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("project stored", zap.String("project_id", project.ID))
	return nil
}

func (s *projectStore) StoreProjects(ctx context.Context, projects []models.Project) *models.BatchStoreResult {
	result := &models.BatchStoreResult{}

	for i := range projects {
		if err := s.StoreProject(ctx, &projects[i], nil); err != nil {
			s.logger.Warn("failed to store project",
				zap.String("project_id", projects[i].ID),
				zap.Int("index", i),
				zap.Error(err),
			)
			result.FailureCount++
			result.Failures = append(result.Failures, models.ItemFailure{
				ID:    projects[i].ID,
				Error: err.Error(),
			})
		}
	}

	total := len(projects)
	result.SuccessCount = total - result.FailureCount
	result.Success = result.FailureCount == 0

	if result.Success {
		result.Message = fmt.Sprintf("Successfully stored %d projects", total)
	} else {
		result.Message = fmt.Sprintf("Stored %d of %d projects, %d failed", result.SuccessCount, total, result.FailureCount)
	}

	return result
}

func (s *projectStore) GetProject(_ context.Context, id string) (*models.Project, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return s.catalog.FindByID(id)
}

func (s *projectStore) DeleteProject(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("project id is required: %w", ErrInvalidArgument)
	}

	if err := s.kb.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	if s.catalog != nil {
		if err := s.catalog.Delete(id); err != nil {
			s.logger.Warn("failed to delete project from catalog", zap.String("project_id", id), zap.Error(err))
		}
	}
	return nil
}
