package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/models"
)

func newTestStore(kb KnowledgeBase, catalog *fakeCatalog) *projectStore {
	s := NewProjectStore(kb, catalog, zap.NewNop()).(*projectStore)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestStoreProject(t *testing.T) {
	kb := newFakeKB()
	catalog := newFakeCatalog()
	s := newTestStore(kb, catalog)

	budget := 250000.0
	project := &models.Project{
		ID:          " rfp-1 ",
		Title:       "Portal Modernization",
		Agency:      "Dept. of Transit",
		Description: "Rebuild the rider portal in React.",
		Budget:      &budget,
	}

	err := s.StoreProject(context.Background(), project, map[string]any{
		"source": "sam.gov",
		"title":  "overridden",
	})
	require.NoError(t, err)

	assert.Equal(t, "Portal Modernization\n\nRebuild the rider portal in React.", kb.upserted["rfp-1"])

	payload := kb.payloads["rfp-1"]
	assert.Equal(t, "sam.gov", payload["source"])
	assert.Equal(t, "Portal Modernization", payload["title"])
	assert.Equal(t, "Dept. of Transit", payload["agency"])
	assert.Equal(t, 250000.0, payload["budget"])
	assert.Equal(t, "2026-03-01T12:00:00Z", payload[payloadAddedAt])

	stored, err := s.GetProject(context.Background(), "rfp-1")
	require.NoError(t, err)
	assert.Equal(t, "Portal Modernization", stored.Title)
}

func TestStoreProject_Invalid(t *testing.T) {
	kb := newFakeKB()
	s := newTestStore(kb, newFakeCatalog())

	assert.ErrorIs(t, s.StoreProject(context.Background(), nil, nil), ErrInvalidArgument)
	assert.ErrorIs(t, s.StoreProject(context.Background(), &models.Project{Description: "d"}, nil), ErrInvalidArgument)
	assert.ErrorIs(t, s.StoreProject(context.Background(), &models.Project{ID: "x", Description: " "}, nil), ErrInvalidArgument)
	assert.Empty(t, kb.upserted)
}

func TestStoreProject_CatalogFailureIsNotFatal(t *testing.T) {
	kb := newFakeKB()
	catalog := newFakeCatalog()
	catalog.upsertErr = errBoom
	s := newTestStore(kb, catalog)

	err := s.StoreProject(context.Background(), &models.Project{ID: "x", Description: "d"}, nil)
	require.NoError(t, err)
	assert.Contains(t, kb.upserted, "x")
}

func TestStoreProject_KnowledgeBaseFailure(t *testing.T) {
	kb := newFakeKB()
	kb.upsertErr["x"] = fmt.Errorf("embed: %w", ErrUpstreamCall)
	catalog := newFakeCatalog()
	s := newTestStore(kb, catalog)

	err := s.StoreProject(context.Background(), &models.Project{ID: "x", Description: "d"}, nil)
	assert.ErrorIs(t, err, ErrUpstreamCall)
	assert.Empty(t, catalog.projects)
}

func TestStoreProjects_AllSucceed(t *testing.T) {
	kb := newFakeKB()
	s := newTestStore(kb, newFakeCatalog())

	projects := make([]models.Project, 10)
	for i := range projects {
		projects[i] = models.Project{ID: fmt.Sprintf("p%d", i), Description: "desc"}
	}

	result := s.StoreProjects(context.Background(), projects)
	assert.True(t, result.Success)
	assert.Equal(t, "Successfully stored 10 projects", result.Message)
	assert.Equal(t, 10, result.SuccessCount)
	assert.Zero(t, result.FailureCount)
	assert.Len(t, kb.upserted, 10)
}

func TestStoreProjects_PartialFailure(t *testing.T) {
	kb := newFakeKB()
	kb.upsertErr["p1"] = errBoom
	s := newTestStore(kb, newFakeCatalog())

	result := s.StoreProjects(context.Background(), []models.Project{
		{ID: "p0", Description: "desc"},
		{ID: "p1", Description: "desc"},
		{ID: "p2"},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Stored 1 of 3 projects, 2 failed", result.Message)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "p1", result.Failures[0].ID)
	assert.Equal(t, "p2", result.Failures[1].ID)
}

func TestStoreProjects_Empty(t *testing.T) {
	s := newTestStore(newFakeKB(), newFakeCatalog())

	result := s.StoreProjects(context.Background(), nil)
	assert.True(t, result.Success)
	assert.Zero(t, result.SuccessCount)
}

func TestGetAndDeleteProject(t *testing.T) {
	kb := newFakeKB()
	catalog := newFakeCatalog()
	s := newTestStore(kb, catalog)

	_, err := s.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.StoreProject(context.Background(), &models.Project{ID: "x", Description: "d"}, nil))
	require.NoError(t, s.DeleteProject(context.Background(), "x"))

	assert.Equal(t, []string{"x"}, kb.deleted)
	_, err = s.GetProject(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteProject(context.Background(), ""), ErrInvalidArgument)
}
