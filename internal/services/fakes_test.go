package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/project-matcher/internal/models"
	"alfredoptarigan/project-matcher/internal/repositories"
)

var errBoom = errors.New("boom")

type fakeAgent struct {
	name    string
	respond func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
	opts    []GenerateOptions
}

func (a *fakeAgent) Name() string {
	if a.name == "" {
		return "fake"
	}
	return a.name
}

func (a *fakeAgent) Generate(_ context.Context, prompt string, opts GenerateOptions) (string, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	a.opts = append(a.opts, opts)
	a.mu.Unlock()
	return a.respond(prompt)
}

func (a *fakeAgent) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.prompts)
}

// answerByMarker returns the response whose key appears in the prompt.
func answerByMarker(answers map[string]string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		for marker, answer := range answers {
			if strings.Contains(prompt, marker) {
				if answer == "" {
					return "", errBoom
				}
				return answer, nil
			}
		}
		return "", errBoom
	}
}

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
	texts []string
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

type upsertCall struct {
	projectID string
	text      string
	payload   map[string]any
}

type fakeIndex struct {
	results   []SearchResult
	searchErr error
	upsertErr error

	initCalls  int
	upserts    []upsertCall
	deleted    []string
	lastLimit  int
	searchHits int
}

func (f *fakeIndex) InitCollection(context.Context) error {
	f.initCalls++
	return nil
}

func (f *fakeIndex) UpsertProject(_ context.Context, projectID, text string, payload map[string]any, _ []float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{projectID: projectID, text: text, payload: payload})
	return nil
}

func (f *fakeIndex) SearchSimilar(_ context.Context, _ []float32, limit int) ([]SearchResult, error) {
	f.searchHits++
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeIndex) DeleteProject(_ context.Context, projectID string) error {
	f.deleted = append(f.deleted, projectID)
	return nil
}

type fakeReranker struct {
	err   error
	calls int
}

func (r *fakeReranker) Rerank(_ context.Context, _ string, hits []SearchHit, topK int) ([]SearchHit, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]SearchHit, len(hits))
	for i, h := range hits {
		out[len(hits)-1-i] = h
	}
	return capHits(out, topK), nil
}

type fakeKB struct {
	hits      []SearchHit
	searchErr error
	upsertErr map[string]error

	requests []SearchRequest
	upserted map[string]string
	payloads map[string]map[string]any
	deleted  []string
}

func newFakeKB() *fakeKB {
	return &fakeKB{
		upsertErr: map[string]error{},
		upserted:  map[string]string{},
		payloads:  map[string]map[string]any{},
	}
}

func (k *fakeKB) Initialize(context.Context) error { return nil }

func (k *fakeKB) Upsert(_ context.Context, projectID, text string, metadata map[string]any) error {
	if err := k.upsertErr[projectID]; err != nil {
		return err
	}
	k.upserted[projectID] = text
	k.payloads[projectID] = metadata
	return nil
}

func (k *fakeKB) Search(_ context.Context, req SearchRequest) ([]SearchHit, error) {
	k.requests = append(k.requests, req)
	if k.searchErr != nil {
		return nil, k.searchErr
	}
	return capHits(k.hits, req.Limit), nil
}

func (k *fakeKB) Delete(_ context.Context, projectID string) error {
	k.deleted = append(k.deleted, projectID)
	return nil
}

type fakeCatalog struct {
	projects  map[string]models.Project
	upsertErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{projects: map[string]models.Project{}}
}

func (c *fakeCatalog) Upsert(project *models.Project) error {
	if c.upsertErr != nil {
		return c.upsertErr
	}
	c.projects[project.ID] = *project
	return nil
}

func (c *fakeCatalog) FindByID(id string) (*models.Project, error) {
	p, ok := c.projects[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (c *fakeCatalog) Delete(id string) error {
	delete(c.projects, id)
	return nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.FitAnalysisJob
}

func newFakeJobRepo(jobs ...*models.FitAnalysisJob) *fakeJobRepo {
	r := &fakeJobRepo{jobs: map[uuid.UUID]*models.FitAnalysisJob{}}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *fakeJobRepo) Create(job *models.FitAnalysisJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) FindByID(id uuid.UUID) (*models.FitAnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *fakeJobRepo) Claim(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.StatusQueued {
		return false, nil
	}
	job.Status = models.StatusProcessing
	return true, nil
}

func (r *fakeJobRepo) UpdateResult(id uuid.UUID, result *models.FitAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	job.Status = models.StatusCompleted
	job.Result = result
	return nil
}

func (r *fakeJobRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	job.Status = models.StatusFailed
	job.ErrorMessage = &errorMsg
	return nil
}

func (r *fakeJobRepo) Requeue(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != models.StatusProcessing {
		return repositories.ErrNotFound
	}
	job.Status = models.StatusQueued
	job.UpdatedAt = time.Now()
	return nil
}

func (r *fakeJobRepo) RequeueStale(olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for _, j := range r.jobs {
		if j.Status == models.StatusProcessing && j.UpdatedAt.Before(cutoff) {
			j.Status = models.StatusQueued
			j.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (r *fakeJobRepo) FindPendingJobs(limit int) ([]models.FitAnalysisJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FitAnalysisJob
	for _, j := range r.jobs {
		if j.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) status(id uuid.UUID) models.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id].Status
}
