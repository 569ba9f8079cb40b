package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/project-matcher/internal/models"
	"alfredoptarigan/project-matcher/internal/repositories"
	"alfredoptarigan/project-matcher/internal/services"
)

type FitHandler struct {
	analyzer services.FitAnalyzer
	jobRepo  repositories.FitJobRepository
	worker   services.Worker
}

func NewFitHandler(
	analyzer services.FitAnalyzer,
	jobRepo repositories.FitJobRepository,
	worker services.Worker,
) *FitHandler {
	return &FitHandler{
		analyzer: analyzer,
		jobRepo:  jobRepo,
		worker:   worker,
	}
}

// HandleFit handles POST /fit
func (h *FitHandler) HandleFit(c *fiber.Ctx) error {
	var req models.FitRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	analysis, err := h.analyzer.IsProjectGoodFit(
		c.UserContext(),
		req.ProjectDescription,
		req.CompanyProfile,
		fitOptions(&req),
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(analysis)
}

// HandleCreateFitJob handles POST /fit/jobs
func (h *FitHandler) HandleCreateFitJob(c *fiber.Ctx) error {
	var req models.FitRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if strings.TrimSpace(req.ProjectDescription) == "" {
		return respondError(c, fmt.Errorf("projectDescription is required: %w", services.ErrInvalidArgument))
	}
	if strings.TrimSpace(req.CompanyProfile) == "" {
		return respondError(c, fmt.Errorf("companyProfile is required: %w", services.ErrInvalidArgument))
	}

	opts := fitOptions(&req)
	job := &models.FitAnalysisJob{
		ID:                  uuid.New(),
		ProjectDescription:  req.ProjectDescription,
		CompanyProfile:      req.CompanyProfile,
		SimilarityThreshold: opts.SimilarityThreshold,
		FitThreshold:        opts.FitThreshold,
		LimitSimilar:        opts.LimitSimilar,
		Status:              models.StatusQueued,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := h.jobRepo.Create(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create fit analysis job",
		})
	}

	h.worker.EnqueueJob(job.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.JobResponse{
		ID:     job.ID.String(),
		Status: string(models.StatusQueued),
	})
}

func fitOptions(req *models.FitRequest) services.FitOptions {
	return services.FitOptions{
		SimilarityThreshold: floatOr(req.SimilarityThreshold, services.DefaultSimilarityThreshold),
		FitThreshold:        floatOr(req.FitThreshold, services.DefaultFitThreshold),
		LimitSimilar:        intOr(req.LimitSimilar, services.DefaultLimitSimilar),
	}
}
