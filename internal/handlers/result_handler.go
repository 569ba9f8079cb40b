package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/project-matcher/internal/models"
	"alfredoptarigan/project-matcher/internal/repositories"
)

type ResultHandler struct {
	jobRepo repositories.FitJobRepository
}

func NewResultHandler(jobRepo repositories.FitJobRepository) *ResultHandler {
	return &ResultHandler{
		jobRepo: jobRepo,
	}
}

// HandleGetFitJob handles GET /fit/jobs/:id
func (h *ResultHandler) HandleGetFitJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return respondError(c, err)
	}

	response := models.JobResultResponse{
		ID:     job.ID.String(),
		Status: string(job.Status),
	}

	if job.Status == models.StatusCompleted {
		response.Result = job.Result
	}

	if job.Status == models.StatusFailed && job.ErrorMessage != nil {
		response.ErrorMessage = job.ErrorMessage
	}

	return c.JSON(response)
}
