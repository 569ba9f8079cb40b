package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/project-matcher/internal/models"
	"alfredoptarigan/project-matcher/internal/services"
)

type ProjectHandler struct {
	store services.ProjectStore
}

func NewProjectHandler(store services.ProjectStore) *ProjectHandler {
	return &ProjectHandler{store: store}
}

// HandleInitStore handles POST /store/init
func (h *ProjectHandler) HandleInitStore(c *fiber.Ctx) error {
	if err := h.store.Initialize(c.UserContext()); err != nil {
		return c.Status(StatusFor(err)).JSON(models.StoreResult{
			Success: false,
			Message: fmt.Sprintf("Failed to initialize project store: %v", err),
		})
	}

	return c.JSON(models.StoreResult{
		Success: true,
		Message: "Project store initialized successfully",
	})
}

// HandleStoreProject handles POST /projects
func (h *ProjectHandler) HandleStoreProject(c *fiber.Ctx) error {
	var req models.StoreProjectRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(StatusFor(err)).JSON(models.StoreResult{Success: false, Message: err.Error()})
	}

	if err := h.store.StoreProject(c.UserContext(), &req.Project, req.Metadata); err != nil {
		return c.Status(StatusFor(err)).JSON(models.StoreResult{
			Success: false,
			Message: fmt.Sprintf("Failed to store project: %v", err),
		})
	}

	return c.JSON(models.StoreResult{
		Success: true,
		Message: fmt.Sprintf("Project %s stored successfully", req.Project.ID),
	})
}

// HandleStoreProjects handles POST /projects/batch
func (h *ProjectHandler) HandleStoreProjects(c *fiber.Ctx) error {
	var req models.StoreProjectsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fmt.Errorf("invalid request payload: %v: %w", err, services.ErrInvalidArgument))
	}

	// Item validation happens per project inside StoreProjects so one bad
	// record is reported as a failure instead of rejecting the batch.
	result := h.store.StoreProjects(c.UserContext(), req.Projects)

	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(result)
}

// HandleGetProject handles GET /projects/:id
func (h *ProjectHandler) HandleGetProject(c *fiber.Ctx) error {
	project, err := h.store.GetProject(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// HandleDeleteProject handles DELETE /projects/:id
func (h *ProjectHandler) HandleDeleteProject(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.store.DeleteProject(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.StoreResult{
		Success: true,
		Message: fmt.Sprintf("Project %s deleted", id),
	})
}
