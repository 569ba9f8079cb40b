package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/models"
	"alfredoptarigan/project-matcher/internal/services"
)

type UploadHandler struct {
	store          services.ProjectStore
	storageService services.StorageService
	parser         services.RFPParser
	maxFileSize    int64
	logger         *zap.Logger
}

func NewUploadHandler(
	store services.ProjectStore,
	storageService services.StorageService,
	parser services.RFPParser,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		store:          store,
		storageService: storageService,
		parser:         parser,
		maxFileSize:    maxFileSize,
		logger:         log.Named("upload"),
	}
}

// HandleUploadRFP handles POST /projects/upload. The multipart form carries
// the RFP PDF under "rfp" plus id, title, agency and dueDate fields; the PDF
// text becomes the project description.
func (h *UploadHandler) HandleUploadRFP(c *fiber.Ctx) error {
	projectID := strings.TrimSpace(c.FormValue("id"))
	if projectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	file, err := c.FormFile("rfp")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "rfp file is required",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("RFP file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storageService.SaveRFP(file, projectID)
	if err != nil {
		return respondError(c, fmt.Errorf("failed to save RFP file: %w", err))
	}

	content, err := h.parser.ExtractText(filePath)
	if err != nil {
		h.cleanup(filename)
		return respondError(c, fmt.Errorf("failed to parse RFP: %w", err))
	}

	project := models.Project{
		ID:          projectID,
		Title:       strings.TrimSpace(c.FormValue("title")),
		Agency:      strings.TrimSpace(c.FormValue("agency")),
		DueDate:     strings.TrimSpace(c.FormValue("dueDate")),
		Description: content.Text,
	}

	metadata := map[string]any{
		"sourceFile": file.Filename,
		"pageCount":  content.PageCount,
	}

	if err := h.store.StoreProject(c.UserContext(), &project, metadata); err != nil {
		h.cleanup(filename)
		return respondError(c, fmt.Errorf("failed to store project: %w", err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "RFP uploaded and stored successfully",
		"project": models.UploadResponse{
			ID:           project.ID,
			Filename:     filename,
			OriginalName: file.Filename,
			PageCount:    content.PageCount,
		},
	})
}

func (h *UploadHandler) cleanup(filename string) {
	if err := h.storageService.DeleteFile(filename); err != nil {
		h.logger.Warn("failed to remove uploaded file", zap.String("file", filename), zap.Error(err))
	}
}
