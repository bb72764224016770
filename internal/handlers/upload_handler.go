package handlers

import (
	"herboscope/internal/imagepath"
	"herboscope/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler stores plant images.
type UploadHandler struct {
	store *storage.ImageStore
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store *storage.ImageStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// RegisterRoutes registers the upload route with the Fiber app.
func (h *UploadHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/upload-image", h.HandleUploadImage)
}

// HandleUploadImage stores the multipart field "image" and answers with the
// absolute URL it is served under. That URL is what clients send back as
// imagePath when adding a plant.
func (h *UploadHandler) HandleUploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No image uploaded",
			"error":   err.Error(),
		})
	}

	rel, err := h.store.Save(fh)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"imageUrl":  imagepath.Normalize(rel, c.BaseURL(), h.store.Mount()),
		"imagePath": rel,
	})
}
