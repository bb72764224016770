package handlers

import (
	"io"
	"strings"

	"herboscope/internal/lookup"
	"herboscope/internal/storage"
	apperrors "herboscope/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

// LookupHandler proxies identification and image search requests.
type LookupHandler struct {
	identifier lookup.Identifier
	searcher   lookup.ImageSearcher
}

// NewLookupHandler creates a new LookupHandler.
func NewLookupHandler(identifier lookup.Identifier, searcher lookup.ImageSearcher) *LookupHandler {
	return &LookupHandler{
		identifier: identifier,
		searcher:   searcher,
	}
}

// RegisterRoutes registers the lookup routes with the Fiber app.
func (h *LookupHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/identify", h.HandleIdentify)
	router.Get("/search-images", h.HandleSearchImages)
}

// HandleIdentify forwards the multipart field "image" and the optional organ
// hint to the identification API and relays its JSON answer.
func (h *LookupHandler) HandleIdentify(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No image uploaded",
			"error":   err.Error(),
		})
	}

	organ := c.FormValue("organ")
	if organ == "" {
		organ = c.FormValue("organs")
	}
	organ, err = lookup.ParseOrgan(organ)
	if err != nil {
		return err
	}

	f, err := fh.Open()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalid, "could not read uploaded file")
	}
	defer f.Close()

	img, err := storage.Sniff(f)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(img.Body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalid, "could not read uploaded file")
	}

	result, err := h.identifier.Identify(c.UserContext(), lookup.Image{
		Filename:    fh.Filename,
		ContentType: img.MIME,
		Data:        data,
	}, organ)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}

// HandleSearchImages answers {results: [...]} for the query parameter.
func (h *LookupHandler) HandleSearchImages(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter is required",
		})
	}

	results, err := h.searcher.SearchImages(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"results": results})
}
