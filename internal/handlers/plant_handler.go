package handlers

import (
	"herboscope/internal/models"
	"herboscope/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PlantHandler handles HTTP requests for the plant catalog.
type PlantHandler struct {
	service  *services.PlantService
	validate *validator.Validate
}

// NewPlantHandler creates a new PlantHandler.
func NewPlantHandler(service *services.PlantService) *PlantHandler {
	return &PlantHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the plant routes with the Fiber app.
func (h *PlantHandler) RegisterRoutes(router fiber.Router) {
	plantRoutes := router.Group("/home")
	plantRoutes.Get("/", h.HandleListPlants)
	plantRoutes.Post("/addPlant", h.HandleCreatePlant)
	plantRoutes.Get("/:id", h.HandleGetPlant)
	plantRoutes.Patch("/:id", h.HandleUpdatePlant)
	plantRoutes.Delete("/:id", h.HandleDeletePlant)
}

// HandleListPlants searches by name when q is given, otherwise lists the
// newest plants.
func (h *PlantHandler) HandleListPlants(c *fiber.Ctx) error {
	plants, err := h.service.List(c.UserContext(), c.Query("q"), c.BaseURL())
	if err != nil {
		return err
	}
	return c.JSON(plants)
}

// HandleGetPlant retrieves a single plant by its ID.
func (h *PlantHandler) HandleGetPlant(c *fiber.Ctx) error {
	plant, err := h.service.Get(c.UserContext(), c.Params("id"), c.BaseURL())
	if err != nil {
		return err
	}
	return c.JSON(plant)
}

// CreatePlantRequest represents the request body for adding a plant.
type CreatePlantRequest struct {
	PlantName      string `json:"plantName" validate:"required"`
	ScientificName string `json:"scientificName"`
	Uses           string `json:"uses"`
	Description    string `json:"description"`
	ImagePath      string `json:"imagePath" validate:"required"`
}

// HandleCreatePlant adds a plant whose image was uploaded beforehand.
func (h *PlantHandler) HandleCreatePlant(c *fiber.Ctx) error {
	var req CreatePlantRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	plant, err := h.service.Create(c.UserContext(), services.PlantInput{
		PlantName:      req.PlantName,
		ScientificName: req.ScientificName,
		Uses:           req.Uses,
		Description:    req.Description,
		ImagePath:      req.ImagePath,
	}, c.BaseURL())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(plant)
}

// UpdatePlantRequest lists the fields a partial update may change. Any other
// field in the body is ignored.
type UpdatePlantRequest struct {
	PlantName      *string `json:"plantName"`
	ScientificName *string `json:"scientificName"`
	Uses           *string `json:"uses"`
	Description    *string `json:"description"`
}

// HandleUpdatePlant applies a partial update.
func (h *PlantHandler) HandleUpdatePlant(c *fiber.Ctx) error {
	var req UpdatePlantRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	plant, err := h.service.Update(c.UserContext(), c.Params("id"), models.PlantUpdate{
		PlantName:      req.PlantName,
		ScientificName: req.ScientificName,
		Uses:           req.Uses,
		Description:    req.Description,
	}, c.BaseURL())
	if err != nil {
		return err
	}
	return c.JSON(plant)
}

// HandleDeletePlant removes a plant permanently.
func (h *PlantHandler) HandleDeletePlant(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Plant deleted successfully"})
}
