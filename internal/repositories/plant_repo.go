package repositories

import (
	"context"

	"herboscope/internal/models"
)

// PlantRepository defines the interface for plant data access. Not-found and
// duplicate failures are reported as *errors.AppError with CodeNotFound and
// CodeAlreadyExists.
type PlantRepository interface {
	// Recent returns up to limit plants, newest first.
	Recent(ctx context.Context, limit int) ([]models.Plant, error)
	// SearchByName matches term case-insensitively anywhere in plantName,
	// newest first, capped at limit.
	SearchByName(ctx context.Context, term string, limit int) ([]models.Plant, error)
	GetByID(ctx context.Context, id string) (*models.Plant, error)
	Create(ctx context.Context, plant *models.Plant) error
	Update(ctx context.Context, id string, update models.PlantUpdate) (*models.Plant, error)
	Delete(ctx context.Context, id string) error
}
