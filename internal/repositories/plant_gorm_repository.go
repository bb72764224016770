package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"herboscope/internal/models"
	apperrors "herboscope/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPlantRepository is a GORM implementation of PlantRepository.
type GORMPlantRepository struct {
	db *gorm.DB
}

// NewGORMPlantRepository creates a new instance of GORMPlantRepository.
func NewGORMPlantRepository(db *gorm.DB) *GORMPlantRepository {
	return &GORMPlantRepository{
		db: db,
	}
}

// Recent retrieves the newest plants.
func (r *GORMPlantRepository) Recent(ctx context.Context, limit int) ([]models.Plant, error) {
	var plants []models.Plant
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&plants).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list plants")
	}
	return plants, nil
}

// SearchByName retrieves plants whose name contains term, ignoring case.
func (r *GORMPlantRepository) SearchByName(ctx context.Context, term string, limit int) ([]models.Plant, error) {
	var plants []models.Plant
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	err := r.db.WithContext(ctx).
		Where("search_name LIKE ? ESCAPE '\\'", pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&plants).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to search plants")
	}
	return plants, nil
}

// GetByID retrieves a single plant by its ID.
func (r *GORMPlantRepository) GetByID(ctx context.Context, id string) (*models.Plant, error) {
	var plant models.Plant
	if err := r.db.WithContext(ctx).First(&plant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get plant")
	}
	return &plant, nil
}

// Create inserts a new plant.
func (r *GORMPlantRepository) Create(ctx context.Context, plant *models.Plant) error {
	if plant.ID == "" {
		plant.ID = uuid.New().String()
	}
	plant.SearchName = strings.ToLower(plant.PlantName)
	if err := r.db.WithContext(ctx).Create(plant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Wrap(err, apperrors.CodeAlreadyExists, "plant already exists")
		}
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to create plant")
	}
	return nil
}

// Update writes the mutable columns named by update and returns the stored
// plant.
func (r *GORMPlantRepository) Update(ctx context.Context, id string, update models.PlantUpdate) (*models.Plant, error) {
	columns := map[string]any{}
	if update.PlantName != nil {
		columns["plant_name"] = *update.PlantName
		columns["search_name"] = strings.ToLower(*update.PlantName)
	}
	if update.ScientificName != nil {
		columns["scientific_name"] = *update.ScientificName
	}
	if update.Uses != nil {
		columns["uses"] = *update.Uses
	}
	if update.Description != nil {
		columns["description"] = *update.Description
	}
	if len(columns) == 0 {
		return r.GetByID(ctx, id)
	}
	columns["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).Model(&models.Plant{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(res.Error, apperrors.CodeAlreadyExists, "plant already exists")
		}
		return nil, apperrors.Wrap(res.Error, apperrors.CodeInternal, "failed to update plant")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a plant permanently.
func (r *GORMPlantRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Plant{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.CodeInternal, "failed to delete plant")
	}
	if res.RowsAffected == 0 {
		return apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
