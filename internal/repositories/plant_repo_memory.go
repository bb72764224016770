package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"herboscope/internal/models"
	apperrors "herboscope/pkg/errors"

	"github.com/google/uuid"
)

// MemoryPlantRepository is an in-memory implementation of PlantRepository,
// used by the "memory" store driver.
type MemoryPlantRepository struct {
	plants map[string]models.Plant
	seq    map[string]uint64
	next   uint64
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMemoryPlantRepository creates a new instance of MemoryPlantRepository.
func NewMemoryPlantRepository() *MemoryPlantRepository {
	return &MemoryPlantRepository{
		plants: make(map[string]models.Plant),
		seq:    make(map[string]uint64),
		now:    time.Now,
	}
}

// Recent returns the newest plants.
func (r *MemoryPlantRepository) Recent(_ context.Context, limit int) ([]models.Plant, error) {
	return r.collect(func(models.Plant) bool { return true }, limit), nil
}

// SearchByName returns plants whose name contains term, ignoring case.
func (r *MemoryPlantRepository) SearchByName(_ context.Context, term string, limit int) ([]models.Plant, error) {
	needle := strings.ToLower(term)
	return r.collect(func(p models.Plant) bool {
		return strings.Contains(strings.ToLower(p.PlantName), needle)
	}, limit), nil
}

// GetByID returns a plant by its ID.
func (r *MemoryPlantRepository) GetByID(_ context.Context, id string) (*models.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plant, ok := r.plants[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
	}
	return &plant, nil
}

// Create adds a new plant.
func (r *MemoryPlantRepository) Create(_ context.Context, plant *models.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if plant.ID == "" {
		plant.ID = uuid.New().String()
	}
	if _, ok := r.plants[plant.ID]; ok {
		return apperrors.New(apperrors.CodeAlreadyExists, "plant already exists")
	}
	now := r.now()
	plant.CreatedAt = now
	plant.UpdatedAt = now
	r.plants[plant.ID] = *plant
	r.next++
	r.seq[plant.ID] = r.next
	return nil
}

// Update applies the mutable fields of update to an existing plant.
func (r *MemoryPlantRepository) Update(_ context.Context, id string, update models.PlantUpdate) (*models.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plant, ok := r.plants[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
	}
	if !update.Empty() {
		update.Apply(&plant)
		plant.UpdatedAt = r.now()
		r.plants[id] = plant
	}
	return &plant, nil
}

// Delete removes a plant by its ID.
func (r *MemoryPlantRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plants[id]; !ok {
		return apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
	}
	delete(r.plants, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryPlantRepository) collect(match func(models.Plant) bool, limit int) []models.Plant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Plant, 0, len(r.plants))
	for _, p := range r.plants {
		if match(p) {
			list = append(list, p)
		}
	}
	// Insertion order breaks CreatedAt ties.
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return r.seq[list[i].ID] > r.seq[list[j].ID]
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}
