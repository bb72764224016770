package services

import (
	"context"
	"strings"

	"herboscope/internal/imagepath"
	"herboscope/internal/models"
	"herboscope/internal/repositories"
	apperrors "herboscope/pkg/errors"

	"go.uber.org/zap"
)

const (
	// RecentLimit caps the unfiltered catalog listing.
	RecentLimit = 10
	// SearchLimit caps name search results.
	SearchLimit = 50
)

// Catalog event names.
const (
	EventPlantCreated = "plant.created"
	EventPlantUpdated = "plant.updated"
	EventPlantDeleted = "plant.deleted"
)

// EventPublisher receives catalog change notifications.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// PlantInput is the data accepted when adding a plant.
type PlantInput struct {
	PlantName      string
	ScientificName string
	Uses           string
	Description    string
	ImagePath      string
}

// PlantService handles business logic related to the plant catalog. Every
// plant it returns carries an absolute image URL.
type PlantService struct {
	repo   repositories.PlantRepository
	mount  string
	events EventPublisher
	log    *zap.Logger
}

// NewPlantService creates a new PlantService. mount is the static path
// prefix uploads are served under; events may be nil.
func NewPlantService(repo repositories.PlantRepository, mount string, events EventPublisher, log *zap.Logger) *PlantService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlantService{
		repo:   repo,
		mount:  mount,
		events: events,
		log:    log,
	}
}

// List returns plants whose name contains q (at most SearchLimit), or the
// RecentLimit newest plants when q is blank.
func (s *PlantService) List(ctx context.Context, q, baseURL string) ([]models.Plant, error) {
	var (
		plants []models.Plant
		err    error
	)
	if q = strings.TrimSpace(q); q != "" {
		plants, err = s.repo.SearchByName(ctx, q, SearchLimit)
	} else {
		plants, err = s.repo.Recent(ctx, RecentLimit)
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.Plant, 0, len(plants))
	for _, p := range plants {
		out = append(out, s.normalize(p, baseURL))
	}
	return out, nil
}

// Get returns a single plant.
func (s *PlantService) Get(ctx context.Context, id, baseURL string) (*models.Plant, error) {
	plant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := s.normalize(*plant, baseURL)
	return &p, nil
}

// Create validates and stores a new plant. ImagePath is stored as given.
func (s *PlantService) Create(ctx context.Context, in PlantInput, baseURL string) (*models.Plant, error) {
	plant := &models.Plant{
		PlantName:      strings.TrimSpace(in.PlantName),
		ScientificName: strings.TrimSpace(in.ScientificName),
		Uses:           strings.TrimSpace(in.Uses),
		Description:    strings.TrimSpace(in.Description),
		ImagePath:      strings.TrimSpace(in.ImagePath),
	}
	if plant.PlantName == "" {
		return nil, apperrors.New(apperrors.CodeInvalid, "plantName is required")
	}
	if plant.ImagePath == "" {
		return nil, apperrors.New(apperrors.CodeInvalid, "imagePath is required")
	}

	if err := s.repo.Create(ctx, plant); err != nil {
		return nil, err
	}
	s.publish(ctx, EventPlantCreated, plant)

	p := s.normalize(*plant, baseURL)
	return &p, nil
}

// Update changes the mutable text fields of a plant. Values are trimmed and
// plantName may not be blanked; imagePath and createdAt never change.
func (s *PlantService) Update(ctx context.Context, id string, update models.PlantUpdate, baseURL string) (*models.Plant, error) {
	update.PlantName = trimmed(update.PlantName)
	update.ScientificName = trimmed(update.ScientificName)
	update.Uses = trimmed(update.Uses)
	update.Description = trimmed(update.Description)

	if update.PlantName != nil && *update.PlantName == "" {
		return nil, apperrors.New(apperrors.CodeInvalid, "plantName cannot be empty")
	}

	plant, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if !update.Empty() {
		s.publish(ctx, EventPlantUpdated, plant)
	}

	p := s.normalize(*plant, baseURL)
	return &p, nil
}

// Delete removes a plant permanently.
func (s *PlantService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, EventPlantDeleted, map[string]string{"id": id})
	return nil
}

// Mount returns the static path prefix image paths are rebased onto.
func (s *PlantService) Mount() string {
	return s.mount
}

func (s *PlantService) normalize(p models.Plant, baseURL string) models.Plant {
	p.ImagePath = imagepath.Normalize(p.ImagePath, baseURL, s.mount)
	return p
}

func (s *PlantService) publish(ctx context.Context, event string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event, payload); err != nil {
		s.log.Warn("failed to publish catalog event", zap.String("event", event), zap.Error(err))
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
