package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"herboscope/internal/models"
	apperrors "herboscope/pkg/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlantsCollection is the MongoDB collection holding plants.
const PlantsCollection = "plants"

// MongoPlantRepository is a MongoDB implementation of PlantRepository.
type MongoPlantRepository struct {
	coll *mongo.Collection
}

// NewMongoPlantRepository creates a new instance of MongoPlantRepository.
func NewMongoPlantRepository(db *mongo.Database) *MongoPlantRepository {
	return &MongoPlantRepository{coll: db.Collection(PlantsCollection)}
}

// Recent returns the newest plants.
func (r *MongoPlantRepository) Recent(ctx context.Context, limit int) ([]models.Plant, error) {
	return r.find(ctx, bson.M{}, limit)
}

// SearchByName matches term anywhere in plantName, ignoring case.
func (r *MongoPlantRepository) SearchByName(ctx context.Context, term string, limit int) ([]models.Plant, error) {
	filter := bson.M{"plantName": primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}
	return r.find(ctx, filter, limit)
}

// GetByID returns a plant by its ID.
func (r *MongoPlantRepository) GetByID(ctx context.Context, id string) (*models.Plant, error) {
	var plant models.Plant
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&plant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get plant")
	}
	return &plant, nil
}

// Create inserts a new plant.
func (r *MongoPlantRepository) Create(ctx context.Context, plant *models.Plant) error {
	if plant.ID == "" {
		plant.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	plant.CreatedAt = now
	plant.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, plant); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Wrap(err, apperrors.CodeAlreadyExists, "plant already exists")
		}
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to create plant")
	}
	return nil
}

// Update sets the mutable fields named by update and returns the new document.
func (r *MongoPlantRepository) Update(ctx context.Context, id string, update models.PlantUpdate) (*models.Plant, error) {
	if update.Empty() {
		return r.GetByID(ctx, id)
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.PlantName != nil {
		set["plantName"] = *update.PlantName
	}
	if update.ScientificName != nil {
		set["scientificName"] = *update.ScientificName
	}
	if update.Uses != nil {
		set["uses"] = *update.Uses
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var plant models.Plant
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&plant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Wrap(err, apperrors.CodeAlreadyExists, "plant already exists")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to update plant")
	}
	return &plant, nil
}

// Delete removes a plant permanently.
func (r *MongoPlantRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete plant")
	}
	if res.DeletedCount == 0 {
		return apperrors.Newf(apperrors.CodeNotFound, "plant with ID %s not found", id)
	}
	return nil
}

func (r *MongoPlantRepository) find(ctx context.Context, filter bson.M, limit int) ([]models.Plant, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list plants")
	}
	plants := make([]models.Plant, 0, limit)
	if err := cur.All(ctx, &plants); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to decode plants")
	}
	return plants, nil
}
