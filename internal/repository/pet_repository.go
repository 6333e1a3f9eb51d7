package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"petsitter-app/internal/models"
)

type PetRepository struct {
	collection *mongo.Collection
}

func NewPetRepository(db *mongo.Database) *PetRepository {
	return &PetRepository{collection: db.Collection("pets")}
}

func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	pet.ID = primitive.NewObjectID()
	pet.IsActive = true
	pet.CreatedAt = time.Now()
	pet.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, pet)
	return err
}

func (r *PetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error) {
	var pet models.Pet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pet)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *PetRepository) GetAllActive(ctx context.Context) ([]models.Pet, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	var pets []models.Pet
	err = cursor.All(ctx, &pets)
	return pets, err
}

func (r *PetRepository) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Pet, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID, "is_active": true})
	if err != nil {
		return nil, err
	}
	var pets []models.Pet
	err = cursor.All(ctx, &pets)
	return pets, err
}

func (r *PetRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PetRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateFields(ctx, id, bson.M{"is_active": false})
}
