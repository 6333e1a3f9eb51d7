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

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection("users")}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetAll(ctx context.Context, role models.Role) ([]models.User, error) {
	filter := bson.M{"is_active": true}
	if role != "" {
		filter["role"] = role
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []models.User
	err = cursor.All(ctx, &users)
	return users, err
}

func (r *UserRepository) GetPetsitters(ctx context.Context, minRating float64) ([]models.User, error) {
	filter := bson.M{"role": models.RolePetsitter, "is_active": true}
	if minRating > 0 {
		filter["rating"] = bson.M{"$gte": minRating}
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []models.User
	err = cursor.All(ctx, &users)
	return users, err
}

func (r *UserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
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

func (r *UserRepository) UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64, reviewsCount int) error {
	return r.UpdateFields(ctx, id, bson.M{
		"rating":        rating,
		"reviews_count": reviewsCount,
	})
}

func (r *UserRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateFields(ctx, id, bson.M{"is_active": false})
}
