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

type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{collection: db.Collection("reviews")}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, review)
	return err
}

func (r *ReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ExistsByRequest(ctx context.Context, requestID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"request_id": requestID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByPetsitter returns the petsitter's reviews, newest first. With
// visibleOnly false it includes hidden reviews, which is what the rating
// recompute and the statistics endpoint want.
func (r *ReviewRepository) GetByPetsitter(ctx context.Context, petsitterID primitive.ObjectID, visibleOnly bool) ([]models.Review, error) {
	filter := bson.M{"petsitter_id": petsitterID}
	if visibleOnly {
		filter["is_visible"] = true
	}
	return r.find(ctx, filter)
}

func (r *ReviewRepository) GetAllVisible(ctx context.Context, petsitterID *primitive.ObjectID) ([]models.Review, error) {
	filter := bson.M{"is_visible": true}
	if petsitterID != nil {
		filter["petsitter_id"] = *petsitterID
	}
	return r.find(ctx, filter)
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]models.Review, error) {
	cursor, err := r.collection.Find(ctx, filter, sortNewestFirst)
	if err != nil {
		return nil, err
	}
	var reviews []models.Review
	err = cursor.All(ctx, &reviews)
	return reviews, err
}

func (r *ReviewRepository) SetVisibility(ctx context.Context, id primitive.ObjectID, visible bool) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_visible": visible}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
