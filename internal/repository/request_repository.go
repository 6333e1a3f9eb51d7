package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petsitter-app/internal/models"
)

var sortNewestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

type RequestRepository struct {
	collection *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{collection: db.Collection("requests")}
}

func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, request)
	return err
}

func (r *RequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var request models.Request
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepository) GetAll(ctx context.Context, status models.RequestStatus) ([]models.Request, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *RequestRepository) GetPending(ctx context.Context) ([]models.Request, error) {
	return r.find(ctx, bson.M{"status": models.StatusPending})
}

func (r *RequestRepository) GetByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.Request, error) {
	return r.find(ctx, bson.M{"client_id": clientID})
}

func (r *RequestRepository) GetByPetsitter(ctx context.Context, petsitterID primitive.ObjectID) ([]models.Request, error) {
	return r.find(ctx, bson.M{"petsitter_id": petsitterID})
}

func (r *RequestRepository) find(ctx context.Context, filter bson.M) ([]models.Request, error) {
	cursor, err := r.collection.Find(ctx, filter, sortNewestFirst)
	if err != nil {
		return nil, err
	}
	var requests []models.Request
	err = cursor.All(ctx, &requests)
	return requests, err
}

// Accept assigns the petsitter with a single conditional update so that two
// concurrent acceptances cannot both succeed. The filter requires the stored
// status to still be pending and no petsitter assigned; a zero match count
// means another petsitter won the race.
func (r *RequestRepository) Accept(ctx context.Context, id, petsitterID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":          id,
		"status":       models.StatusPending,
		"petsitter_id": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"petsitter_id": petsitterID,
		"status":       models.StatusAccepted,
		"updated_at":   time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus, notes string, completedAt *time.Time) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if notes != "" {
		set["notes"] = notes
	}
	if completedAt != nil {
		set["completed_at"] = *completedAt
	}
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) CountByFilter(ctx context.Context, filter bson.M) (int64, error) {
	return r.collection.CountDocuments(ctx, filter)
}
