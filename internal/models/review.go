package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review holds a client's rating of a petsitter for one completed request.
// ClientID and PetsitterID are copied from the request at creation time so
// authorization checks and listings do not need an extra lookup.
type Review struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID   primitive.ObjectID `bson:"request_id" json:"request_id"`
	ClientID    primitive.ObjectID `bson:"client_id" json:"client_id"`
	PetsitterID primitive.ObjectID `bson:"petsitter_id" json:"petsitter_id"`
	Rating      int                `bson:"rating" json:"rating"`
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	IsVisible   bool               `bson:"is_visible" json:"is_visible"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// ReviewStatistics is the aggregate view of a petsitter's reviews. The
// distribution is keyed by the five possible ratings and zeroed when no
// reviews exist.
type ReviewStatistics struct {
	TotalReviews       int         `json:"totalReviews"`
	AverageRating      float64     `json:"averageRating"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}
