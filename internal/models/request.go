package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ServiceType string

const (
	ServiceWalking   ServiceType = "walking"
	ServiceCare      ServiceType = "care"
	ServiceOvernight ServiceType = "overnight"
	ServiceGrooming  ServiceType = "grooming"
)

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAccepted   RequestStatus = "accepted"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

// validTransitions holds the allowed targets for each status. Completed and
// cancelled are terminal.
var validTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:    {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func (s RequestStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition reports whether the status machine allows moving to target.
func (s RequestStatus) CanTransition(target RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s RequestStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

type Request struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID  `bson:"client_id" json:"client_id"`
	PetID       primitive.ObjectID  `bson:"pet_id" json:"pet_id"`
	PetsitterID *primitive.ObjectID `bson:"petsitter_id,omitempty" json:"petsitter_id,omitempty"`
	ServiceType ServiceType         `bson:"service_type" json:"service_type"`
	StartDate   time.Time           `bson:"start_date" json:"start_date"`
	EndDate     time.Time           `bson:"end_date" json:"end_date"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Address     string              `bson:"address" json:"address"`
	Price       float64             `bson:"price" json:"price"`
	Status      RequestStatus       `bson:"status" json:"status"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CompletedAt *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
