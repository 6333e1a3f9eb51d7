package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PetType string

const (
	PetDog    PetType = "dog"
	PetCat    PetType = "cat"
	PetBird   PetType = "bird"
	PetRabbit PetType = "rabbit"
	PetOther  PetType = "other"
)

type PetSize string

const (
	SizeSmall  PetSize = "small"
	SizeMedium PetSize = "medium"
	SizeLarge  PetSize = "large"
)

type Pet struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Name         string             `bson:"name" json:"name"`
	Type         PetType            `bson:"type" json:"type"`
	Breed        string             `bson:"breed" json:"breed"`
	Age          int                `bson:"age" json:"age"`
	Size         PetSize            `bson:"size" json:"size"`
	Weight       *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	SpecialNeeds string             `bson:"special_needs,omitempty" json:"special_needs,omitempty"`
	MedicalInfo  string             `bson:"medical_info,omitempty" json:"medical_info,omitempty"`
	Photo        string             `bson:"photo,omitempty" json:"photo,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
