package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleClient    Role = "client"
	RolePetsitter Role = "petsitter"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	Phone        string             `bson:"phone" json:"phone"`
	Role         Role               `bson:"role" json:"role"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Rating       float64            `bson:"rating" json:"rating"`
	ReviewsCount int                `bson:"reviews_count" json:"reviews_count"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}
