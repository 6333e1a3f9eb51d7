package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"petsitter-app/internal/models"
)

type PetRepository interface {
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error)
	GetAllActive(ctx context.Context) ([]models.Pet, error)
	GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Pet, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type PetService struct {
	repo PetRepository
}

func NewPetService(repo PetRepository) *PetService {
	return &PetService{repo: repo}
}

// UpdatePetRequest carries optional pet fields, nil means unchanged.
type UpdatePetRequest struct {
	Name         *string         `json:"name"`
	Type         *models.PetType `json:"type" binding:"omitempty,oneof=dog cat bird rabbit other"`
	Breed        *string         `json:"breed"`
	Age          *int            `json:"age" binding:"omitempty,gte=0"`
	Size         *models.PetSize `json:"size" binding:"omitempty,oneof=small medium large"`
	Weight       *float64        `json:"weight" binding:"omitempty,gte=0"`
	SpecialNeeds *string         `json:"special_needs"`
	MedicalInfo  *string         `json:"medical_info"`
	Photo        *string         `json:"photo"`
}

func (s *PetService) Create(ctx context.Context, ownerID primitive.ObjectID, pet *models.Pet) error {
	pet.OwnerID = ownerID
	return s.repo.Create(ctx, pet)
}

func (s *PetService) GetAll(ctx context.Context) ([]models.Pet, error) {
	return s.repo.GetAllActive(ctx)
}

func (s *PetService) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Pet, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

func (s *PetService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PetService) Update(ctx context.Context, id, userID primitive.ObjectID, req UpdatePetRequest) (*models.Pet, error) {
	pet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != userID {
		return nil, fmt.Errorf("%w: you can only edit your own pets", models.ErrForbidden)
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Type != nil {
		fields["type"] = *req.Type
	}
	if req.Breed != nil {
		fields["breed"] = *req.Breed
	}
	if req.Age != nil {
		fields["age"] = *req.Age
	}
	if req.Size != nil {
		fields["size"] = *req.Size
	}
	if req.Weight != nil {
		fields["weight"] = *req.Weight
	}
	if req.SpecialNeeds != nil {
		fields["special_needs"] = *req.SpecialNeeds
	}
	if req.MedicalInfo != nil {
		fields["medical_info"] = *req.MedicalInfo
	}
	if req.Photo != nil {
		fields["photo"] = *req.Photo
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.GetByID(ctx, id)
}

// Remove soft-deletes the pet, owner only.
func (s *PetService) Remove(ctx context.Context, id, userID primitive.ObjectID) error {
	pet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pet.OwnerID != userID {
		return fmt.Errorf("%w: you can only delete your own pets", models.ErrForbidden)
	}
	return s.repo.Deactivate(ctx, id)
}

// CheckOwnership reports whether the pet belongs to the user. Used by the
// request service before creating a request.
func (s *PetService) CheckOwnership(ctx context.Context, petID, userID primitive.ObjectID) (bool, error) {
	pet, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return false, err
	}
	return pet.OwnerID == userID, nil
}
