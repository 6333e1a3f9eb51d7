package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"petsitter-app/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetAll(ctx context.Context, role models.Role) ([]models.User, error)
	GetPetsitters(ctx context.Context, minRating float64) ([]models.User, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64, reviewsCount int) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type UserService struct {
	repo  UserRepository
	cache Cache
}

func NewUserService(repo UserRepository, cache Cache) *UserService {
	return &UserService{repo: repo, cache: cache}
}

// UpdateProfileRequest carries the whitelisted profile fields. Nil means
// "leave unchanged".
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Bio     *string `json:"bio"`
}

func profileCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("user_profile:%s", id.Hex())
}

func (s *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var cached models.User
	if err := s.cache.Get(ctx, profileCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, profileCacheKey(id), user, 5*time.Minute)
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req UpdateProfileRequest) (*models.User, error) {
	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
		_ = s.cache.Delete(ctx, profileCacheKey(id))
	}

	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetAll(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.repo.GetAll(ctx, role)
}

func (s *UserService) GetPetsitters(ctx context.Context, minRating float64) ([]models.User, error) {
	return s.repo.GetPetsitters(ctx, minRating)
}

func (s *UserService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, profileCacheKey(id))
	return nil
}

// UpdateRating writes a freshly computed rating aggregate onto the user.
// Used by the review service after every new review.
func (s *UserService) UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64, reviewsCount int) error {
	if err := s.repo.UpdateRating(ctx, id, rating, reviewsCount); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, profileCacheKey(id))
	return nil
}
