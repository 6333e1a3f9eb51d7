package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"petsitter-app/internal/models"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ExistsByRequest(ctx context.Context, requestID primitive.ObjectID) (bool, error)
	GetByPetsitter(ctx context.Context, petsitterID primitive.ObjectID, visibleOnly bool) ([]models.Review, error)
	GetAllVisible(ctx context.Context, petsitterID *primitive.ObjectID) ([]models.Review, error)
	SetVisibility(ctx context.Context, id primitive.ObjectID, visible bool) error
}

// RequestGetter is the slice of the request service the review flow needs.
type RequestGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
}

// RatingUpdater writes the recomputed aggregate onto the petsitter's user
// record.
type RatingUpdater interface {
	UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64, reviewsCount int) error
}

type ReviewService struct {
	repo     ReviewRepository
	requests RequestGetter
	users    RatingUpdater
	cache    Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReviewService(repo ReviewRepository, requests RequestGetter, users RatingUpdater, cache Cache) *ReviewService {
	return &ReviewService{
		repo:     repo,
		requests: requests,
		users:    users,
		cache:    cache,
		locks:    make(map[string]*sync.Mutex),
	}
}

// petsitterLock serializes the check-insert-recompute sequence per petsitter,
// otherwise two concurrent reviews could each read a stale review set and the
// second aggregate write would lose the first.
func (s *ReviewService) petsitterLock(petsitterID primitive.ObjectID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := petsitterID.Hex()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func statsCacheKey(petsitterID primitive.ObjectID) string {
	return fmt.Sprintf("review_stats:%s", petsitterID.Hex())
}

func (s *ReviewService) Create(ctx context.Context, clientID, requestID primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.ClientID != clientID {
		return nil, fmt.Errorf("%w: you can only review your own requests", models.ErrForbidden)
	}
	if request.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: reviews are only allowed for completed requests", models.ErrValidation)
	}
	if request.PetsitterID == nil {
		return nil, fmt.Errorf("%w: request has no assigned petsitter", models.ErrValidation)
	}

	petsitterID := *request.PetsitterID
	lock := s.petsitterLock(petsitterID)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.repo.ExistsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: a review for this request already exists", models.ErrConflict)
	}

	review := &models.Review{
		RequestID:   requestID,
		ClientID:    clientID,
		PetsitterID: petsitterID,
		Rating:      rating,
		Comment:     comment,
		IsVisible:   true,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.recomputeRating(ctx, petsitterID); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, statsCacheKey(petsitterID))
	return review, nil
}

// recomputeRating reads every review for the petsitter, hidden ones included,
// and writes the rounded mean plus count back to the user record. A full
// recompute rather than an incremental update, so the aggregate can never
// drift.
func (s *ReviewService) recomputeRating(ctx context.Context, petsitterID primitive.ObjectID) error {
	reviews, err := s.repo.GetByPetsitter(ctx, petsitterID, false)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}

	total := 0
	for _, review := range reviews {
		total += review.Rating
	}
	average := round2(float64(total) / float64(len(reviews)))

	return s.users.UpdateRating(ctx, petsitterID, average, len(reviews))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetAll lists visible reviews, optionally narrowed to one petsitter.
func (s *ReviewService) GetAll(ctx context.Context, petsitterID *primitive.ObjectID) ([]models.Review, error) {
	return s.repo.GetAllVisible(ctx, petsitterID)
}

func (s *ReviewService) GetByPetsitter(ctx context.Context, petsitterID primitive.ObjectID) ([]models.Review, error) {
	return s.repo.GetByPetsitter(ctx, petsitterID, true)
}

func (s *ReviewService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return s.repo.GetByID(ctx, id)
}

// ToggleVisibility flips the review's visibility, reviewed petsitter only.
// Visibility never feeds into the rating aggregate.
func (s *ReviewService) ToggleVisibility(ctx context.Context, reviewID, petsitterID primitive.ObjectID) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.PetsitterID != petsitterID {
		return nil, fmt.Errorf("%w: you can only manage reviews about yourself", models.ErrForbidden)
	}

	if err := s.repo.SetVisibility(ctx, reviewID, !review.IsVisible); err != nil {
		return nil, err
	}

	review.IsVisible = !review.IsVisible
	return review, nil
}

// GetStatistics aggregates all reviews for the petsitter, hidden ones
// included, matching what the rating recompute sees.
func (s *ReviewService) GetStatistics(ctx context.Context, petsitterID primitive.ObjectID) (*models.ReviewStatistics, error) {
	var cached models.ReviewStatistics
	if err := s.cache.Get(ctx, statsCacheKey(petsitterID), &cached); err == nil {
		return &cached, nil
	}

	reviews, err := s.repo.GetByPetsitter(ctx, petsitterID, false)
	if err != nil {
		return nil, err
	}

	stats := &models.ReviewStatistics{
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	total := 0
	for _, review := range reviews {
		total += review.Rating
		stats.RatingDistribution[review.Rating]++
	}
	stats.TotalReviews = len(reviews)
	if len(reviews) > 0 {
		stats.AverageRating = round2(float64(total) / float64(len(reviews)))
	}

	_ = s.cache.Set(ctx, statsCacheKey(petsitterID), stats, time.Minute)
	return stats, nil
}
