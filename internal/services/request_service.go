package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"petsitter-app/internal/models"
)

const pendingFeedKey = "requests:pending"

type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	GetAll(ctx context.Context, status models.RequestStatus) ([]models.Request, error)
	GetPending(ctx context.Context) ([]models.Request, error)
	GetByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.Request, error)
	GetByPetsitter(ctx context.Context, petsitterID primitive.ObjectID) ([]models.Request, error)
	Accept(ctx context.Context, id, petsitterID primitive.ObjectID) (bool, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus, notes string, completedAt *time.Time) error
	CountByFilter(ctx context.Context, filter bson.M) (int64, error)
}

// PetOwnershipChecker is the slice of the pet service the request lifecycle
// needs.
type PetOwnershipChecker interface {
	CheckOwnership(ctx context.Context, petID, userID primitive.ObjectID) (bool, error)
}

type RequestService struct {
	repo  RequestRepository
	pets  PetOwnershipChecker
	cache Cache
}

func NewRequestService(repo RequestRepository, pets PetOwnershipChecker, cache Cache) *RequestService {
	return &RequestService{repo: repo, pets: pets, cache: cache}
}

// RequestStatistics is the per-caller breakdown of request counts.
type RequestStatistics struct {
	Total    int64                          `json:"total"`
	ByStatus map[models.RequestStatus]int64 `json:"byStatus"`
}

func (s *RequestService) Create(ctx context.Context, clientID primitive.ObjectID, request *models.Request) error {
	isOwner, err := s.pets.CheckOwnership(ctx, request.PetID, clientID)
	if err != nil {
		return err
	}
	if !isOwner {
		return fmt.Errorf("%w: you can only create requests for your own pets", models.ErrForbidden)
	}

	if !request.EndDate.After(request.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", models.ErrValidation)
	}
	if request.StartDate.Before(time.Now()) {
		return fmt.Errorf("%w: start date cannot be in the past", models.ErrValidation)
	}

	request.ClientID = clientID
	request.PetsitterID = nil
	request.Status = models.StatusPending
	request.CompletedAt = nil

	if err := s.repo.Create(ctx, request); err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, pendingFeedKey)
	return nil
}

func (s *RequestService) GetAll(ctx context.Context, status models.RequestStatus) ([]models.Request, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	return s.repo.GetAll(ctx, status)
}

// GetPending is the petsitter discovery feed, cached briefly and invalidated
// by every lifecycle write.
func (s *RequestService) GetPending(ctx context.Context) ([]models.Request, error) {
	var cached []models.Request
	if err := s.cache.Get(ctx, pendingFeedKey, &cached); err == nil {
		return cached, nil
	}

	requests, err := s.repo.GetPending(ctx)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, pendingFeedKey, requests, time.Minute)
	return requests, nil
}

// GetMine returns created requests for clients and assigned requests for
// petsitters.
func (s *RequestService) GetMine(ctx context.Context, userID primitive.ObjectID, role models.Role) ([]models.Request, error) {
	if role == models.RoleClient {
		return s.repo.GetByClient(ctx, userID)
	}
	return s.repo.GetByPetsitter(ctx, userID)
}

func (s *RequestService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	return s.repo.GetByID(ctx, id)
}

// Accept assigns the calling petsitter to a pending request. The repository
// performs a conditional update, so with two concurrent acceptances exactly
// one caller gets the request and the other a conflict.
func (s *RequestService) Accept(ctx context.Context, requestID, petsitterID primitive.ObjectID) (*models.Request, error) {
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.Status.Terminal() {
		return nil, fmt.Errorf("%w: only pending requests can be accepted", models.ErrValidation)
	}
	if request.PetsitterID != nil {
		return nil, fmt.Errorf("%w: request already accepted by another petsitter", models.ErrConflict)
	}
	if request.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: only pending requests can be accepted", models.ErrValidation)
	}

	accepted, err := s.repo.Accept(ctx, requestID, petsitterID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, fmt.Errorf("%w: request already accepted by another petsitter", models.ErrConflict)
	}

	_ = s.cache.Delete(ctx, pendingFeedKey)
	return s.repo.GetByID(ctx, requestID)
}

// UpdateStatus moves the request along the lifecycle. The caller must be the
// request's client or the assigned petsitter; transitions into in_progress and
// completed are reserved for the assigned petsitter.
func (s *RequestService) UpdateStatus(ctx context.Context, requestID, userID primitive.ObjectID, newStatus models.RequestStatus, notes string) (*models.Request, error) {
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	isClient := request.ClientID == userID
	isPetsitter := request.PetsitterID != nil && *request.PetsitterID == userID
	if !isClient && !isPetsitter {
		return nil, fmt.Errorf("%w: you can only update your own requests", models.ErrForbidden)
	}

	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, newStatus)
	}
	if !request.Status.CanTransition(newStatus) {
		return nil, &models.InvalidTransitionError{From: request.Status, To: newStatus}
	}
	if (newStatus == models.StatusInProgress || newStatus == models.StatusCompleted) && !isPetsitter {
		return nil, fmt.Errorf("%w: only the assigned petsitter can start or complete a request", models.ErrForbidden)
	}

	var completedAt *time.Time
	if newStatus == models.StatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, requestID, newStatus, notes, completedAt); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, pendingFeedKey)
	return s.repo.GetByID(ctx, requestID)
}

// Cancel sets the request to cancelled, client only. A petsitter assigned
// before cancellation stays on record.
func (s *RequestService) Cancel(ctx context.Context, requestID, userID primitive.ObjectID) error {
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.ClientID != userID {
		return fmt.Errorf("%w: only the client can cancel a request", models.ErrForbidden)
	}
	if request.Status == models.StatusCompleted {
		return fmt.Errorf("%w: cannot cancel completed request", models.ErrValidation)
	}
	if request.Status == models.StatusCancelled {
		return &models.InvalidTransitionError{From: request.Status, To: models.StatusCancelled}
	}

	if err := s.repo.UpdateStatus(ctx, requestID, models.StatusCancelled, "", nil); err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, pendingFeedKey)
	return nil
}

func (s *RequestService) GetStatistics(ctx context.Context, userID primitive.ObjectID, role models.Role) (*RequestStatistics, error) {
	base := bson.M{"client_id": userID}
	if role == models.RolePetsitter {
		base = bson.M{"petsitter_id": userID}
	}

	total, err := s.repo.CountByFilter(ctx, base)
	if err != nil {
		return nil, err
	}

	stats := &RequestStatistics{
		Total:    total,
		ByStatus: make(map[models.RequestStatus]int64),
	}

	for _, status := range []models.RequestStatus{
		models.StatusPending,
		models.StatusAccepted,
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		filter := bson.M{"status": status}
		for k, v := range base {
			filter[k] = v
		}
		count, err := s.repo.CountByFilter(ctx, filter)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}

	return stats, nil
}
