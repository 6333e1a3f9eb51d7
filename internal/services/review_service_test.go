package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"petsitter-app/internal/models"
)

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[primitive.ObjectID]*models.Review)}
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	clone := *review
	f.reviews[review.ID] = &clone
	return nil
}

func (f *fakeReviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.reviews[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *review
	return &clone, nil
}

func (f *fakeReviewRepo) ExistsByRequest(ctx context.Context, requestID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.RequestID == requestID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) GetByPetsitter(ctx context.Context, petsitterID primitive.ObjectID, visibleOnly bool) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if r.PetsitterID != petsitterID {
			continue
		}
		if visibleOnly && !r.IsVisible {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReviewRepo) GetAllVisible(ctx context.Context, petsitterID *primitive.ObjectID) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if !r.IsVisible {
			continue
		}
		if petsitterID != nil && r.PetsitterID != *petsitterID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReviewRepo) SetVisibility(ctx context.Context, id primitive.ObjectID, visible bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.reviews[id]
	if !ok {
		return models.ErrNotFound
	}
	review.IsVisible = visible
	return nil
}

type fakeRequestGetter struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.Request
}

func (f *fakeRequestGetter) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *request
	return &clone, nil
}

func (f *fakeRequestGetter) add(request *models.Request) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requests == nil {
		f.requests = make(map[primitive.ObjectID]*models.Request)
	}
	request.ID = primitive.NewObjectID()
	f.requests[request.ID] = request
	return request.ID
}

type fakeRatingUpdater struct {
	mu      sync.Mutex
	ratings map[primitive.ObjectID]float64
	counts  map[primitive.ObjectID]int
	calls   int
}

func newFakeRatingUpdater() *fakeRatingUpdater {
	return &fakeRatingUpdater{
		ratings: make(map[primitive.ObjectID]float64),
		counts:  make(map[primitive.ObjectID]int),
	}
}

func (f *fakeRatingUpdater) UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64, reviewsCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[id] = rating
	f.counts[id] = reviewsCount
	f.calls++
	return nil
}

type reviewFixture struct {
	svc         *ReviewService
	repo        *fakeReviewRepo
	requests    *fakeRequestGetter
	users       *fakeRatingUpdater
	clientID    primitive.ObjectID
	petsitterID primitive.ObjectID
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	repo := newFakeReviewRepo()
	requests := &fakeRequestGetter{}
	users := newFakeRatingUpdater()
	return &reviewFixture{
		svc:         NewReviewService(repo, requests, users, noopCache{}),
		repo:        repo,
		requests:    requests,
		users:       users,
		clientID:    primitive.NewObjectID(),
		petsitterID: primitive.NewObjectID(),
	}
}

// completedRequest registers a completed request between the fixture's client
// and petsitter and returns its id.
func (fx *reviewFixture) completedRequest() primitive.ObjectID {
	petsitterID := fx.petsitterID
	return fx.requests.add(&models.Request{
		ClientID:    fx.clientID,
		PetsitterID: &petsitterID,
		Status:      models.StatusCompleted,
	})
}

func TestCreateReview(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	requestID := fx.completedRequest()
	review, err := fx.svc.Create(ctx, fx.clientID, requestID, 5, "excellent care")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !review.IsVisible {
		t.Error("new reviews should be visible")
	}
	if review.PetsitterID != fx.petsitterID {
		t.Error("petsitterId not taken from the request")
	}

	if got := fx.users.ratings[fx.petsitterID]; got != 5.0 {
		t.Errorf("rating = %v, want 5.0", got)
	}
	if got := fx.users.counts[fx.petsitterID]; got != 1 {
		t.Errorf("reviewsCount = %d, want 1", got)
	}

	// one review per request
	_, err = fx.svc.Create(ctx, fx.clientID, requestID, 4, "again")
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate Create() error = %v, want conflict", err)
	}
	if fx.users.counts[fx.petsitterID] != 1 {
		t.Error("rejected duplicate must not touch the aggregate")
	}
}

func TestCreateReview_RequestNotFound(t *testing.T) {
	fx := newReviewFixture(t)

	_, err := fx.svc.Create(context.Background(), fx.clientID, primitive.NewObjectID(), 5, "")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Create() error = %v, want not found", err)
	}
}

func TestCreateReview_NotRequestClient(t *testing.T) {
	fx := newReviewFixture(t)

	requestID := fx.completedRequest()
	_, err := fx.svc.Create(context.Background(), primitive.NewObjectID(), requestID, 5, "")
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("Create() error = %v, want forbidden", err)
	}
}

func TestCreateReview_RequestNotCompleted(t *testing.T) {
	fx := newReviewFixture(t)

	petsitterID := fx.petsitterID
	for _, status := range []models.RequestStatus{
		models.StatusPending,
		models.StatusAccepted,
		models.StatusInProgress,
		models.StatusCancelled,
	} {
		requestID := fx.requests.add(&models.Request{
			ClientID:    fx.clientID,
			PetsitterID: &petsitterID,
			Status:      status,
		})
		_, err := fx.svc.Create(context.Background(), fx.clientID, requestID, 5, "")
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("Create() on %s request error = %v, want validation error", status, err)
		}
	}
	if fx.users.calls != 0 {
		t.Error("no aggregate writes expected")
	}
}

func TestCreateReview_NoPetsitterAssigned(t *testing.T) {
	fx := newReviewFixture(t)

	requestID := fx.requests.add(&models.Request{
		ClientID: fx.clientID,
		Status:   models.StatusCompleted,
	})
	_, err := fx.svc.Create(context.Background(), fx.clientID, requestID, 5, "")
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Create() error = %v, want validation error", err)
	}
}

func TestRatingRecompute_Rounding(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	steps := []struct {
		rating    int
		wantMean  float64
		wantCount int
	}{
		{5, 5.0, 1},
		{4, 4.5, 2},
		{4, 4.33, 3},
	}

	for _, step := range steps {
		requestID := fx.completedRequest()
		if _, err := fx.svc.Create(ctx, fx.clientID, requestID, step.rating, ""); err != nil {
			t.Fatalf("Create(%d) error = %v", step.rating, err)
		}
		if got := fx.users.ratings[fx.petsitterID]; got != step.wantMean {
			t.Errorf("after rating %d: mean = %v, want %v", step.rating, got, step.wantMean)
		}
		if got := fx.users.counts[fx.petsitterID]; got != step.wantCount {
			t.Errorf("after rating %d: count = %d, want %d", step.rating, got, step.wantCount)
		}
	}
}

func TestRecomputeIncludesHiddenReviews(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	first, err := fx.svc.Create(ctx, fx.clientID, fx.completedRequest(), 1, "bad day")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.svc.ToggleVisibility(ctx, first.ID, fx.petsitterID); err != nil {
		t.Fatal(err)
	}

	if _, err := fx.svc.Create(ctx, fx.clientID, fx.completedRequest(), 5, ""); err != nil {
		t.Fatal(err)
	}

	// (1+5)/2, the hidden review still counts
	if got := fx.users.ratings[fx.petsitterID]; got != 3.0 {
		t.Errorf("mean = %v, want 3.0", got)
	}
	if got := fx.users.counts[fx.petsitterID]; got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestToggleVisibility(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review, err := fx.svc.Create(ctx, fx.clientID, fx.completedRequest(), 4, "")
	if err != nil {
		t.Fatal(err)
	}
	callsAfterCreate := fx.users.calls

	hidden, err := fx.svc.ToggleVisibility(ctx, review.ID, fx.petsitterID)
	if err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	if hidden.IsVisible {
		t.Error("review should be hidden after first toggle")
	}

	// hidden reviews leave the public listing
	visible, err := fx.svc.GetByPetsitter(ctx, fx.petsitterID)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Errorf("visible reviews = %d, want 0", len(visible))
	}

	shown, err := fx.svc.ToggleVisibility(ctx, review.ID, fx.petsitterID)
	if err != nil {
		t.Fatal(err)
	}
	if !shown.IsVisible {
		t.Error("review should be visible after second toggle")
	}

	if fx.users.calls != callsAfterCreate {
		t.Error("toggling visibility must never touch the rating aggregate")
	}

	// only the reviewed petsitter may toggle
	_, err = fx.svc.ToggleVisibility(ctx, review.ID, primitive.NewObjectID())
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("ToggleVisibility() by stranger error = %v, want forbidden", err)
	}
}

func TestConcurrentReviews(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	firstID := fx.completedRequest()
	secondID := fx.completedRequest()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, requestID := range []primitive.ObjectID{firstID, secondID} {
		wg.Add(1)
		go func(i int, requestID primitive.ObjectID) {
			defer wg.Done()
			rating := 5
			if i == 1 {
				rating = 4
			}
			_, errs[i] = fx.svc.Create(ctx, fx.clientID, requestID, rating, "")
		}(i, requestID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent Create #%d error = %v", i, err)
		}
	}
	if got := fx.users.counts[fx.petsitterID]; got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	if got := fx.users.ratings[fx.petsitterID]; got != 4.5 {
		t.Errorf("mean = %v, want 4.5", got)
	}
}

func TestGetReviewStatistics(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	for _, rating := range []int{5, 4, 4, 1} {
		if _, err := fx.svc.Create(ctx, fx.clientID, fx.completedRequest(), rating, ""); err != nil {
			t.Fatal(err)
		}
	}

	// hide the bad one; statistics still see it
	all, err := fx.repo.GetByPetsitter(ctx, fx.petsitterID, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, review := range all {
		if review.Rating == 1 {
			if _, err := fx.svc.ToggleVisibility(ctx, review.ID, fx.petsitterID); err != nil {
				t.Fatal(err)
			}
		}
	}

	stats, err := fx.svc.GetStatistics(ctx, fx.petsitterID)
	if err != nil {
		t.Fatalf("GetStatistics() error = %v", err)
	}
	if stats.TotalReviews != 4 {
		t.Errorf("totalReviews = %d, want 4", stats.TotalReviews)
	}
	if stats.AverageRating != 3.5 {
		t.Errorf("averageRating = %v, want 3.5", stats.AverageRating)
	}
	wantDist := map[int]int{1: 1, 2: 0, 3: 0, 4: 2, 5: 1}
	for rating, want := range wantDist {
		if got := stats.RatingDistribution[rating]; got != want {
			t.Errorf("distribution[%d] = %d, want %d", rating, got, want)
		}
	}
}

func TestGetReviewStatistics_Empty(t *testing.T) {
	fx := newReviewFixture(t)

	stats, err := fx.svc.GetStatistics(context.Background(), fx.petsitterID)
	if err != nil {
		t.Fatalf("GetStatistics() error = %v", err)
	}
	if stats.TotalReviews != 0 || stats.AverageRating != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
	for rating := 1; rating <= 5; rating++ {
		if stats.RatingDistribution[rating] != 0 {
			t.Errorf("distribution[%d] = %d, want 0", rating, stats.RatingDistribution[rating])
		}
	}
}
