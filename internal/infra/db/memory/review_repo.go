package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/reviews"
)

type ReviewRepository struct {
	mu    sync.Mutex
	items []domain.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{}
}

func (r *ReviewRepository) Save(_ context.Context, rv *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, *rv)
	return nil
}

func (r *ReviewRepository) LatestByAnalysis(_ context.Context, analysisID string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].AnalysisID == analysisID {
			rv := r.items[i]
			return &rv, nil
		}
	}
	return nil, nil
}
