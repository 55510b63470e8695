package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/scanerrors"
)

type ScanErrorRepository struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.ScanError
}

func NewScanErrorRepository() *ScanErrorRepository {
	return &ScanErrorRepository{nextID: 1}
}

func (r *ScanErrorRepository) Save(_ context.Context, e *domain.ScanError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.ID = r.nextID
	r.nextID++
	r.items = append(r.items, *e)
	return nil
}

// ListByAnalysis returns newest first.
func (r *ScanErrorRepository) ListByAnalysis(_ context.Context, analysisID string, limit int) ([]*domain.ScanError, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ScanError
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].AnalysisID != analysisID {
			continue
		}
		e := r.items[i]
		out = append(out, &e)
	}
	return out, nil
}
