package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

type record struct {
	a   domain.Analysis
	seq uint64
}

// AnalysisRepository is the in-process job store. Every method takes the lock
// for its whole body and hands out copies, so readers always see either the
// state before or after an Update, never a half merged record.
type AnalysisRepository struct {
	mu   sync.RWMutex
	byID map[domain.AnalysisID]*record
	seq  uint64
	now  func() time.Time
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{
		byID: make(map[domain.AnalysisID]*record),
		now:  time.Now,
	}
}

// Create stores a copy of a. CreatedAt is stamped when zero.
func (r *AnalysisRepository) Create(_ context.Context, a *domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC()
	}
	r.seq++
	r.byID[a.ID] = &record{a: *clone(*a), seq: r.seq}
	return nil
}

func (r *AnalysisRepository) Get(_ context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(rec.a), nil
}

func (r *AnalysisRepository) List(_ context.Context) ([]*domain.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(nil), nil
}

func (r *AnalysisRepository) Latest(_ context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sorted(nil)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *AnalysisRepository) ListPending(_ context.Context) ([]*domain.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(a *domain.Analysis) bool { return a.Status == domain.StatusPending }), nil
}

// Update merges p under the write lock. Lifecycle fields are only accepted while
// the analysis is still pending.
func (r *AnalysisRepository) Update(_ context.Context, id domain.AnalysisID, p domain.Patch) (*domain.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := p.Check(rec.a.Status); err != nil {
		return nil, err
	}
	rec.a = p.Apply(rec.a)
	return clone(rec.a), nil
}

func (r *AnalysisRepository) Stats(_ context.Context) (domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var bugs, vulns int
	for _, rec := range r.byID {
		if rec.a.Status != domain.StatusCompleted || rec.a.Results == nil {
			continue
		}
		bugs += rec.a.Results.Summary.Total
		vulns += rec.a.Results.Summary.Vulnerabilities()
	}
	return domain.NewStats(len(r.byID), bugs, vulns), nil
}

// sorted returns copies newest first, ties in insertion order. Caller holds the lock.
func (r *AnalysisRepository) sorted(keep func(*domain.Analysis) bool) []*domain.Analysis {
	recs := make([]*record, 0, len(r.byID))
	for _, rec := range r.byID {
		if keep != nil && !keep(&rec.a) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		ti, tj := recs[i].a.CreatedAt, recs[j].a.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return recs[i].seq < recs[j].seq
	})
	out := make([]*domain.Analysis, len(recs))
	for i, rec := range recs {
		out[i] = clone(rec.a)
	}
	return out
}

// clone detaches the pointer fields so callers cannot reach stored state.
func clone(a domain.Analysis) *domain.Analysis {
	if a.Duration != nil {
		d := *a.Duration
		a.Duration = &d
	}
	if a.Results != nil {
		res := *a.Results
		res.Issues = make([]domain.Issue, len(a.Results.Issues))
		copy(res.Issues, a.Results.Issues)
		a.Results = &res
	}
	return &a
}
