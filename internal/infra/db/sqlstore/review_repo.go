package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/reviews"
)

type ReviewRepository struct {
	db *sql.DB
	d  Dialect
}

func NewReviewRepository(db *sql.DB, d Dialect) *ReviewRepository {
	return &ReviewRepository{db: db, d: d}
}

// Save inserts a review record
func (r *ReviewRepository) Save(ctx context.Context, rv *domain.Review) error {
	const q = `
INSERT INTO code_analysis_reviews
  (id, analysis_id, model, content, created_at)
VALUES (?,?,?,?,?)`

	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	// content is stored verbatim, model replies are not guaranteed JSON
	_, err := r.db.ExecContext(ctx, r.d.Rebind(q),
		rv.ID, rv.AnalysisID, dashIfEmpty(rv.Model), rv.Content, rv.CreatedAt.UnixNano())
	return err
}

// LatestByAnalysis ambil review terbaru, nil kalau belum ada
func (r *ReviewRepository) LatestByAnalysis(ctx context.Context, analysisID string) (*domain.Review, error) {
	const q = `
SELECT id, analysis_id, model, content, created_at
FROM code_analysis_reviews
WHERE analysis_id = ?
ORDER BY created_at DESC
LIMIT 1`
	var rv domain.Review
	var created int64
	err := r.db.QueryRowContext(ctx, r.d.Rebind(q), analysisID).
		Scan(&rv.ID, &rv.AnalysisID, &rv.Model, &rv.Content, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rv.CreatedAt = time.Unix(0, created).UTC()
	return &rv, nil
}
