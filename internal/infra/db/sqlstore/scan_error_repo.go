package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/scanerrors"
)

type ScanErrorRepository struct {
	db *sql.DB
	d  Dialect
}

func NewScanErrorRepository(db *sql.DB, d Dialect) *ScanErrorRepository {
	return &ScanErrorRepository{db: db, d: d}
}

func (r *ScanErrorRepository) Save(ctx context.Context, e *domain.ScanError) error {
	const q = `
INSERT INTO code_analysis_errors
  (analysis_id, phase, message, details_json, created_at)
VALUES (?,?,?,?,?)`

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	args := []any{
		dashIfEmpty(e.AnalysisID), dashIfEmpty(e.Phase), dashIfEmpty(e.Message),
		jsonOrWrap(e.DetailsJSON), e.CreatedAt.UnixNano(),
	}

	if r.d.Returning {
		if err := r.db.QueryRowContext(ctx, r.d.Rebind(q+" RETURNING id"), args...).Scan(&e.ID); err != nil {
			return fmt.Errorf("inserting scan error: %w", err)
		}
		return nil
	}
	res, err := r.db.ExecContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return fmt.Errorf("inserting scan error: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

// ListByAnalysis returns newest first.
func (r *ScanErrorRepository) ListByAnalysis(ctx context.Context, analysisID string, limit int) ([]*domain.ScanError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, analysis_id, phase, message, details_json, created_at
FROM code_analysis_errors
WHERE analysis_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), analysisID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scan errors: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.ScanError, 0)
	for rows.Next() {
		var e domain.ScanError
		var created int64
		if err := rows.Scan(&e.ID, &e.AnalysisID, &e.Phase, &e.Message, &e.DetailsJSON, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}
