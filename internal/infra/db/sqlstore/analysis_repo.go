package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

const selectAnalysis = `
SELECT id, filename, language, code, status, results, duration_ms,
       failure_reason, report_url, created_at
FROM code_analyses`

type AnalysisRepository struct {
	db *sql.DB
	d  Dialect
}

func NewAnalysisRepository(db *sql.DB, d Dialect) *AnalysisRepository {
	return &AnalysisRepository{db: db, d: d}
}

// Create insert Analysis record
func (r *AnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO code_analyses
(id, filename, language, code, status, results,
 critical, high, medium, low, findings_total,
 duration_ms, failure_reason, report_url, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	results, sum, err := encodeResults(a.Results)
	if err != nil {
		return err
	}
	var duration sql.NullInt64
	if a.Duration != nil {
		duration = sql.NullInt64{Int64: *a.Duration, Valid: true}
	}
	_, err = r.db.ExecContext(ctx, r.d.Rebind(q),
		a.ID, a.Filename, a.Language, a.Code, a.Status, results,
		sum.Critical, sum.High, sum.Medium, sum.Low, sum.Total,
		duration, a.FailureReason, a.ReportURL, a.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

// Get by ID
func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	row := r.db.QueryRowContext(ctx, r.d.Rebind(selectAnalysis+" WHERE id = ?"), id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

func (r *AnalysisRepository) List(ctx context.Context) ([]*domain.Analysis, error) {
	return r.query(ctx, selectAnalysis+r.orderBy())
}

// Latest N analysis terakhir
func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	return r.query(ctx, selectAnalysis+r.orderBy()+" LIMIT ?", limit)
}

func (r *AnalysisRepository) ListPending(ctx context.Context) ([]*domain.Analysis, error) {
	return r.query(ctx, selectAnalysis+" WHERE status = ?"+r.orderBy(), domain.StatusPending)
}

// Update merges the patch in a single statement. Lifecycle fields carry the
// `status = 'pending'` guard so a terminal analysis is never changed again.
func (r *AnalysisRepository) Update(ctx context.Context, id domain.AnalysisID, p domain.Patch) (*domain.Analysis, error) {
	if err := p.Validate(); err != nil {
		current, gerr := r.Get(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, p.Check(current.Status)
	}
	var sets []string
	var args []any
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	if p.Results != nil {
		results, sum, err := encodeResults(p.Results)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "results = ?", "critical = ?", "high = ?", "medium = ?", "low = ?", "findings_total = ?")
		args = append(args, results, sum.Critical, sum.High, sum.Medium, sum.Low, sum.Total)
	}
	if p.Duration != nil {
		sets = append(sets, "duration_ms = ?")
		args = append(args, *p.Duration)
	}
	if p.FailureReason != nil {
		sets = append(sets, "failure_reason = ?")
		args = append(args, *p.FailureReason)
	}
	if p.ReportURL != nil {
		sets = append(sets, "report_url = ?")
		args = append(args, *p.ReportURL)
	}
	if len(sets) == 0 {
		return r.Get(ctx, id)
	}

	q := "UPDATE code_analyses SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	if p.Lifecycle() {
		q += " AND status = ?"
		args = append(args, domain.StatusPending)
	}
	res, err := r.db.ExecContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("updating analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating analysis: %w", err)
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// zero rows with a terminal record: the pending guard rejected the patch
	if n == 0 && p.Lifecycle() && current.Status.Terminal() {
		return nil, domain.ErrTerminal
	}
	return current, nil
}

// Stats dihitung dari semua analysis
func (r *AnalysisRepository) Stats(ctx context.Context) (domain.Stats, error) {
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status = ? THEN findings_total ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN status = ? THEN critical + high ELSE 0 END), 0)
FROM code_analyses`
	var total, bugs, vulns int64
	err := r.db.QueryRowContext(ctx, r.d.Rebind(q), domain.StatusCompleted, domain.StatusCompleted).
		Scan(&total, &bugs, &vulns)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("analysis stats: %w", err)
	}
	return domain.NewStats(int(total), int(bugs), int(vulns)), nil
}

func (r *AnalysisRepository) orderBy() string {
	return " ORDER BY created_at DESC, " + r.d.SeqColumn + " ASC"
}

func (r *AnalysisRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var results sql.NullString
	var duration sql.NullInt64
	var created int64
	if err := s.Scan(
		&a.ID, &a.Filename, &a.Language, &a.Code, &a.Status, &results, &duration,
		&a.FailureReason, &a.ReportURL, &created,
	); err != nil {
		return nil, err
	}
	a.CreatedAt = time.Unix(0, created).UTC()
	if duration.Valid {
		d := duration.Int64
		a.Duration = &d
	}
	if results.Valid && results.String != "" {
		var res domain.Result
		if err := json.Unmarshal([]byte(results.String), &res); err != nil {
			return nil, fmt.Errorf("decoding results of %s: %w", a.ID, err)
		}
		a.Results = &res
	}
	return &a, nil
}

func encodeResults(res *domain.Result) (sql.NullString, domain.Summary, error) {
	if res == nil {
		return sql.NullString{}, domain.Summary{}, nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return sql.NullString{}, domain.Summary{}, fmt.Errorf("encoding results: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, res.Summary, nil
}
