package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
	"github.com/bryanwahyu/codeguard/internal/domain/reviews"
	"github.com/bryanwahyu/codeguard/internal/domain/scanerrors"
	"github.com/bryanwahyu/codeguard/internal/infra/db/sqlstore"
)

func openTestDB(t *testing.T) *sqlstore.AnalysisRepository {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "data", "codeguard.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlstore.EnsureSchema(ctx, db, Dialect); err != nil {
		t.Fatalf("schema: %v", err)
	}
	// idempotent
	if err := sqlstore.EnsureSchema(ctx, db, Dialect); err != nil {
		t.Fatalf("schema twice: %v", err)
	}
	return sqlstore.NewAnalysisRepository(db, Dialect)
}

func pending(id string, at time.Time) *domain.Analysis {
	return &domain.Analysis{
		ID:        domain.AnalysisID(id),
		Filename:  id + ".py",
		Language:  domain.LanguagePython,
		Code:      "eval(x)",
		Status:    domain.StatusPending,
		CreatedAt: at,
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)
	if err := repo.Create(ctx, pending("a1", at)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(at) || got.Results != nil || got.Duration != nil || got.Status != domain.StatusPending {
		t.Fatalf("pending analysis = %+v", got)
	}

	st := domain.StatusCompleted
	d := int64(12)
	res := domain.Result{
		Issues: []domain.Issue{
			{ID: "i1", Severity: domain.SeverityCritical, Title: "Use of eval()", Line: 1, RuleID: "no-eval", CodeSnippet: "eval(x)"},
		},
		Summary:      domain.Summary{Critical: 1, Total: 1},
		AnalysisTime: 12,
		LinesOfCode:  1,
	}
	upd, err := repo.Update(ctx, "a1", domain.Patch{Status: &st, Results: &res, Duration: &d})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Status != st || upd.Results == nil || upd.Results.Issues[0].RuleID != "no-eval" || *upd.Duration != 12 {
		t.Fatalf("updated analysis = %+v", upd)
	}

	failed := domain.StatusFailed
	if _, err := repo.Update(ctx, "a1", domain.Patch{Status: &failed}); !errors.Is(err, domain.ErrTerminal) {
		t.Fatalf("second transition err = %v, want ErrTerminal", err)
	}
	url := "http://minio/reports/a1.json"
	if upd, err = repo.Update(ctx, "a1", domain.Patch{ReportURL: &url}); err != nil || upd.ReportURL != url {
		t.Fatalf("report url patch = %+v, %v", upd, err)
	}
	if _, err := repo.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
	if _, err := repo.Update(ctx, "nope", domain.Patch{Status: &failed}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing update err = %v", err)
	}
}

func TestFailedAnalysisRejectsResults(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	if err := repo.Create(ctx, pending("f1", time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}
	failed := domain.StatusFailed
	reason := domain.ReasonTimeout
	if _, err := repo.Update(ctx, "f1", domain.Patch{Status: &failed, FailureReason: &reason}); err != nil {
		t.Fatalf("fail: %v", err)
	}

	res := domain.Result{Summary: domain.Summary{Total: 3}}
	d := int64(9)
	if _, err := repo.Update(ctx, "f1", domain.Patch{Results: &res}); !errors.Is(err, domain.ErrTerminal) {
		t.Fatalf("results-only patch err = %v, want ErrTerminal", err)
	}
	completed := domain.StatusCompleted
	if _, err := repo.Update(ctx, "f1", domain.Patch{Status: &completed, Results: &res, Duration: &d}); !errors.Is(err, domain.ErrTerminal) {
		t.Fatalf("completing a failed analysis err = %v, want ErrTerminal", err)
	}

	got, err := repo.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusFailed || got.Results != nil || got.Duration != nil || got.FailureReason != domain.ReasonTimeout {
		t.Fatalf("failed analysis changed: %+v", got)
	}

	if err := repo.Create(ctx, pending("p1", time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Update(ctx, "p1", domain.Patch{Results: &res}); !errors.Is(err, domain.ErrInvalidPatch) {
		t.Fatalf("results on pending err = %v, want ErrInvalidPatch", err)
	}
}

func TestOrderingAndStats(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, a := range []*domain.Analysis{
		pending("old", base),
		pending("tie-1", base.Add(time.Minute)),
		pending("tie-2", base.Add(time.Minute)),
		pending("new", base.Add(2*time.Minute)),
	} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, a := range list {
		ids = append(ids, string(a.ID))
	}
	if fmt.Sprint(ids) != "[new tie-1 tie-2 old]" {
		t.Fatalf("List order = %v", ids)
	}
	latest, _ := repo.Latest(ctx, 2)
	if len(latest) != 2 || latest[0].ID != "new" || latest[1].ID != "tie-1" {
		t.Fatalf("Latest(2) = %v", latest)
	}

	st := domain.StatusCompleted
	res := domain.Result{Issues: make([]domain.Issue, 5), Summary: domain.Summary{Critical: 1, High: 2, Low: 2, Total: 5}}
	if _, err := repo.Update(ctx, "old", domain.Patch{Status: &st, Results: &res}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := domain.Stats{TotalAnalyses: 4, BugsFound: 5, Vulnerabilities: 3, Fixed: 3}
	if stats != want {
		t.Fatalf("Stats = %+v, want %+v", stats, want)
	}
	pend, _ := repo.ListPending(ctx)
	if len(pend) != 3 {
		t.Fatalf("ListPending = %d", len(pend))
	}
}

func TestScanErrorsAndReviews(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "cg.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := sqlstore.EnsureSchema(ctx, db, Dialect); err != nil {
		t.Fatalf("schema: %v", err)
	}

	errs := sqlstore.NewScanErrorRepository(db, Dialect)
	first := &scanerrors.ScanError{AnalysisID: "a1", Phase: scanerrors.PhaseScan, Message: "rule blew up", DetailsJSON: "not json"}
	if err := errs.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("Save must assign an id")
	}
	_ = errs.Save(ctx, &scanerrors.ScanError{AnalysisID: "a1", Phase: scanerrors.PhaseTimeout, Message: "deadline", CreatedAt: first.CreatedAt.Add(time.Second)})
	_ = errs.Save(ctx, &scanerrors.ScanError{AnalysisID: "other", Phase: scanerrors.PhaseScan, Message: "x"})

	list, err := errs.ListByAnalysis(ctx, "a1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Phase != scanerrors.PhaseTimeout {
		t.Fatalf("ListByAnalysis = %+v", list)
	}
	if list[1].DetailsJSON != `{"raw":"not json"}` {
		t.Fatalf("details = %q", list[1].DetailsJSON)
	}

	rv := sqlstore.NewReviewRepository(db, Dialect)
	none, err := rv.LatestByAnalysis(ctx, "a1")
	if err != nil || none != nil {
		t.Fatalf("no review yet = %+v, %v", none, err)
	}
	if err := rv.Save(ctx, &reviews.Review{ID: "r1", AnalysisID: "a1", Model: "gpt-4o-mini", Content: `{"summary":"ok"}`}); err != nil {
		t.Fatalf("save review: %v", err)
	}
	got, err := rv.LatestByAnalysis(ctx, "a1")
	if err != nil || got == nil || got.Content != `{"summary":"ok"}` {
		t.Fatalf("LatestByAnalysis = %+v, %v", got, err)
	}

	// non-JSON replies come back exactly as saved
	plain := "Sure! Here is the review:\n1. remove eval"
	later := time.Now().UTC().Add(time.Minute)
	if err := rv.Save(ctx, &reviews.Review{ID: "r2", AnalysisID: "a1", Model: "gpt-4o-mini", Content: plain, CreatedAt: later}); err != nil {
		t.Fatalf("save plain review: %v", err)
	}
	got, err = rv.LatestByAnalysis(ctx, "a1")
	if err != nil || got == nil || got.Content != plain {
		t.Fatalf("plain review content = %+v, %v", got, err)
	}
}
