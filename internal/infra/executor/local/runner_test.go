package local

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
	"github.com/bryanwahyu/codeguard/internal/domain/rules"
)

type scannerFunc func(ctx context.Context, code string, lang domain.Language) ([]domain.Issue, error)

func (f scannerFunc) ScanContext(ctx context.Context, code string, lang domain.Language) ([]domain.Issue, error) {
	return f(ctx, code, lang)
}

func TestRunBuildsResult(t *testing.T) {
	r := NewRunner(nil)
	res, err := r.Run(context.Background(), domain.RunRequest{
		Language: domain.LanguageJavaScript,
		Code:     "var x = 1;\nif (x == 1) { console.log(x); }",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Fault != nil {
		t.Fatalf("unexpected fault %v", res.Fault)
	}
	got := res.Result
	if got.LinesOfCode != 2 {
		t.Errorf("LinesOfCode = %d, want 2", got.LinesOfCode)
	}
	if got.Summary.Total != len(got.Issues) || got.Summary.Total != 3 {
		t.Errorf("summary = %+v, issues = %d", got.Summary, len(got.Issues))
	}
	if got.Summary.Medium != 2 || got.Summary.Low != 1 {
		t.Errorf("summary = %+v, want medium=2 low=1", got.Summary)
	}
}

func TestRunMeasuresElapsedTime(t *testing.T) {
	r := NewRunner(nil)
	base := time.Unix(1000, 0)
	calls := 0
	r.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 42 * time.Millisecond)
	}
	res, err := r.Run(context.Background(), domain.RunRequest{Language: domain.LanguagePython, Code: ""})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Result.AnalysisTime != 42 {
		t.Fatalf("AnalysisTime = %d, want 42", res.Result.AnalysisTime)
	}
	if res.Result.LinesOfCode != 1 || res.Result.Issues == nil {
		t.Fatalf("empty code result = %+v", res.Result)
	}
}

func TestRunSubstitutesAnalysisErrorOnRuleFault(t *testing.T) {
	r := NewRunner(scannerFunc(func(context.Context, string, domain.Language) ([]domain.Issue, error) {
		return nil, &rules.RuleFault{RuleID: "x", Line: 3, Value: "boom"}
	}))
	res, err := r.Run(context.Background(), domain.RunRequest{Language: domain.LanguageSolidity, Code: "a\nb\nc"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Fault == nil {
		t.Fatal("fault must be reported")
	}
	if len(res.Result.Issues) != 1 || res.Result.Issues[0].RuleID != rules.AnalysisErrorRuleID {
		t.Fatalf("issues = %+v", res.Result.Issues)
	}
	want := domain.Summary{High: 1, Total: 1}
	if res.Result.Summary != want {
		t.Fatalf("summary = %+v, want %+v", res.Result.Summary, want)
	}
	if res.Result.LinesOfCode != 3 {
		t.Errorf("LinesOfCode = %d, want 3", res.Result.LinesOfCode)
	}
}

func TestRunReturnsContextErrors(t *testing.T) {
	r := NewRunner(scannerFunc(func(ctx context.Context, _ string, _ domain.Language) ([]domain.Issue, error) {
		return nil, context.DeadlineExceeded
	}))
	_, err := r.Run(context.Background(), domain.RunRequest{Language: domain.LanguagePython})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
