package local

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
	"github.com/bryanwahyu/codeguard/internal/domain/rules"
)

// Scanner is the part of the rule engine the runner needs.
type Scanner interface {
	ScanContext(ctx context.Context, code string, lang domain.Language) ([]domain.Issue, error)
}

// Runner jalankan rule engine di proses yang sama (tanpa docker)
type Runner struct {
	engine Scanner
	now    func() time.Time
}

func NewRunner(engine Scanner) *Runner {
	if engine == nil {
		engine = rules.NewEngine()
	}
	return &Runner{engine: engine, now: time.Now}
}

// Run scans req.Code and builds the full result. A faulting rule does not fail
// the run: the result holds the single Analysis Error issue and RunResult.Fault
// carries the cause. Context errors are returned as-is.
func (r *Runner) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	start := r.now()

	issues, err := r.engine.ScanContext(ctx, req.Code, req.Language)
	var fault *rules.RuleFault
	switch {
	case errors.As(err, &fault):
		issues = []domain.Issue{rules.AnalysisErrorIssue(uuid.NewString())}
	case err != nil:
		return domain.RunResult{}, err
	}

	res := domain.Result{
		Issues:       issues,
		Summary:      domain.Summarize(issues),
		AnalysisTime: r.now().Sub(start).Milliseconds(),
		LinesOfCode:  domain.CountLines(req.Code),
	}
	out := domain.RunResult{Result: res}
	if fault != nil {
		out.Fault = fault
	}
	return out, nil
}
