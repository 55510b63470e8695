package rules

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

const (
	maxSnippet = 200
	// ctxCheckEvery is how many lines are scanned between cancellation checks.
	ctxCheckEvery = 256
)

// Engine applies the language set and then the common set to source text.
// It holds no state between scans and is safe for concurrent use.
type Engine struct {
	newID func() string
}

// NewEngine returns an Engine that assigns uuid v4 issue ids.
func NewEngine() *Engine {
	return &Engine{newID: uuid.NewString}
}

// Scan never fails: a faulting rule yields the single Analysis Error issue.
func (e *Engine) Scan(code string, lang domain.Language) []domain.Issue {
	issues, err := e.ScanContext(context.Background(), code, lang)
	if err != nil {
		return []domain.Issue{AnalysisErrorIssue(e.newID())}
	}
	return issues
}

// ScanContext returns issues in production order: language rules first, then
// common rules, each in line order and rule declaration order within a line.
// It returns *RuleFault when a predicate panics, or ctx.Err() once ctx is done.
func (e *Engine) ScanContext(ctx context.Context, code string, lang domain.Language) ([]domain.Issue, error) {
	lines := strings.Split(code, "\n")
	issues := make([]domain.Issue, 0)

	var err error
	if issues, err = e.apply(ctx, issues, lines, ForLanguage(lang)); err != nil {
		return nil, err
	}
	if issues, err = e.apply(ctx, issues, lines, Common()); err != nil {
		return nil, err
	}
	return issues, nil
}

func (e *Engine) apply(ctx context.Context, out []domain.Issue, lines []string, set []Rule) ([]domain.Issue, error) {
	if len(set) == 0 {
		return out, nil
	}
	for i, line := range lines {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for _, r := range set {
			ok, err := match(r, line, i+1)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			out = append(out, domain.Issue{
				ID:          e.newID(),
				Severity:    r.Severity,
				Title:       r.Title,
				Description: r.Description,
				Line:        i + 1,
				RuleID:      r.ID,
				Suggestion:  r.Suggestion,
				CodeSnippet: snippet(line),
			})
		}
	}
	return out, nil
}

func match(r Rule, line string, lineNo int) (ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &RuleFault{RuleID: r.ID, Line: lineNo, Value: v}
		}
	}()
	return r.Match(line), nil
}

func snippet(line string) string {
	s := strings.TrimSpace(line)
	if len(s) <= maxSnippet {
		return s
	}
	s = s[:maxSnippet]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
