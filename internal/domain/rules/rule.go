package rules

import (
	"fmt"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

// Rule is one line predicate plus the fixed metadata of the issues it emits.
type Rule struct {
	ID          string
	Severity    domain.Severity
	Title       string
	Description string
	Suggestion  string
	Match       func(line string) bool
}

// Info is the public view of a rule, used for listing the catalogue.
type Info struct {
	ID          string          `json:"ruleId"`
	Language    domain.Language `json:"language,omitempty"`
	Severity    domain.Severity `json:"severity"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Suggestion  string          `json:"suggestion"`
}

// RuleFault reports a predicate that panicked while matching a line.
type RuleFault struct {
	RuleID string
	Line   int
	Value  any
}

func (f *RuleFault) Error() string {
	return fmt.Sprintf("rule %s panicked on line %d: %v", f.RuleID, f.Line, f.Value)
}

// AnalysisErrorRuleID marks the synthetic issue produced when a rule faults.
const AnalysisErrorRuleID = "analysis-error"

// AnalysisErrorIssue is the single issue that replaces the findings of a faulted scan.
func AnalysisErrorIssue(id string) domain.Issue {
	return domain.Issue{
		ID:          id,
		Severity:    domain.SeverityHigh,
		Title:       "Analysis Error",
		Description: "Failed to analyze code due to parsing error",
		Line:        1,
		RuleID:      AnalysisErrorRuleID,
		Suggestion:  "Check code syntax and try again",
	}
}
