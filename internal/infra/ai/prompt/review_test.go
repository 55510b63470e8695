package prompt

import (
	"strings"
	"testing"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

func TestGetUserPromptEmbedsFindings(t *testing.T) {
	a := &domain.Analysis{
		Filename: "a.js",
		Language: domain.LanguageJavaScript,
		Code:     strings.Repeat("x", maxCodeChars+10),
		Results: &domain.Result{
			Issues:  []domain.Issue{{Severity: domain.SeverityMedium, Title: "Use of var", RuleID: "no-var", Line: 1, CodeSnippet: "var x"}},
			Summary: domain.Summary{Medium: 1, Total: 1},
		},
	}
	p := GetUserPrompt(a)
	for _, want := range []string{"File: a.js", "Language: javascript", "ruleId=no-var, line=1", "medium=1", "(truncated)"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSystemPromptMentionsSchema(t *testing.T) {
	if !strings.Contains(GetSystemPrompt(), `"recommendations"`) {
		t.Fatal("system prompt lost its schema")
	}
}
