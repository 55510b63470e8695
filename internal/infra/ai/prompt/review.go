package prompt

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

// maxCodeChars caps the source embedded in the user prompt.
const maxCodeChars = 8000

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior application security reviewer. You receive source code and the findings of a static pattern scanner. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Use lowercase severity values: critical, high, medium, low.
- recommendations refer to scanner findings by ruleId and line; add extra items with ruleId "manual" for risks the scanner missed.
- Mark likely false positives with "falsePositive": true instead of dropping them.
- Keep every fix short and concrete.

Schema (example with empty values):
{
  "summary": "<string>",
  "risk": "<critical|high|medium|low>",
  "recommendations": [
    {
      "ruleId": "<string>",
      "line": 0,
      "severity": "<critical|high|medium|low>",
      "fix": "<string>",
      "falsePositive": false
    }
  ],
  "advice": "<string>"
}`
}

// GetUserPrompt embeds the analysis findings and (truncated) source.
func GetUserPrompt(a *domain.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\nLanguage: %s\n", a.Filename, a.Language)
	if a.Results != nil {
		s := a.Results.Summary
		fmt.Fprintf(&b, "Scanner summary: critical=%d high=%d medium=%d low=%d total=%d\n",
			s.Critical, s.High, s.Medium, s.Low, s.Total)
		b.WriteString("Findings:\n")
		if len(a.Results.Issues) == 0 {
			b.WriteString("- none\n")
		}
		for _, is := range a.Results.Issues {
			fmt.Fprintf(&b, "- [%s] %s (ruleId=%s, line=%d): %s\n", is.Severity, is.Title, is.RuleID, is.Line, is.CodeSnippet)
		}
	}
	code := a.Code
	if len(code) > maxCodeChars {
		code = code[:maxCodeChars] + "\n... (truncated)"
	}
	b.WriteString("Source:\n")
	b.WriteString(code)
	return b.String()
}
