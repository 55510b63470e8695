package analyses

import (
	"sort"
	"strings"
	"time"
)

// ID tipe untuk Analysis
type AnalysisID string

// Language enum (closed set)
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageSolidity   Language = "solidity"
)

var supportedLanguages = []Language{LanguageJavaScript, LanguagePython, LanguageSolidity}

// SupportedLanguages returns the closed language set in display order.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// ParseLanguage reports whether s names a supported language.
func ParseLanguage(s string) (Language, bool) {
	for _, l := range supportedLanguages {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Status enum
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal is true for completed and failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Severity enum, critical highest
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank exposes the total order of severities (critical=4 ... low=1, unknown=0).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Failure reasons recorded on failed analyses.
const (
	ReasonScanFault = "scan_fault"
	ReasonTimeout   = "timeout"
)

// Issue is one finding produced by a rule.
type Issue struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Line        int      `json:"line"`
	EndLine     int      `json:"endLine,omitempty"`
	Column      int      `json:"column,omitempty"`
	EndColumn   int      `json:"endColumn,omitempty"`
	RuleID      string   `json:"ruleId"`
	Suggestion  string   `json:"suggestion,omitempty"`
	CodeSnippet string   `json:"codeSnippet,omitempty"`
}

// Summary value object
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Result is owned by a completed Analysis.
type Result struct {
	Issues       []Issue `json:"issues"`
	Summary      Summary `json:"summary"`
	AnalysisTime int64   `json:"analysisTime"`
	LinesOfCode  int     `json:"linesOfCode"`
}

// Aggregate Root: Analysis
type Analysis struct {
	ID            AnalysisID `json:"id"`
	Filename      string     `json:"filename"`
	Language      Language   `json:"language"`
	Code          string     `json:"code"`
	Status        Status     `json:"status"`
	Results       *Result    `json:"results"`
	Duration      *int64     `json:"duration"`
	CreatedAt     time.Time  `json:"createdAt"`
	FailureReason string     `json:"failureReason,omitempty"`
	ReportURL     string     `json:"reportUrl,omitempty"`
}

// Patch carries the fields an Update merges into an existing Analysis.
// Nil fields are left untouched.
type Patch struct {
	Status        *Status
	Results       *Result
	Duration      *int64
	FailureReason *string
	ReportURL     *string
}

// Lifecycle is true when p touches status, results, duration or failure reason.
// Only ReportURL may change once an analysis is terminal.
func (p Patch) Lifecycle() bool {
	return p.Status != nil || p.Results != nil || p.Duration != nil || p.FailureReason != nil
}

// Validate checks the shape of p on its own.
func (p Patch) Validate() error {
	completes := p.Status != nil && *p.Status == StatusCompleted
	fails := p.Status != nil && *p.Status == StatusFailed
	if (p.Results != nil || p.Duration != nil) && !completes {
		return ErrInvalidPatch
	}
	if completes && p.Results == nil {
		return ErrInvalidPatch
	}
	if p.FailureReason != nil && !fails {
		return ErrInvalidPatch
	}
	return nil
}

// Check validates p against the current status of the analysis.
func (p Patch) Check(current Status) error {
	if p.Lifecycle() && current.Terminal() {
		return ErrTerminal
	}
	return p.Validate()
}

// Apply merges p into a copy of a and returns it.
func (p Patch) Apply(a Analysis) Analysis {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Results != nil {
		r := *p.Results
		a.Results = &r
	}
	if p.Duration != nil {
		d := *p.Duration
		a.Duration = &d
	}
	if p.FailureReason != nil {
		a.FailureReason = *p.FailureReason
	}
	if p.ReportURL != nil {
		a.ReportURL = *p.ReportURL
	}
	return a
}

// Stats is computed over every stored analysis.
type Stats struct {
	TotalAnalyses   int `json:"totalAnalyses"`
	BugsFound       int `json:"bugsFound"`
	Vulnerabilities int `json:"vulnerabilities"`
	Fixed           int `json:"fixed"`
}

// NewStats fills Fixed as floor(bugs * 0.7). The 70% ratio is an illustrative
// estimate, there is no remediation tracking behind it.
func NewStats(total, bugs, vulns int) Stats {
	return Stats{
		TotalAnalyses:   total,
		BugsFound:       bugs,
		Vulnerabilities: vulns,
		Fixed:           bugs * 7 / 10,
	}
}

// CountLines counts newline-delimited lines; "" is one line.
func CountLines(code string) int {
	return strings.Count(code, "\n") + 1
}

// SortBySeverity orders issues critical first, keeping production order within a tier.
func SortBySeverity(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() > issues[j].Severity.Rank()
	})
}
