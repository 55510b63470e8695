package analyses

import "testing"

func TestSummarize(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityCritical},
		{Severity: SeverityHigh},
		{Severity: SeverityHigh},
		{Severity: SeverityMedium},
		{Severity: SeverityLow},
		{Severity: SeverityLow},
		{Severity: SeverityLow},
	}
	got := Summarize(issues)
	want := Summary{Critical: 1, High: 2, Medium: 1, Low: 3, Total: 7}
	if got != want {
		t.Fatalf("Summarize = %+v, want %+v", got, want)
	}
	if got.Critical+got.High+got.Medium+got.Low != got.Total {
		t.Errorf("tiers do not add up to total: %+v", got)
	}
	if got.Vulnerabilities() != 3 {
		t.Errorf("Vulnerabilities() = %d, want 3", got.Vulnerabilities())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); got != (Summary{}) {
		t.Fatalf("Summarize(nil) = %+v, want zero", got)
	}
}

func TestNewStatsFixedIsFloorOfSeventyPercent(t *testing.T) {
	cases := []struct{ bugs, fixed int }{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {7, 4}, {10, 7}, {15, 10}, {20, 14}, {33, 23}, {101, 70},
	}
	for _, c := range cases {
		if got := NewStats(5, c.bugs, 0).Fixed; got != c.fixed {
			t.Errorf("NewStats(bugs=%d).Fixed = %d, want %d", c.bugs, got, c.fixed)
		}
	}
}

func TestCountLines(t *testing.T) {
	cases := map[string]int{
		"":                        1,
		"a":                       1,
		"a\nb":                    2,
		"a\n":                     2,
		"var x = 1;\nif (x == 1)": 2,
		"\n\n\n":                  4,
	}
	for in, want := range cases {
		if got := CountLines(in); got != want {
			t.Errorf("CountLines(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSortBySeverityIsStable(t *testing.T) {
	issues := []Issue{
		{ID: "1", Severity: SeverityLow},
		{ID: "2", Severity: SeverityCritical},
		{ID: "3", Severity: SeverityLow},
		{ID: "4", Severity: SeverityHigh},
		{ID: "5", Severity: SeverityCritical},
	}
	SortBySeverity(issues)
	var got string
	for _, is := range issues {
		got += is.ID
	}
	if got != "25413" {
		t.Fatalf("order = %s, want 25413", got)
	}
}
