package analyses

// Summarize counts issues per severity tier. Total is always len(issues).
func Summarize(issues []Issue) Summary {
	s := Summary{Total: len(issues)}
	for _, is := range issues {
		switch is.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		}
	}
	return s
}

// Vulnerabilities is the critical+high share of the summary.
func (s Summary) Vulnerabilities() int {
	return s.Critical + s.High
}
