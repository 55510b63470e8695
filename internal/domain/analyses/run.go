package analyses

// RunRequest untuk Runner
type RunRequest struct {
	AnalysisID AnalysisID
	Language   Language
	Code       string
}

// RunResult hasil dari Runner
type RunResult struct {
	Result Result
	// Fault is set when a rule faulted and Result holds the synthetic Analysis Error issue.
	Fault error
}
