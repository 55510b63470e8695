package scanerrors

import "time"

// Phases of the pipeline a ScanError can be recorded in.
const (
	PhaseScan    = "scan"
	PhaseTimeout = "timeout"
	PhasePanic   = "panic"
	PhaseArchive = "archive"
)

// ScanError represents a persisted processing fault of one analysis
type ScanError struct {
	ID          int64     `json:"id"`
	AnalysisID  string    `json:"analysisId"`
	Phase       string    `json:"phase"`
	Message     string    `json:"message"`
	DetailsJSON string    `json:"detailsJson,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"createdAt"`
}
