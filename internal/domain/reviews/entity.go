package reviews

import (
	"errors"
	"time"
)

// ReviewID identifier type
type ReviewID string

// Review is an AI remediation review of one completed analysis
type Review struct {
	ID         ReviewID  `json:"id"`
	AnalysisID string    `json:"analysisId"`
	Model      string    `json:"model"`
	Content    string    `json:"content"` // model reply as returned, usually JSON
	CreatedAt  time.Time `json:"createdAt"`
}

// ErrNotFound is returned when an analysis has no review yet.
var ErrNotFound = errors.New("review not found")
