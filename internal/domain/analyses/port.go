package analyses

import "context"

// Repository port (job store). Implementations must be safe for concurrent use
// and must never expose a partially applied Update to readers.
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
	// List returns every analysis, newest first; equal CreatedAt keeps insertion order.
	List(ctx context.Context) ([]*Analysis, error)
	Latest(ctx context.Context, limit int) ([]*Analysis, error)
	// Update merges p; a status change on a terminal analysis returns ErrTerminal.
	Update(ctx context.Context, id AnalysisID, p Patch) (*Analysis, error)
	Stats(ctx context.Context) (Stats, error)
	ListPending(ctx context.Context) ([]*Analysis, error)
}

// Runner port (eksekusi rule engine)
type Runner interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// ReportStore port (penyimpanan report hasil analisa)
type ReportStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// DefaultRecentLimit is used by Latest when limit <= 0.
const DefaultRecentLimit = 5

// ReportKey is the object key of an archived analysis report.
func ReportKey(id AnalysisID) string {
	return "reports/" + string(id) + ".json"
}
