package reviews

import "context"

// Repository port for persisting and querying reviews
type Repository interface {
	Save(ctx context.Context, r *Review) error
	// LatestByAnalysis returns nil, nil when the analysis has no review yet.
	LatestByAnalysis(ctx context.Context, analysisID string) (*Review, error)
}
