package ai

import (
	"context"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

type Client interface {
	Review(ctx context.Context, a *domain.Analysis) (string, error)
	ModelName() string
}
