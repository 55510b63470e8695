package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/codeguard/internal/application"
	"github.com/bryanwahyu/codeguard/internal/domain/ai"
	"github.com/bryanwahyu/codeguard/internal/domain/analyses"
	"github.com/bryanwahyu/codeguard/internal/domain/reviews"
	"github.com/bryanwahyu/codeguard/internal/logger"
)

// ErrNotCompleted is returned when a review is requested before the analysis completed.
var ErrNotCompleted = errors.New("analysis is not completed")

type Service struct {
	Analyses analyses.Repository
	Reviews  reviews.Repository
	Client   ai.Client // nil = AI disabled
	Clock    application.Clock
}

// Review minta review ke AI lalu simpan
func (s *Service) Review(ctx context.Context, id analyses.AnalysisID) (*reviews.Review, error) {
	if s.Client == nil {
		return nil, ai.ErrDisabled
	}
	a, err := s.Analyses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != analyses.StatusCompleted {
		return nil, ErrNotCompleted
	}

	content, err := s.Client.Review(ctx, a)
	if err != nil {
		return nil, err
	}
	rv := &reviews.Review{
		ID:         reviews.ReviewID(uuid.NewString()),
		AnalysisID: string(id),
		Model:      s.Client.ModelName(),
		Content:    content,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.Reviews.Save(ctx, rv); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}
	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldAnalysisID: string(id),
		"model":                rv.Model,
	}).Info("ai review stored")
	return rv, nil
}

// Latest returns the newest review of an analysis.
func (s *Service) Latest(ctx context.Context, id analyses.AnalysisID) (*reviews.Review, error) {
	if _, err := s.Analyses.Get(ctx, id); err != nil {
		return nil, err
	}
	rv, err := s.Reviews.LatestByAnalysis(ctx, string(id))
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, reviews.ErrNotFound
	}
	return rv, nil
}

func (s *Service) Enabled() bool { return s.Client != nil }

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}
