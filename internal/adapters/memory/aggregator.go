// Package memory provides an in-process implementation of the aggregator port.
package memory

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
)

// Aggregator computes group means and ranks directly over Go slices.
type Aggregator struct{}

// NewAggregator returns an in-process Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

func (a *Aggregator) GroupMeans(ctx context.Context, tracks []domain.Track, features []string) ([]domain.AggregateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.ValidateFeatures(features); err != nil {
		return nil, fmt.Errorf("memory aggregator: %w", err)
	}
	return domain.GroupMeans(tracks, features), nil
}

func (a *Aggregator) RankByCount(ctx context.Context, labels []string) ([]domain.Rank, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.RankByCount(labels), nil
}

func (a *Aggregator) RankByMean(ctx context.Context, labels []string, values []float64) ([]domain.Rank, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(labels) != len(values) {
		return nil, fmt.Errorf("memory aggregator: %d labels but %d values", len(labels), len(values))
	}
	return domain.RankByMean(labels, values), nil
}
