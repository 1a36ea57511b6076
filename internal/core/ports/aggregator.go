package ports

import (
	"context"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
)

// Aggregator computes grouped statistics over tracks.
type Aggregator interface {
	// GroupMeans groups tracks by (genre, popularity bucket) and averages the
	// named features. Records are ordered by genre, then bucket.
	GroupMeans(ctx context.Context, tracks []domain.Track, features []string) ([]domain.AggregateRecord, error)
	// RankByCount orders labels by descending frequency, ties in first-seen order.
	RankByCount(ctx context.Context, labels []string) ([]domain.Rank, error)
	// RankByMean orders labels by the descending mean of their parallel values,
	// ties in first-seen order.
	RankByMean(ctx context.Context, labels []string, values []float64) ([]domain.Rank, error)
}
