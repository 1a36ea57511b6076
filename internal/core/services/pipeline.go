// Package services implements the dataset preparation stages on top of the
// storage and aggregation ports.
package services

import (
	"github.com/ewilliams-labs/chartprep/internal/core/domain"
	"github.com/ewilliams-labs/chartprep/internal/core/ports"
	"github.com/ewilliams-labs/chartprep/internal/core/table"
)

// Pipeline coordinates the dataset store and the aggregator for every stage.
type Pipeline struct {
	store ports.DatasetStore
	agg   ports.Aggregator
}

// NewPipeline constructs a Pipeline.
func NewPipeline(store ports.DatasetStore, agg ports.Aggregator) *Pipeline {
	return &Pipeline{
		store: store,
		agg:   agg,
	}
}

func decodeTracks(t *table.Table) []domain.Track {
	rows := t.Rows()
	tracks := make([]domain.Track, len(rows))
	for i, row := range rows {
		tracks[i] = domain.ParseTrack(row)
	}
	return tracks
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
