package services

import (
	"context"
	"fmt"
	"log"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
)

// RadarRequest configures the radar extract. An empty Features list selects
// every audio feature; TopGenres <= 0 keeps every genre.
type RadarRequest struct {
	Input     string
	Output    string
	Features  []string
	TopGenres int
}

// Radar averages the selected features per (genre, popularity bucket) and writes
// the radar artifact.
func (p *Pipeline) Radar(ctx context.Context, req RadarRequest) (domain.RadarArtifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.RadarArtifact{}, err
	}

	features := req.Features
	if len(features) == 0 {
		features = domain.FeatureNames
	}
	if err := domain.ValidateFeatures(features); err != nil {
		return domain.RadarArtifact{}, fmt.Errorf("service: %w", err)
	}

	tbl, err := p.store.LoadTable(ctx, req.Input)
	if err != nil {
		return domain.RadarArtifact{}, fmt.Errorf("service: failed to load combined dataset: %w", err)
	}
	required := append([]string{domain.ColGenre, domain.ColPopularity}, features...)
	if err := domain.RequireColumns("combined dataset", tbl.Columns(), required...); err != nil {
		return domain.RadarArtifact{}, fmt.Errorf("service: %w", err)
	}

	all := decodeTracks(tbl)
	usable := make([]domain.Track, 0, len(all))
	for _, t := range all {
		if t.Genre == "" || !t.Complete(domain.ColPopularity) || !t.Complete(features...) {
			continue
		}
		usable = append(usable, t)
	}
	if dropped := len(all) - len(usable); dropped > 0 {
		log.Printf("WARN radar: dropped %d of %d rows with missing genre, popularity or features", dropped, len(all))
	}

	labels := make([]string, len(usable))
	for i, t := range usable {
		labels[i] = t.Genre
	}
	ranks, err := p.agg.RankByCount(ctx, labels)
	if err != nil {
		return domain.RadarArtifact{}, fmt.Errorf("service: failed to rank genres: %w", err)
	}
	genres := domain.TopLabels(ranks, req.TopGenres)

	keep := stringSet(genres)
	selected := make([]domain.Track, 0, len(usable))
	for _, t := range usable {
		if _, ok := keep[t.Genre]; ok {
			selected = append(selected, t)
		}
	}

	data, err := p.agg.GroupMeans(ctx, selected, features)
	if err != nil {
		return domain.RadarArtifact{}, fmt.Errorf("service: failed to aggregate features: %w", err)
	}
	if data == nil {
		data = []domain.AggregateRecord{}
	}

	artifact := domain.RadarArtifact{
		Features: append([]string(nil), features...),
		Genres:   genres,
		Data:     data,
	}
	if err := p.store.SaveJSON(ctx, req.Output, artifact); err != nil {
		return domain.RadarArtifact{}, fmt.Errorf("service: failed to save radar data: %w", err)
	}

	log.Printf("radar: %d genres, %d groups from %d rows", len(genres), len(data), len(selected))
	return artifact, nil
}
