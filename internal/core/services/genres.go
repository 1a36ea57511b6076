package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
	"github.com/ewilliams-labs/chartprep/internal/core/table"
)

// Extract file names, written with both .csv and .json extensions.
const (
	PopularityExtract = "alt1_top10_genre_popularity"
	FeatureExtract    = "alt2_top10_genre_audio_features"
)

// DefaultTopGenres is how many genres the extracts keep unless configured otherwise.
const DefaultTopGenres = 10

// GenreRequest configures the genre extracts. TopN <= 0 keeps every genre.
type GenreRequest struct {
	Input     string
	OutputDir string
	TopN      int
}

// GenreResult summarizes the genre extracts.
type GenreResult struct {
	Genres         []string
	PopularityRows int
	FeatureRows    int
	Omitted        []string
}

// GenreExtracts selects the genres with the highest mean popularity and writes
// two raw-row extracts restricted to them.
func (p *Pipeline) GenreExtracts(ctx context.Context, req GenreRequest) (GenreResult, error) {
	if err := ctx.Err(); err != nil {
		return GenreResult{}, err
	}

	tbl, err := p.store.LoadTable(ctx, req.Input)
	if err != nil {
		return GenreResult{}, fmt.Errorf("service: failed to load combined dataset: %w", err)
	}
	if err := domain.RequireColumns("combined dataset", tbl.Columns(), domain.ColGenre, domain.ColPopularity); err != nil {
		return GenreResult{}, fmt.Errorf("service: %w", err)
	}

	var labels []string
	var values []float64
	for _, t := range decodeTracks(tbl) {
		if t.Genre == "" || !t.Complete(domain.ColPopularity) {
			continue
		}
		labels = append(labels, t.Genre)
		values = append(values, t.Popularity)
	}

	ranks, err := p.agg.RankByMean(ctx, labels, values)
	if err != nil {
		return GenreResult{}, fmt.Errorf("service: failed to rank genres: %w", err)
	}
	genres := domain.TopLabels(ranks, req.TopN)
	log.Printf("genres: selected %s", strings.Join(genres, ", "))

	filtered, err := tbl.FilterIn(domain.ColGenre, genres)
	if err != nil {
		return GenreResult{}, fmt.Errorf("service: %w", err)
	}

	res := GenreResult{Genres: genres}
	extracts := []struct {
		schema domain.Schema
		name   string
		rows   *int
	}{
		{domain.PopularitySchema, PopularityExtract, &res.PopularityRows},
		{domain.AudioFeatureSchema, FeatureExtract, &res.FeatureRows},
	}

	// Every projection is resolved before either extract is written.
	projections := make([]*table.Table, len(extracts))
	for i, e := range extracts {
		cols, omitted, err := e.schema.Resolve(filtered.Columns())
		if err != nil {
			return GenreResult{}, fmt.Errorf("service: %w", err)
		}
		for _, c := range omitted {
			log.Printf("WARN genres: optional column %q absent from %s", c, e.schema.Name)
		}
		res.Omitted = append(res.Omitted, omitted...)

		if projections[i], err = filtered.Select(cols...); err != nil {
			return GenreResult{}, fmt.Errorf("service: %w", err)
		}
	}

	for i, e := range extracts {
		if err := p.writeExtract(ctx, projections[i], req.OutputDir, e.name); err != nil {
			return GenreResult{}, err
		}
		*e.rows = projections[i].Len()
	}
	return res, nil
}

func (p *Pipeline) writeExtract(ctx context.Context, extract *table.Table, dir, name string) error {
	base := filepath.Join(dir, name)
	if err := p.store.SaveTable(ctx, base+".csv", extract); err != nil {
		return fmt.Errorf("service: failed to save %s: %w", name, err)
	}
	if err := p.store.SaveJSON(ctx, base+".json", extract.JSONRecords(domain.NumericColumns)); err != nil {
		return fmt.Errorf("service: failed to save %s: %w", name, err)
	}

	log.Printf("genres: wrote %d rows to %s.{csv,json}", extract.Len(), base)
	return nil
}
