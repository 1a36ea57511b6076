package services

import (
	"context"
	"fmt"
	"log"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
)

// DefaultMinYear is the earliest release year kept in the sankey extract.
const DefaultMinYear = 2010

// sankeyNumeric are the columns every sankey record must have parsed.
var sankeyNumeric = append(append([]string(nil), domain.FeatureNames...), domain.ColPopularity)

// SankeyRequest configures the sankey extract. TopArtists <= 0 keeps every artist.
type SankeyRequest struct {
	Input      string
	Output     string
	MinYear    int
	TopArtists int
}

// Sankey writes one record per recent track with its primary artist, genre and
// release year.
func (p *Pipeline) Sankey(ctx context.Context, req SankeyRequest) ([]domain.SankeyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tbl, err := p.store.LoadTable(ctx, req.Input)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load combined dataset: %w", err)
	}
	required := append([]string{domain.ColArtist, domain.ColGenre, domain.ColReleaseDate}, sankeyNumeric...)
	if err := domain.RequireColumns("combined dataset", tbl.Columns(), required...); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	type candidate struct {
		track  domain.Track
		artist string
		year   int
	}

	var (
		kept       []candidate
		badDate    int
		tooOld     int
		incomplete int
	)
	for _, t := range decodeTracks(tbl) {
		year, ok := domain.ReleaseYear(t.ReleaseDate)
		if !ok || t.Genre == "" {
			badDate++
			continue
		}
		if year < req.MinYear {
			tooOld++
			continue
		}
		artist := domain.PrimaryArtist(t.Artist)
		if artist == "" || !t.Complete(sankeyNumeric...) {
			incomplete++
			continue
		}
		kept = append(kept, candidate{track: t, artist: artist, year: year})
	}
	log.Printf("sankey: dropped %d rows without date or genre, %d before %d, %d incomplete", badDate, tooOld, req.MinYear, incomplete)

	if req.TopArtists > 0 {
		artists := make([]string, len(kept))
		for i, c := range kept {
			artists[i] = c.artist
		}
		ranks, err := p.agg.RankByCount(ctx, artists)
		if err != nil {
			return nil, fmt.Errorf("service: failed to rank artists: %w", err)
		}
		top := stringSet(domain.TopLabels(ranks, req.TopArtists))
		filtered := kept[:0]
		for _, c := range kept {
			if _, ok := top[c.artist]; ok {
				filtered = append(filtered, c)
			}
		}
		kept = filtered
	}

	records := make([]domain.SankeyRecord, len(kept))
	for i, c := range kept {
		records[i] = domain.NewSankeyRecord(c.track, c.artist, c.year)
	}

	if err := p.store.SaveJSON(ctx, req.Output, records); err != nil {
		return nil, fmt.Errorf("service: failed to save sankey tracks: %w", err)
	}
	log.Printf("sankey: wrote %d records to %s", len(records), req.Output)
	return records, nil
}
