package services

import (
	"context"
	"fmt"
	"log"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
	"github.com/ewilliams-labs/chartprep/internal/core/table"
)

// driftThreshold is the Jaro-Winkler similarity above which a discarded column
// is reported as a probable rename of a canonical one.
const driftThreshold = 0.9

// DefaultDropColumns are identifier columns with no analytical value.
var DefaultDropColumns = []string{"track_album_id", "id", "playlist_id", "type"}

// CombineRequest names the two source files, the drop list and every path the
// combined dataset is written to.
type CombineRequest struct {
	HighPath    string
	LowPath     string
	Outputs     []string
	DropColumns []string
}

// CombineResult summarizes a combine run.
type CombineResult struct {
	HighRows   int
	LowRows    int
	Rows       int
	Columns    []string
	Introduced []string
	Discarded  []string
}

// Combine unions the high and low popularity datasets into one labelled dataset.
// The high popularity file's trimmed header is the canonical schema.
func (p *Pipeline) Combine(ctx context.Context, req CombineRequest) (CombineResult, error) {
	if err := ctx.Err(); err != nil {
		return CombineResult{}, err
	}

	high, err := p.store.LoadTable(ctx, req.HighPath)
	if err != nil {
		return CombineResult{}, fmt.Errorf("service: failed to load high popularity dataset: %w", err)
	}
	low, err := p.store.LoadTable(ctx, req.LowPath)
	if err != nil {
		return CombineResult{}, fmt.Errorf("service: failed to load low popularity dataset: %w", err)
	}

	high = high.TrimColumnNames()
	canonical := high.Columns()

	low, introduced, discarded, err := low.TrimColumnNames().AlignTo(canonical)
	if err != nil {
		return CombineResult{}, fmt.Errorf("service: failed to align low popularity dataset: %w", err)
	}
	reportDrift(introduced, discarded)

	if err := domain.RequireColumns("combined dataset", canonical, req.DropColumns...); err != nil {
		return CombineResult{}, fmt.Errorf("service: %w", err)
	}

	res := CombineResult{
		HighRows:   high.Len(),
		LowRows:    low.Len(),
		Introduced: introduced,
		Discarded:  discarded,
	}

	if high, err = high.WithConstant(domain.ColLabel, domain.LabelHigh); err != nil {
		return CombineResult{}, fmt.Errorf("service: %w", err)
	}
	if low, err = low.WithConstant(domain.ColLabel, domain.LabelLow); err != nil {
		return CombineResult{}, fmt.Errorf("service: %w", err)
	}

	combined, err := table.Concat(high, low)
	if err != nil {
		return CombineResult{}, fmt.Errorf("service: failed to concatenate datasets: %w", err)
	}
	if combined, err = combined.Drop(req.DropColumns...); err != nil {
		return CombineResult{}, fmt.Errorf("service: failed to drop identifier columns: %w", err)
	}

	for _, out := range req.Outputs {
		if err := p.store.SaveTable(ctx, out, combined); err != nil {
			return CombineResult{}, fmt.Errorf("service: failed to save combined dataset: %w", err)
		}
	}

	res.Rows = combined.Len()
	res.Columns = combined.Columns()
	log.Printf("combiner: %d high + %d low rows -> %d rows, %d columns", res.HighRows, res.LowRows, res.Rows, len(res.Columns))
	return res, nil
}

func reportDrift(introduced, discarded []string) {
	for _, c := range introduced {
		log.Printf("WARN combiner: low popularity dataset lacks column %q; filled with empty values", c)
	}
	for _, c := range discarded {
		log.Printf("WARN combiner: low popularity column %q is not in the canonical schema; discarded", c)
	}
	for extra, canonical := range probableRenames(introduced, discarded) {
		log.Printf("WARN combiner: discarded column %q looks like a rename of %q", extra, canonical)
	}
}

// probableRenames pairs each discarded column with the most similar introduced
// column when their similarity reaches driftThreshold.
func probableRenames(introduced, discarded []string) map[string]string {
	out := make(map[string]string)
	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false

	for _, d := range discarded {
		best, bestScore := "", 0.0
		for _, c := range introduced {
			if score := strutil.Similarity(d, c, jw); score > bestScore {
				best, bestScore = c, score
			}
		}
		if bestScore >= driftThreshold {
			out[d] = best
		}
	}
	return out
}
