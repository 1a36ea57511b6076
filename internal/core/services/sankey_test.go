package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
)

func sankeyFixture() string {
	return combinedHeader +
		combinedRow("a", `"A, B"`, "pop", "2015-03-01", "70", "0.8") +
		combinedRow("b", "C", "rock", "2009-12-31", "60", "0.5") +
		combinedRow("c", "D", "pop", "2010", "50", "0.5") +
		combinedRow("d", "E", "pop", "not a date", "40", "0.5") +
		combinedRow("e", "F", "", "2018-01-01", "30", "0.5") +
		combinedRow("f", "G", "jazz", "2020-01-01", "20", "") +
		combinedRow("g", `" , H"`, "jazz", "2020-01-01", "20", "0.5") +
		combinedRow("h", "A", "rock", "2019-05", "90", "0.3") +
		combinedRow("i", "I", "NaN", "2021-01-01", "80", "0.5")
}

// TestPipeline_Sankey verifies year and artist filtering of flow records.
func TestPipeline_Sankey(t *testing.T) {
	type want struct {
		artist string
		genre  string
		year   int
	}
	tests := []struct {
		name       string
		topArtists int
		want       []want
	}{
		{
			name: "all artists",
			want: []want{
				{"A", "pop", 2015},
				{"D", "pop", 2010},
				{"A", "rock", 2019},
			},
		},
		{
			name:       "top artist only",
			topArtists: 1,
			want: []want{
				{"A", "pop", 2015},
				{"A", "rock", 2019},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newMockStore(map[string]string{"combined.csv": sankeyFixture()})
			p := NewPipeline(store, &mockAggregator{})

			records, err := p.Sankey(context.Background(), SankeyRequest{
				Input:      "combined.csv",
				Output:     "cleandata/sankey_tracks.json",
				MinYear:    DefaultMinYear,
				TopArtists: tc.topArtists,
			})
			if err != nil {
				t.Fatalf("Sankey returned error: %v", err)
			}
			if len(records) != len(tc.want) {
				t.Fatalf("got %d records, want %d: %+v", len(records), len(tc.want), records)
			}
			for i, w := range tc.want {
				r := records[i]
				if r.Artist != w.artist || r.Genre != w.genre || r.Year != w.year {
					t.Fatalf("record %d = %+v, want %+v", i, r, w)
				}
				if r.Year < DefaultMinYear {
					t.Fatalf("record %d predates %d", i, DefaultMinYear)
				}
			}

			out := string(store.json["cleandata/sankey_tracks.json"])
			if !strings.HasPrefix(out, `[{"artist":"A","genre":"pop","year":2015,"danceability":0.8`) {
				t.Fatalf("unexpected sankey json: %s", out)
			}
		})
	}
}

func TestPipeline_Sankey_Empty(t *testing.T) {
	src := combinedHeader + combinedRow("a", "X", "pop", "1999", "50", "0.5")
	store := newMockStore(map[string]string{"combined.csv": src})
	p := NewPipeline(store, &mockAggregator{})

	records, err := p.Sankey(context.Background(), SankeyRequest{Input: "combined.csv", Output: "out.json", MinYear: DefaultMinYear})
	if err != nil {
		t.Fatalf("Sankey returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %+v", records)
	}
	if got := string(store.json["out.json"]); got != "[]" {
		t.Fatalf("expected empty list, got %s", got)
	}
}

func TestPipeline_Sankey_MissingColumn(t *testing.T) {
	src := strings.Replace(combinedHeader, "track_album_release_date", "release", 1) +
		combinedRow("a", "X", "pop", "2015", "50", "0.5")
	store := newMockStore(map[string]string{"combined.csv": src})
	p := NewPipeline(store, &mockAggregator{})

	_, err := p.Sankey(context.Background(), SankeyRequest{Input: "combined.csv", Output: "out.json", MinYear: DefaultMinYear})
	if !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}
