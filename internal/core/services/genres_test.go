package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
)

// genreFixture holds twelve genres; genre gNN has two tracks with mean popularity NN*5+1.
func genreFixture() string {
	var b strings.Builder
	b.WriteString(combinedHeader)
	for i := 0; i < 12; i++ {
		g := fmt.Sprintf("g%02d", i)
		b.WriteString(combinedRow("s", "A", g, "2020", fmt.Sprint(i*5), "0.5"))
		b.WriteString(combinedRow("t", "B", g, "2020", fmt.Sprint(i*5+2), "0.5"))
	}
	b.WriteString(combinedRow("u", "C", "", "2020", "99", "0.5"))
	return b.String()
}

// TestPipeline_GenreExtracts verifies the top genres and both written extracts.
func TestPipeline_GenreExtracts(t *testing.T) {
	store := newMockStore(map[string]string{"combined.csv": genreFixture()})
	p := NewPipeline(store, &mockAggregator{})

	res, err := p.GenreExtracts(context.Background(), GenreRequest{
		Input:     "combined.csv",
		OutputDir: "cleandata",
		TopN:      DefaultTopGenres,
	})
	if err != nil {
		t.Fatalf("GenreExtracts returned error: %v", err)
	}

	if len(res.Genres) != 10 {
		t.Fatalf("expected 10 genres, got %v", res.Genres)
	}
	if res.Genres[0] != "g11" || res.Genres[9] != "g02" {
		t.Fatalf("unexpected ranking: %v", res.Genres)
	}
	for _, g := range res.Genres {
		if g == "g00" || g == "g01" || g == "" {
			t.Fatalf("genre %q should not be selected", g)
		}
	}
	if res.PopularityRows != 20 || res.FeatureRows != 20 {
		t.Fatalf("unexpected row counts: %+v", res)
	}
	if len(res.Omitted) != 0 {
		t.Fatalf("nothing should be omitted, got %v", res.Omitted)
	}

	popCSV := store.files[filepath.Join("cleandata", PopularityExtract+".csv")]
	if !strings.HasPrefix(popCSV, "playlist_genre,track_popularity\n") {
		t.Fatalf("unexpected popularity extract: %q", popCSV)
	}
	popJSON := string(store.json[filepath.Join("cleandata", PopularityExtract+".json")])
	if !strings.HasPrefix(popJSON, `[{"playlist_genre":"g02","track_popularity":10}`) {
		t.Fatalf("unexpected popularity json: %s", popJSON)
	}

	featCSV := store.files[filepath.Join("cleandata", FeatureExtract+".csv")]
	wantHeader := "playlist_genre,danceability,energy,valence,liveness,speechiness,acousticness,track_popularity,track_name,track_artist\n"
	if !strings.HasPrefix(featCSV, wantHeader) {
		t.Fatalf("unexpected feature extract header: %q", featCSV)
	}
	if _, ok := store.json[filepath.Join("cleandata", FeatureExtract+".json")]; !ok {
		t.Fatalf("feature json not written")
	}
}

// TestPipeline_GenreExtracts_OptionalColumns verifies absent optional columns are reported, not fatal.
func TestPipeline_GenreExtracts_OptionalColumns(t *testing.T) {
	src := "playlist_genre,track_popularity,danceability,energy,valence,acousticness,speechiness,liveness\n" +
		"pop,80,0.1,0.2,0.3,0.4,0.5,0.6\n" +
		"rock,50,0.1,0.2,0.3,0.4,0.5,\n"
	store := newMockStore(map[string]string{"combined.csv": src})
	p := NewPipeline(store, &mockAggregator{})

	res, err := p.GenreExtracts(context.Background(), GenreRequest{Input: "combined.csv", OutputDir: "out", TopN: 10})
	if err != nil {
		t.Fatalf("GenreExtracts returned error: %v", err)
	}
	if strings.Join(res.Omitted, ",") != "track_name,track_artist" {
		t.Fatalf("omitted = %v", res.Omitted)
	}

	featJSON := string(store.json[filepath.Join("out", FeatureExtract+".json")])
	if !strings.Contains(featJSON, `"liveness":null`) {
		t.Fatalf("expected null for empty numeric cell: %s", featJSON)
	}
	if strings.Contains(featJSON, "track_name") {
		t.Fatalf("absent column leaked into output: %s", featJSON)
	}
}

func TestPipeline_GenreExtracts_Errors(t *testing.T) {
	t.Run("missing required column", func(t *testing.T) {
		src := "playlist_genre,track_popularity\npop,80\n"
		store := newMockStore(map[string]string{"combined.csv": src})
		p := NewPipeline(store, &mockAggregator{})
		_, err := p.GenreExtracts(context.Background(), GenreRequest{Input: "combined.csv", OutputDir: "out", TopN: 10})
		if !errors.Is(err, domain.ErrMissingColumn) {
			t.Fatalf("expected ErrMissingColumn, got %v", err)
		}
		if len(store.saves) != 0 {
			t.Fatalf("no extract should be written when a schema fails, got %v", store.saves)
		}
	})

	t.Run("aggregator failure", func(t *testing.T) {
		store := newMockStore(map[string]string{"combined.csv": genreFixture()})
		p := NewPipeline(store, &mockAggregator{err: errors.New("boom")})
		if _, err := p.GenreExtracts(context.Background(), GenreRequest{Input: "combined.csv", OutputDir: "out"}); err == nil {
			t.Fatalf("expected error")
		}
		if len(store.saves) != 0 {
			t.Fatalf("expected no output, got %v", store.saves)
		}
	})
}

// TestPipeline_GenreExtracts_MissingGenreMarkers verifies NA-style genre cells
// neither rank nor take a top-N slot.
func TestPipeline_GenreExtracts_MissingGenreMarkers(t *testing.T) {
	full := combinedHeader +
		combinedRow("a", "X", "NaN", "2020", "90", "0.5") +
		combinedRow("b", "X", "pop", "2020", "50", "0.5") +
		combinedRow("c", "X", "NaN", "2020", "80", "0.5") +
		combinedRow("d", "X", "NA", "2020", "99", "0.5") +
		combinedRow("e", "X", "rock", "2020", "40", "0.5")
	store := newMockStore(map[string]string{"combined.csv": full})
	p := NewPipeline(store, &mockAggregator{})

	res, err := p.GenreExtracts(context.Background(), GenreRequest{Input: "combined.csv", OutputDir: "out", TopN: 1})
	if err != nil {
		t.Fatalf("GenreExtracts returned error: %v", err)
	}
	if strings.Join(res.Genres, ",") != "pop" {
		t.Fatalf("genres = %v, want [pop]", res.Genres)
	}
	if res.PopularityRows != 1 || res.FeatureRows != 1 {
		t.Fatalf("unexpected row counts: %+v", res)
	}
	got := string(store.json[filepath.Join("out", PopularityExtract+".json")])
	if got != `[{"playlist_genre":"pop","track_popularity":50}]` {
		t.Fatalf("unexpected popularity json: %s", got)
	}
}
