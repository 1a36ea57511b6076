package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
	"github.com/ewilliams-labs/chartprep/internal/core/table"
)

const combinedHeader = "track_name,track_artist,track_album_name,playlist_genre,track_album_release_date," +
	"track_popularity,danceability,energy,valence,acousticness,speechiness,liveness,popularity_label\n"

// combinedRow formats one combined dataset row. artist is written verbatim so
// callers can quote multi-artist credits.
func combinedRow(name, artist, genre, date, popularity, danceability string) string {
	return fmt.Sprintf("%s,%s,Album,%s,%s,%s,%s,0.5,0.5,0.5,0.5,0.5,1\n",
		name, artist, genre, date, popularity, danceability)
}

// --- Mocks ---

// mockStore keeps every dataset in memory. Saved tables are readable by later
// stages through LoadTable.
type mockStore struct {
	files   map[string]string
	json    map[string][]byte
	loadErr error
	saveErr error

	saves []string
}

func newMockStore(files map[string]string) *mockStore {
	if files == nil {
		files = map[string]string{}
	}
	return &mockStore{files: files, json: map[string][]byte{}}
}

func (m *mockStore) LoadTable(ctx context.Context, path string) (*table.Table, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	src, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("mock: %s: %w", path, os.ErrNotExist)
	}
	return table.Read(strings.NewReader(src))
}

func (m *mockStore) SaveTable(ctx context.Context, path string, t *table.Table) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return err
	}
	m.files[path] = buf.String()
	m.saves = append(m.saves, path)
	return nil
}

func (m *mockStore) SaveJSON(ctx context.Context, path string, v any) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.json[path] = b
	m.saves = append(m.saves, path)
	return nil
}

// mockAggregator delegates to the domain functions and records how often it was used.
type mockAggregator struct {
	err   error
	calls int
}

func (m *mockAggregator) GroupMeans(ctx context.Context, tracks []domain.Track, features []string) ([]domain.AggregateRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return domain.GroupMeans(tracks, features), nil
}

func (m *mockAggregator) RankByCount(ctx context.Context, labels []string) ([]domain.Rank, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return domain.RankByCount(labels), nil
}

func (m *mockAggregator) RankByMean(ctx context.Context, labels []string, values []float64) ([]domain.Rank, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return domain.RankByMean(labels, values), nil
}
