package domain

// RadarArtifact is the radar chart payload: feature axes, selectable genres and
// the per (genre, bucket) means.
type RadarArtifact struct {
	Features []string          `json:"features"`
	Genres   []string          `json:"genres"`
	Data     []AggregateRecord `json:"data"`
}

// SankeyRecord is one track of the artist -> genre -> year flow extract.
type SankeyRecord struct {
	Artist       string  `json:"artist"`
	Genre        string  `json:"genre"`
	Year         int     `json:"year"`
	Danceability float64 `json:"danceability"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Acousticness float64 `json:"acousticness"`
	Speechiness  float64 `json:"speechiness"`
	Liveness     float64 `json:"liveness"`
	Popularity   float64 `json:"track_popularity"`
}

// NewSankeyRecord flattens a track with its derived artist and year.
func NewSankeyRecord(t Track, artist string, year int) SankeyRecord {
	return SankeyRecord{
		Artist:       artist,
		Genre:        t.Genre,
		Year:         year,
		Danceability: t.Features.Danceability,
		Energy:       t.Features.Energy,
		Valence:      t.Features.Valence,
		Acousticness: t.Features.Acousticness,
		Speechiness:  t.Features.Speechiness,
		Liveness:     t.Features.Liveness,
		Popularity:   t.Popularity,
	}
}
