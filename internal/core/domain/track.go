package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column names of the combined dataset.
const (
	ColTrackName   = "track_name"
	ColArtist      = "track_artist"
	ColAlbum       = "track_album_name"
	ColGenre       = "playlist_genre"
	ColReleaseDate = "track_album_release_date"
	ColPopularity  = "track_popularity"
	ColLabel       = "popularity_label"
	ColBucket      = "popularity_bucket"
)

// Audio feature column names.
const (
	FeatureDanceability = "danceability"
	FeatureEnergy       = "energy"
	FeatureValence      = "valence"
	FeatureAcousticness = "acousticness"
	FeatureSpeechiness  = "speechiness"
	FeatureLiveness     = "liveness"
)

// FeatureNames lists the audio features in their canonical order.
var FeatureNames = []string{
	FeatureDanceability,
	FeatureEnergy,
	FeatureValence,
	FeatureAcousticness,
	FeatureSpeechiness,
	FeatureLiveness,
}

// Provenance labels for the combined dataset.
const (
	LabelHigh = 1
	LabelLow  = 0
)

// AudioFeatures holds the six audio descriptors of a track, each nominally in [0, 1].
type AudioFeatures struct {
	Danceability float64
	Energy       float64
	Valence      float64
	Acousticness float64
	Speechiness  float64
	Liveness     float64
}

// Get returns the value of the named feature.
func (f AudioFeatures) Get(name string) (float64, bool) {
	switch name {
	case FeatureDanceability:
		return f.Danceability, true
	case FeatureEnergy:
		return f.Energy, true
	case FeatureValence:
		return f.Valence, true
	case FeatureAcousticness:
		return f.Acousticness, true
	case FeatureSpeechiness:
		return f.Speechiness, true
	case FeatureLiveness:
		return f.Liveness, true
	}
	return 0, false
}

// Set assigns the named feature. It reports false for unknown names.
func (f *AudioFeatures) Set(name string, v float64) bool {
	switch name {
	case FeatureDanceability:
		f.Danceability = v
	case FeatureEnergy:
		f.Energy = v
	case FeatureValence:
		f.Valence = v
	case FeatureAcousticness:
		f.Acousticness = v
	case FeatureSpeechiness:
		f.Speechiness = v
	case FeatureLiveness:
		f.Liveness = v
	default:
		return false
	}
	return true
}

// IsFeature reports whether name is one of FeatureNames.
func IsFeature(name string) bool {
	_, ok := AudioFeatures{}.Get(name)
	return ok
}

// ValidateFeatures returns ErrUnknownFeature for the first name that is not an
// audio feature and ErrDuplicateFeature for the first name given twice.
func ValidateFeatures(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !IsFeature(n) {
			return &UnknownFeatureError{Name: n}
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateFeature, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// ColumnSet is a set of column names.
type ColumnSet map[string]struct{}

// Has reports whether name is in the set.
func (s ColumnSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Track represents one song row of the combined dataset.
// Numeric columns that were empty or unparseable are listed in Missing and hold zero.
type Track struct {
	Name        string
	Artist      string
	Album       string
	Genre       string
	ReleaseDate string
	Popularity  float64
	Label       int
	Features    AudioFeatures
	Missing     ColumnSet
}

// Complete reports whether every named numeric column parsed.
func (t Track) Complete(cols ...string) bool {
	for _, c := range cols {
		if t.Missing.Has(c) {
			return false
		}
	}
	return true
}

// Bucket returns the popularity bucket of the track.
func (t Track) Bucket() int {
	return PopularityBucket(t.Popularity)
}

// ParseTrack builds a Track from one row keyed by column name.
// Absent numeric columns count as missing; text columns are kept verbatim
// unless they hold a missing-value marker, which becomes "".
func ParseTrack(row map[string]string) Track {
	t := Track{
		Name:        Text(row[ColTrackName]),
		Artist:      Text(row[ColArtist]),
		Album:       Text(row[ColAlbum]),
		Genre:       Text(row[ColGenre]),
		ReleaseDate: Text(row[ColReleaseDate]),
		Missing:     ColumnSet{},
	}

	if v, ok := ParseNumber(row[ColPopularity]); ok {
		t.Popularity = v
	} else {
		t.Missing[ColPopularity] = struct{}{}
	}

	if v, ok := ParseNumber(row[ColLabel]); ok {
		t.Label = int(v)
	} else {
		t.Missing[ColLabel] = struct{}{}
	}

	for _, name := range FeatureNames {
		v, ok := ParseNumber(row[name])
		if !ok {
			t.Missing[name] = struct{}{}
			continue
		}
		t.Features.Set(name, v)
	}

	return t
}

// ParseNumber parses a numeric cell. Empty, NaN and infinite values are rejected.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// PopularityBucket rounds popularity down to the nearest multiple of 10.
func PopularityBucket(popularity float64) int {
	return int(math.Floor(popularity/10)) * 10
}
