package domain

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// GroupKey partitions tracks by genre and popularity bucket.
type GroupKey struct {
	Genre  string
	Bucket int
}

// Less orders keys by genre, then bucket.
func (k GroupKey) Less(o GroupKey) bool {
	if k.Genre != o.Genre {
		return k.Genre < o.Genre
	}
	return k.Bucket < o.Bucket
}

// AggregateRecord holds the mean of each feature over the tracks sharing Key.
// Means is parallel to Features.
type AggregateRecord struct {
	Key      GroupKey
	Count    int
	Features []string
	Means    []float64
}

// Mean returns the mean of the named feature.
func (r AggregateRecord) Mean(feature string) (float64, bool) {
	for i, f := range r.Features {
		if f == feature {
			return r.Means[i], true
		}
	}
	return 0, false
}

// MarshalJSON writes the record as a flat object: genre, bucket, then one key per feature.
func (r AggregateRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	if err := write(ColGenre, r.Key.Genre); err != nil {
		return nil, err
	}
	if err := write(ColBucket, r.Key.Bucket); err != nil {
		return nil, err
	}
	for i, f := range r.Features {
		if err := write(f, r.Means[i]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MeanFeatures averages every feature across tracks. An empty slice yields zero values.
func MeanFeatures(tracks []Track) AudioFeatures {
	if len(tracks) == 0 {
		return AudioFeatures{}
	}

	var sum AudioFeatures
	for _, t := range tracks {
		sum.Danceability += t.Features.Danceability
		sum.Energy += t.Features.Energy
		sum.Valence += t.Features.Valence
		sum.Acousticness += t.Features.Acousticness
		sum.Speechiness += t.Features.Speechiness
		sum.Liveness += t.Features.Liveness
	}

	n := float64(len(tracks))
	return AudioFeatures{
		Danceability: sum.Danceability / n,
		Energy:       sum.Energy / n,
		Valence:      sum.Valence / n,
		Acousticness: sum.Acousticness / n,
		Speechiness:  sum.Speechiness / n,
		Liveness:     sum.Liveness / n,
	}
}

// GroupMeans partitions tracks by (genre, bucket) and averages the named features
// within each group. Only keys with at least one track are returned, ordered by Less.
// Callers filter out tracks with missing values beforehand.
func GroupMeans(tracks []Track, features []string) []AggregateRecord {
	groups := make(map[GroupKey][]Track)
	for _, t := range tracks {
		k := GroupKey{Genre: t.Genre, Bucket: t.Bucket()}
		groups[k] = append(groups[k], t)
	}

	keys := make([]GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]AggregateRecord, 0, len(keys))
	for _, k := range keys {
		members := groups[k]
		mean := MeanFeatures(members)
		rec := AggregateRecord{
			Key:      k,
			Count:    len(members),
			Features: append([]string(nil), features...),
			Means:    make([]float64, len(features)),
		}
		for i, f := range features {
			rec.Means[i], _ = mean.Get(f)
		}
		out = append(out, rec)
	}
	return out
}
