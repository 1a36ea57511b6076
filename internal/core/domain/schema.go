package domain

// Schema declares the columns a projection needs. Required columns must be
// present; optional columns are kept when the source has them.
type Schema struct {
	Name     string
	Required []string
	Optional []string
}

// Resolve returns the columns to project, in declaration order with required
// columns first, and the optional columns the source lacks.
func (s Schema) Resolve(available []string) (cols []string, omitted []string, err error) {
	have := make(ColumnSet, len(available))
	for _, c := range available {
		have[c] = struct{}{}
	}

	var missing []string
	for _, c := range s.Required {
		if !have.Has(c) {
			missing = append(missing, c)
			continue
		}
		cols = append(cols, c)
	}
	if len(missing) > 0 {
		return nil, nil, &MissingColumnError{Dataset: s.Name, Columns: missing}
	}

	for _, c := range s.Optional {
		if !have.Has(c) {
			omitted = append(omitted, c)
			continue
		}
		cols = append(cols, c)
	}
	return cols, omitted, nil
}

// RequireColumns checks that every name in required appears in available.
func RequireColumns(dataset string, available []string, required ...string) error {
	_, _, err := Schema{Name: dataset, Required: required}.Resolve(available)
	return err
}

// PopularitySchema is the projection of the genre popularity extract.
var PopularitySchema = Schema{
	Name:     "genre popularity extract",
	Required: []string{ColGenre, ColPopularity},
}

// AudioFeatureSchema is the projection of the genre audio feature extract.
var AudioFeatureSchema = Schema{
	Name: "genre audio feature extract",
	Required: []string{
		ColGenre,
		FeatureDanceability,
		FeatureEnergy,
		FeatureValence,
		FeatureLiveness,
		FeatureSpeechiness,
		FeatureAcousticness,
		ColPopularity,
	},
	Optional: []string{ColTrackName, ColArtist},
}

// NumericColumns lists the columns whose cells are numbers in serialized records.
var NumericColumns = ColumnSet{
	ColPopularity:       {},
	ColLabel:            {},
	ColBucket:           {},
	FeatureDanceability: {},
	FeatureEnergy:       {},
	FeatureValence:      {},
	FeatureAcousticness: {},
	FeatureSpeechiness:  {},
	FeatureLiveness:     {},
}
