package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn indicates a required column is absent from a dataset.
	ErrMissingColumn = errors.New("domain: missing column")
	// ErrUnknownFeature indicates a name that is not one of FeatureNames.
	ErrUnknownFeature = errors.New("domain: unknown audio feature")
	// ErrDuplicateFeature indicates a feature selected more than once.
	ErrDuplicateFeature = errors.New("domain: duplicate audio feature")
)

// MissingColumnError names the dataset and the required columns it lacks.
type MissingColumnError struct {
	Dataset string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("%s: missing required columns: %s", e.Dataset, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// UnknownFeatureError carries the rejected feature name.
type UnknownFeatureError struct {
	Name string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("unknown audio feature %q", e.Name)
}

func (e *UnknownFeatureError) Is(target error) bool {
	return target == ErrUnknownFeature
}
