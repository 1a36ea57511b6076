package ports

import (
	"context"

	"github.com/ewilliams-labs/chartprep/internal/core/table"
)

// DatasetStore loads and persists flat-file datasets and artifacts.
type DatasetStore interface {
	LoadTable(ctx context.Context, path string) (*table.Table, error)
	SaveTable(ctx context.Context, path string, t *table.Table) error
	SaveJSON(ctx context.Context, path string, v any) error
}
