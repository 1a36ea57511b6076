// Package filestore provides the flat-file implementation of the dataset store port.
package filestore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/chartprep/internal/core/table"
)

// Store reads CSV datasets and writes CSV and JSON artifacts on the local filesystem.
type Store struct {
	// Root, when set, is prepended to every relative path.
	Root string
}

// New returns a Store resolving relative paths against root.
func New(root string) *Store {
	return &Store{Root: root}
}

// LoadTable reads a comma-delimited dataset with a header row.
func (s *Store) LoadTable(ctx context.Context, path string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("filestore: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := table.Read(f)
	if err != nil {
		return nil, fmt.Errorf("filestore: load %s: %w", path, err)
	}
	return t, nil
}

// SaveTable writes t as CSV, replacing path atomically.
func (s *Store) SaveTable(ctx context.Context, path string, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return fmt.Errorf("filestore: encode %s: %w", path, err)
	}
	return s.writeFile(path, buf.Bytes())
}

// SaveJSON writes v as indented JSON, replacing path atomically.
func (s *Store) SaveJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode %s: %w", path, err)
	}
	return s.writeFile(path, append(b, '\n'))
}

func (s *Store) resolve(path string) string {
	if s.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

// writeFile replaces path with data via a temp file in the same directory.
func (s *Store) writeFile(path string, data []byte) error {
	target := s.resolve(path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filestore: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("filestore: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("filestore: replace %s: %w", path, err)
	}
	return nil
}
