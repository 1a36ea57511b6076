package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/chartprep/internal/core/table"
)

func TestStore_TableRoundTrip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "in.csv"), []byte("\xEF\xBB\xBFa,b\n1,x\n2,\n"), 0o644))

	s := New(root)
	ctx := context.Background()

	tbl, err := s.LoadTable(ctx, "in.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())

	require.NoError(t, s.SaveTable(ctx, "nested/dir/out.csv", tbl))
	got, err := os.ReadFile(filepath.Join(root, "nested", "dir", "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,x\n2,\n", string(got))

	entries, err := os.ReadDir(filepath.Join(root, "nested", "dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestStore_SaveJSON(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	payload := map[string]any{"genres": []string{"pop"}}
	require.NoError(t, s.SaveJSON(context.Background(), "cleandata/out.json", payload))

	got, err := os.ReadFile(filepath.Join(root, "cleandata", "out.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"genres\": [\n    \"pop\"\n  ]\n}\n", string(got))

	require.NoError(t, s.SaveJSON(context.Background(), "cleandata/out.json", []int{}))
	got, err = os.ReadFile(filepath.Join(root, "cleandata", "out.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(got))
}

func TestStore_Errors(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.LoadTable(context.Background(), "missing.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SaveTable(ctx, "x.csv", table.Empty([]string{"a"})), context.Canceled)
	assert.ErrorIs(t, s.SaveJSON(ctx, "x.json", nil), context.Canceled)
}

func TestStore_AbsolutePathIgnoresRoot(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "abs.csv")
	s := New("/does/not/exist")

	require.NoError(t, s.SaveTable(context.Background(), abs, table.Empty([]string{"a", "b"})))
	got, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(got))
}
