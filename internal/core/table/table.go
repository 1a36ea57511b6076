// Package table provides the rectangular dataset used by every pipeline stage.
// Cells are kept as raw text so that a dataset written back out is unchanged;
// numeric interpretation belongs to the domain package.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// indexHeaders are the names pandas gives an unnamed index column.
var indexHeaders = map[string]struct{}{
	"":           {},
	"Unnamed: 0": {},
}

// Table is an ordered collection of rows sharing one column schema.
type Table struct {
	df dataframe.DataFrame
}

// Read parses a comma-delimited file with a header row. A leading UTF-8 BOM
// and a leading pandas index column are discarded.
func Read(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("table: read: %w", err)
	}
	b = bytes.TrimPrefix(b, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(b))
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table: parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("table: parse csv: missing header row")
	}

	if _, ok := indexHeaders[records[0][0]]; ok && len(records[0]) > 1 {
		for i := range records {
			records[i] = records[i][1:]
		}
	}

	return FromRecords(records)
}

// FromRecords builds a table from a header row followed by data rows.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("table: missing header row")
	}
	if len(records) == 1 {
		return Empty(records[0]), nil
	}

	df := dataframe.LoadRecords(
		records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("table: load records: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Empty returns a table with the given columns and no rows.
func Empty(columns []string) *Table {
	cols := make([]series.Series, len(columns))
	for i, c := range columns {
		cols[i] = series.New([]string{}, series.String, c)
	}
	return &Table{df: dataframe.New(cols...)}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return t.df.Names()
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.df.Nrow()
}

// Has reports whether the table has the named column.
func (t *Table) Has(column string) bool {
	for _, c := range t.df.Names() {
		if c == column {
			return true
		}
	}
	return false
}

// TrimColumnNames strips surrounding whitespace from every column name.
func (t *Table) TrimColumnNames() *Table {
	df := t.df
	for _, name := range df.Names() {
		trimmed := strings.TrimSpace(name)
		if trimmed != name {
			df = df.Rename(trimmed, name)
		}
	}
	return &Table{df: df}
}

// AlignTo reorders the table to columns. Columns the table lacks are added with
// empty cells and returned as introduced; columns not in the list are dropped and
// returned as discarded.
func (t *Table) AlignTo(columns []string) (aligned *Table, introduced, discarded []string, err error) {
	wanted := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		wanted[c] = struct{}{}
	}
	for _, c := range t.df.Names() {
		if _, ok := wanted[c]; !ok {
			discarded = append(discarded, c)
		}
	}

	n := t.df.Nrow()
	cols := make([]series.Series, 0, len(columns))
	for _, c := range columns {
		if t.Has(c) {
			cols = append(cols, t.df.Col(c).Copy())
			continue
		}
		introduced = append(introduced, c)
		cols = append(cols, series.New(make([]string, n), series.String, c))
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return nil, nil, nil, fmt.Errorf("table: align: %w", df.Err)
	}
	return &Table{df: df}, introduced, discarded, nil
}

// WithConstant appends (or replaces) an integer column holding v in every row.
func (t *Table) WithConstant(column string, v int) (*Table, error) {
	vals := make([]int, t.df.Nrow())
	for i := range vals {
		vals[i] = v
	}
	df := t.df.Mutate(series.New(vals, series.Int, column))
	if df.Err != nil {
		return nil, fmt.Errorf("table: add column %s: %w", column, df.Err)
	}
	return &Table{df: df}, nil
}

// Concat appends the rows of b after the rows of a. Columns are matched by name
// and must be the same set in both tables.
func Concat(a, b *Table) (*Table, error) {
	if len(a.Columns()) != len(b.Columns()) {
		return nil, fmt.Errorf("table: concat: %d columns vs %d", len(a.Columns()), len(b.Columns()))
	}
	df := a.df.RBind(b.df)
	if df.Err != nil {
		return nil, fmt.Errorf("table: concat: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Drop removes the named columns.
func (t *Table) Drop(columns ...string) (*Table, error) {
	if len(columns) == 0 {
		return t, nil
	}
	df := t.df.Drop(columns)
	if df.Err != nil {
		return nil, fmt.Errorf("table: drop: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Select projects the table onto columns, in that order.
func (t *Table) Select(columns ...string) (*Table, error) {
	for _, c := range columns {
		if !t.Has(c) {
			return nil, fmt.Errorf("table: select: unknown column %q", c)
		}
	}
	if t.df.Nrow() == 0 {
		return Empty(columns), nil
	}
	df := t.df.Select(columns)
	if df.Err != nil {
		return nil, fmt.Errorf("table: select: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// FilterIn keeps the rows whose column value is one of values, in input order.
func (t *Table) FilterIn(column string, values []string) (*Table, error) {
	if !t.Has(column) {
		return nil, fmt.Errorf("table: filter: unknown column %q", column)
	}
	if len(values) == 0 || t.df.Nrow() == 0 {
		return Empty(t.Columns()), nil
	}
	df := t.df.Filter(dataframe.F{
		Colname:    column,
		Comparator: series.In,
		Comparando: values,
	})
	if df.Err != nil {
		return nil, fmt.Errorf("table: filter: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]string, error) {
	if !t.Has(name) {
		return nil, fmt.Errorf("table: unknown column %q", name)
	}
	return t.df.Col(name).Records(), nil
}

// Rows returns every row keyed by column name.
func (t *Table) Rows() []map[string]string {
	records := t.df.Records()
	if len(records) < 2 {
		return []map[string]string{}
	}
	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the header row followed by every data row.
func (t *Table) WriteCSV(w io.Writer) error {
	if t.df.Nrow() == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Columns()); err != nil {
			return fmt.Errorf("table: write csv: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}
	if err := t.df.WriteCSV(w); err != nil {
		return fmt.Errorf("table: write csv: %w", err)
	}
	return nil
}
