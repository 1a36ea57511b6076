// Package sqlite provides a SQLite-backed implementation of the aggregator port.
// Rows are loaded into scratch tables and reduced with AVG/COUNT ... GROUP BY.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter implements the aggregator port for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration.
// Use ":memory:" for a database that lives only as long as the Adapter.
func NewAdapter(dsn string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to open db: %w", err)
	}
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite adapter: failed to ping db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite adapter: migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// GroupMeans loads tracks into the scratch table and averages features per
// (genre, bucket). Missing feature values are stored as NULL and skipped by AVG.
func (a *Adapter) GroupMeans(ctx context.Context, tracks []domain.Track, features []string) ([]domain.AggregateRecord, error) {
	if err := domain.ValidateFeatures(features); err != nil {
		return nil, fmt.Errorf("sqlite adapter: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to begin transaction: %w", err)
	}
	// Scratch rows never outlive the call.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracks"); err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to clear tracks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (
			seq, genre, bucket,
			danceability, energy, valence, acousticness, speechiness, liveness
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tracks {
		args := []any{i, t.Genre, t.Bucket()}
		for _, name := range domain.FeatureNames {
			args = append(args, nullableFeature(t, name))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("sqlite adapter: failed to insert track %d: %w", i, err)
		}
	}

	// Feature names are validated above, so they are safe to splice as identifiers.
	cols := make([]string, len(features))
	for i, f := range features {
		cols[i] = fmt.Sprintf("AVG(%s)", f)
	}
	query := fmt.Sprintf(`
		SELECT genre, bucket, COUNT(*)%s
		FROM tracks
		GROUP BY genre, bucket
		ORDER BY genre, bucket
	`, leadingComma(cols))

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to aggregate tracks: %w", err)
	}
	defer rows.Close()

	out := []domain.AggregateRecord{}
	for rows.Next() {
		rec := domain.AggregateRecord{
			Features: append([]string(nil), features...),
			Means:    make([]float64, len(features)),
		}
		means := make([]sql.NullFloat64, len(features))
		dest := []any{&rec.Key.Genre, &rec.Key.Bucket, &rec.Count}
		for i := range means {
			dest = append(dest, &means[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sqlite adapter: failed to scan group: %w", err)
		}
		for i, m := range means {
			rec.Means[i] = m.Float64
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to iterate groups: %w", err)
	}
	return out, nil
}

// RankByCount orders labels by descending frequency, ties by first appearance.
func (a *Adapter) RankByCount(ctx context.Context, labels []string) ([]domain.Rank, error) {
	return a.rank(ctx, labels, nil, "COUNT(*) DESC")
}

// RankByMean orders labels by descending mean value, ties by first appearance.
func (a *Adapter) RankByMean(ctx context.Context, labels []string, values []float64) ([]domain.Rank, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("sqlite adapter: %d labels but %d values", len(labels), len(values))
	}
	return a.rank(ctx, labels, values, "AVG(value) DESC")
}

func (a *Adapter) rank(ctx context.Context, labels []string, values []float64, order string) ([]domain.Rank, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM labels"); err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to clear labels: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO labels (seq, label, value) VALUES (?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range labels {
		var v sql.NullFloat64
		if values != nil {
			v = sql.NullFloat64{Float64: values[i], Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, l, v); err != nil {
			return nil, fmt.Errorf("sqlite adapter: failed to insert label %q: %w", l, err)
		}
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT label, COUNT(*), AVG(value)
		FROM labels
		GROUP BY label
		ORDER BY `+order+`, MIN(seq)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to rank labels: %w", err)
	}
	defer rows.Close()

	var ranks []domain.Rank
	for rows.Next() {
		var r domain.Rank
		var mean sql.NullFloat64
		if err := rows.Scan(&r.Label, &r.Count, &mean); err != nil {
			return nil, fmt.Errorf("sqlite adapter: failed to scan rank: %w", err)
		}
		r.Mean = mean.Float64
		ranks = append(ranks, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to iterate ranks: %w", err)
	}
	return ranks, nil
}

func nullableFeature(t domain.Track, name string) sql.NullFloat64 {
	if !t.Complete(name) {
		return sql.NullFloat64{}
	}
	v, _ := t.Features.Get(name)
	return sql.NullFloat64{Float64: v, Valid: true}
}

func leadingComma(cols []string) string {
	if len(cols) == 0 {
		return ""
	}
	return ", " + strings.Join(cols, ", ")
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		seq INTEGER PRIMARY KEY,
		genre TEXT NOT NULL,
		bucket INTEGER NOT NULL,
		danceability REAL,
		energy REAL,
		valence REAL,
		acousticness REAL,
		speechiness REAL,
		liveness REAL
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_group ON tracks (genre, bucket);

	CREATE TABLE IF NOT EXISTS labels (
		seq INTEGER PRIMARY KEY,
		label TEXT NOT NULL,
		value REAL
	);
	`
	_, err := a.db.Exec(query)
	return err
}
