// Package config resolves run settings from defaults, an optional YAML file,
// an optional .env file and CHARTPREP_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/chartprep/internal/core/domain"
	"github.com/ewilliams-labs/chartprep/internal/core/services"
)

// Aggregator backends.
const (
	AggregatorMemory = "memory"
	AggregatorSQLite = "sqlite"
)

// EnvConfigFile names the variable consulted when no config file is given.
const EnvConfigFile = "CHARTPREP_CONFIG"

// Artifact file names inside OutputDir.
const (
	RadarFile  = "radar_data.json"
	SankeyFile = "sankey_tracks.json"
)

// Config holds every path and option of a run.
type Config struct {
	HighInput       string   `yaml:"high_input"`
	LowInput        string   `yaml:"low_input"`
	CombinedOutputs []string `yaml:"combined_outputs"`
	CombinedInput   string   `yaml:"combined_input"`
	OutputDir       string   `yaml:"output_dir"`
	Aggregator      string   `yaml:"aggregator"`
	Features        []string `yaml:"features"`
	DropColumns     []string `yaml:"drop_columns"`

	Radar struct {
		TopGenres int `yaml:"top_genres"`
	} `yaml:"radar"`

	Genres struct {
		TopN int `yaml:"top_n"`
	} `yaml:"genres"`

	Sankey struct {
		MinYear    int `yaml:"min_year"`
		TopArtists int `yaml:"top_artists"`
	} `yaml:"sankey"`
}

// Default returns the conventional rawdata/ and cleandata/ layout.
func Default() Config {
	cfg := Config{
		HighInput:       filepath.Join("rawdata", "high_popularity_spotify_data.csv"),
		LowInput:        filepath.Join("rawdata", "low_popularity_spotify_data.csv"),
		CombinedOutputs: []string{"combined_spotify_data.csv", filepath.Join("cleandata", "combined_spotify_data.csv")},
		CombinedInput:   filepath.Join("cleandata", "combined_spotify_data.csv"),
		OutputDir:       "cleandata",
		Aggregator:      AggregatorMemory,
		Features:        append([]string(nil), domain.FeatureNames...),
		DropColumns:     append([]string(nil), services.DefaultDropColumns...),
	}
	cfg.Genres.TopN = services.DefaultTopGenres
	cfg.Sankey.MinYear = services.DefaultMinYear
	return cfg
}

// Load builds a Config. configFile falls back to $CHARTPREP_CONFIG; an empty
// value skips the YAML layer. A missing envFile is ignored.
func Load(configFile, envFile string) (Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = os.Getenv(EnvConfigFile)
	}
	if configFile != "" {
		if err := loadYAMLFile(configFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
		}
		if m != nil {
			dotenv = m
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = splitList(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: invalid integer %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("CHARTPREP_HIGH_INPUT", &cfg.HighInput)
	str("CHARTPREP_LOW_INPUT", &cfg.LowInput)
	list("CHARTPREP_COMBINED_OUTPUTS", &cfg.CombinedOutputs)
	str("CHARTPREP_COMBINED_INPUT", &cfg.CombinedInput)
	str("CHARTPREP_OUTPUT_DIR", &cfg.OutputDir)
	str("CHARTPREP_AGGREGATOR", &cfg.Aggregator)
	list("CHARTPREP_FEATURES", &cfg.Features)

	for key, dst := range map[string]*int{
		"CHARTPREP_RADAR_TOP_GENRES":   &cfg.Radar.TopGenres,
		"CHARTPREP_GENRES_TOP_N":       &cfg.Genres.TopN,
		"CHARTPREP_SANKEY_MIN_YEAR":    &cfg.Sankey.MinYear,
		"CHARTPREP_SANKEY_TOP_ARTISTS": &cfg.Sankey.TopArtists,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first setting that cannot produce a run.
func (c Config) Validate() error {
	switch c.Aggregator {
	case AggregatorMemory, AggregatorSQLite:
	default:
		return fmt.Errorf("config: unknown aggregator %q (want %s or %s)", c.Aggregator, AggregatorMemory, AggregatorSQLite)
	}

	if len(c.Features) == 0 {
		return errors.New("config: no features selected")
	}
	if err := domain.ValidateFeatures(c.Features); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for name, v := range map[string]int{
		"radar.top_genres":   c.Radar.TopGenres,
		"genres.top_n":       c.Genres.TopN,
		"sankey.top_artists": c.Sankey.TopArtists,
	} {
		if v < 0 {
			return fmt.Errorf("config: %s must not be negative, got %d", name, v)
		}
	}

	paths := map[string]string{
		"high_input":     c.HighInput,
		"low_input":      c.LowInput,
		"combined_input": c.CombinedInput,
		"output_dir":     c.OutputDir,
	}
	for name, p := range paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("config: %s must not be empty", name)
		}
	}
	if len(c.CombinedOutputs) == 0 {
		return errors.New("config: combined_outputs must not be empty")
	}
	for _, p := range c.CombinedOutputs {
		if strings.TrimSpace(p) == "" {
			return errors.New("config: combined_outputs contains an empty path")
		}
	}
	return nil
}

// RadarPath is where the radar artifact is written.
func (c Config) RadarPath() string { return filepath.Join(c.OutputDir, RadarFile) }

// SankeyPath is where the sankey extract is written.
func (c Config) SankeyPath() string { return filepath.Join(c.OutputDir, SankeyFile) }
