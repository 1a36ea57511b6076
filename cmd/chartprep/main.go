package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/ewilliams-labs/chartprep/internal/adapters/filestore"
	"github.com/ewilliams-labs/chartprep/internal/adapters/memory"
	"github.com/ewilliams-labs/chartprep/internal/adapters/sqlite"
	"github.com/ewilliams-labs/chartprep/internal/config"
	"github.com/ewilliams-labs/chartprep/internal/core/ports"
	"github.com/ewilliams-labs/chartprep/internal/core/services"
)

// ErrUnknownStage is returned for a stage argument that names no stage.
var ErrUnknownStage = errors.New("unknown stage")

const stageAll = "all"

type stageFunc func(ctx context.Context, p *services.Pipeline, cfg config.Config) error

// stageOrder is the order `all` runs in; later stages read the combined dataset.
var stageOrder = []string{"combine", "radar", "genres", "sankey"}

var stages = map[string]stageFunc{
	"combine": func(ctx context.Context, p *services.Pipeline, cfg config.Config) error {
		_, err := p.Combine(ctx, services.CombineRequest{
			HighPath:    cfg.HighInput,
			LowPath:     cfg.LowInput,
			Outputs:     cfg.CombinedOutputs,
			DropColumns: cfg.DropColumns,
		})
		return err
	},
	"radar": func(ctx context.Context, p *services.Pipeline, cfg config.Config) error {
		_, err := p.Radar(ctx, services.RadarRequest{
			Input:     cfg.CombinedInput,
			Output:    cfg.RadarPath(),
			Features:  cfg.Features,
			TopGenres: cfg.Radar.TopGenres,
		})
		return err
	},
	"genres": func(ctx context.Context, p *services.Pipeline, cfg config.Config) error {
		_, err := p.GenreExtracts(ctx, services.GenreRequest{
			Input:     cfg.CombinedInput,
			OutputDir: cfg.OutputDir,
			TopN:      cfg.Genres.TopN,
		})
		return err
	},
	"sankey": func(ctx context.Context, p *services.Pipeline, cfg config.Config) error {
		_, err := p.Sankey(ctx, services.SankeyRequest{
			Input:      cfg.CombinedInput,
			Output:     cfg.SankeyPath(),
			MinYear:    cfg.Sankey.MinYear,
			TopArtists: cfg.Sankey.TopArtists,
		})
		return err
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("chartprep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	envFile := fs.String("env-file", ".env", "dotenv file; ignored when missing")
	aggregator := fs.String("aggregator", "", "aggregation backend: memory or sqlite (overrides config)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: chartprep [flags] [%s|%s]\n", strings.Join(stageOrder, "|"), stageAll)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	stage := stageAll
	switch fs.NArg() {
	case 0:
	case 1:
		stage = fs.Arg(0)
	default:
		fs.Usage()
		return fmt.Errorf("expected at most one stage, got %d", fs.NArg())
	}
	if _, ok := stages[stage]; !ok && stage != stageAll {
		fs.Usage()
		return fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		return err
	}
	if *aggregator != "" {
		cfg.Aggregator = *aggregator
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	runID := uuid.NewString()
	log.SetOutput(stderr)
	log.SetPrefix("[" + runID[:8] + "] ")
	log.Printf("chartprep: run %s, stage %s, aggregator %s", runID, stage, cfg.Aggregator)

	agg, closeAgg, err := newAggregator(cfg.Aggregator)
	if err != nil {
		return err
	}
	defer closeAgg()

	pipeline := services.NewPipeline(filestore.New(""), agg)

	if stage != stageAll {
		if err := stages[stage](ctx, pipeline, cfg); err != nil {
			return fmt.Errorf("%s: %w", stage, err)
		}
		return nil
	}
	return runAll(ctx, pipeline, cfg, stderr)
}

func runAll(ctx context.Context, p *services.Pipeline, cfg config.Config, stderr io.Writer) error {
	bar := progressbar.NewOptions(len(stageOrder),
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetDescription("chartprep"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(stderr) }),
	)

	for _, name := range stageOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		bar.Describe(name)
		if err := stages[name](ctx, p, cfg); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := bar.Add(1); err != nil {
			log.Printf("WARN chartprep: progress: %v", err)
		}
	}
	return nil
}

func newAggregator(kind string) (ports.Aggregator, func() error, error) {
	switch kind {
	case config.AggregatorSQLite:
		a, err := sqlite.NewAdapter(":memory:")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize aggregator: %w", err)
		}
		return a, a.Close, nil
	case config.AggregatorMemory:
		return memory.NewAggregator(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown aggregator: %s", kind)
	}
}
