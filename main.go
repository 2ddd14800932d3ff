package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/iancoleman/strcase"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pdok/osmgpkg/config"
	"github.com/pdok/osmgpkg/geometry"
	"github.com/pdok/osmgpkg/layer"
	"github.com/pdok/osmgpkg/processing"
	"github.com/pdok/osmgpkg/writers"
)

const INPUT string = `input`
const OUTPUT string = `output`
const LAYERS string = `layers`
const OVERWRITE string = `overwrite`
const BATCHSIZE string = `batchsize`
const CACHESIZE string = `cachesize`
const NOTRANSACTIONS string = `no-transactions`
const SPATIALINDEX string = `spatial-index`
const CONFIG string = `config`
const PROGRESS string = `progress`
const VERBOSE string = `verbose`

//nolint:funlen
func main() {
	app := cli.NewApp()
	app.Name = "osmgpkg"
	app.Usage = "Converts OpenStreetMap data into GeoPackage layers"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     INPUT,
			Aliases:  []string{"i"},
			Usage:    "OSM input file, .osm (XML) or .osm.pbf",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(INPUT)},
		},
		&cli.StringFlag{
			Name:    OUTPUT,
			Aliases: []string{"o"},
			Usage:   "Output directory, one GPKG per layer is written into it. Created if it doesn't exist",
			Value:   ".",
			EnvVars: []string{strcase.ToScreamingSnake(OUTPUT)},
		},
		&cli.StringFlag{
			Name:    LAYERS,
			Aliases: []string{"l"},
			Usage:   "Comma separated layers to write, any of: " + strings.Join(writers.Names(), ", "),
			Value:   strings.Join(writers.Names(), ","),
			EnvVars: []string{strcase.ToScreamingSnake(LAYERS)},
		},
		&cli.BoolFlag{
			Name:    OVERWRITE,
			Usage:   "Overwrite a target GPKG if it exists",
			EnvVars: []string{strcase.ToScreamingSnake(OVERWRITE)},
		},
		&cli.IntFlag{
			Name:    BATCHSIZE,
			Aliases: []string{"b"},
			Usage:   "Batch size, a transaction is committed once more features than this went into it",
			Value:   layer.DefaultBatchSize,
			EnvVars: []string{strcase.ToScreamingSnake(BATCHSIZE)},
		},
		&cli.IntFlag{
			Name:    CACHESIZE,
			Usage:   "SQLite page cache in MiB",
			Value:   layer.DefaultCacheSize,
			EnvVars: []string{strcase.ToScreamingSnake(CACHESIZE)},
		},
		&cli.BoolFlag{
			Name:    NOTRANSACTIONS,
			Usage:   "Insert every feature on its own instead of in batched transactions",
			EnvVars: []string{strcase.ToScreamingSnake(NOTRANSACTIONS)},
		},
		&cli.BoolFlag{
			Name:    SPATIALINDEX,
			Usage:   "Build an RTree spatial index after writing each layer",
			EnvVars: []string{strcase.ToScreamingSnake(SPATIALINDEX)},
		},
		&cli.StringFlag{
			Name:    CONFIG,
			Aliases: []string{"c"},
			Usage:   "JSON config file. Flags that are set take precedence",
			EnvVars: []string{strcase.ToScreamingSnake(CONFIG)},
		},
		&cli.BoolFlag{
			Name:    PROGRESS,
			Usage:   "Show a progress spinner",
			EnvVars: []string{strcase.ToScreamingSnake(PROGRESS)},
		},
		&cli.BoolFlag{
			Name:    VERBOSE,
			Aliases: []string{"v"},
			Usage:   "Debug logging",
			EnvVars: []string{strcase.ToScreamingSnake(VERBOSE)},
		},
	}

	app.Before = func(c *cli.Context) error {
		if c.Bool(VERBOSE) {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
		}
		return nil
	}

	app.Action = func(c *cli.Context) error {
		logger := zap.L()
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		opts := cfg.LayerOptions()
		opts.Logger = logger

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, c.String(INPUT), cfg, opts, c.Bool(PROGRESS), logger)
	}

	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
	err := app.Run(os.Args)
	_ = zap.L().Sync()
	if err != nil {
		zap.L().Fatal("osmgpkg failed", zap.Error(err))
	}
}

// loadConfig starts from the config file, if any, and applies the flags that were set.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String(CONFIG); path != "" {
		var err error
		if cfg, err = config.Load(afero.NewOsFs(), path); err != nil {
			return cfg, err
		}
	}
	if c.IsSet(OUTPUT) || cfg.OutputDir == "" {
		cfg.OutputDir = c.String(OUTPUT)
	}
	if c.IsSet(LAYERS) || len(cfg.Layers) == 0 {
		cfg.Layers = strings.Split(c.String(LAYERS), ",")
	}
	if c.IsSet(OVERWRITE) {
		cfg.Overwrite = c.Bool(OVERWRITE)
	}
	if c.IsSet(BATCHSIZE) {
		cfg.BatchSize = c.Int(BATCHSIZE)
	}
	if c.IsSet(CACHESIZE) {
		cfg.CacheSize = c.Int(CACHESIZE)
	}
	if c.IsSet(NOTRANSACTIONS) {
		cfg.UseTransactions = !c.Bool(NOTRANSACTIONS)
	}
	if c.IsSet(SPATIALINDEX) {
		cfg.SpatialIndex = c.Bool(SPATIALINDEX)
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, input string, cfg config.Config, opts layer.Options, progress bool, logger *zap.Logger) error {
	f, err := os.Open(input)
	if err != nil {
		return errors.Wrap(err, "error opening OSM input")
	}
	defer f.Close()

	var source processing.Source
	if strings.EqualFold(filepath.Ext(input), ".pbf") {
		source = osmpbf.New(ctx, f, runtime.GOMAXPROCS(-1))
	} else {
		source = osmxml.New(ctx, f)
	}
	defer source.Close()

	root := layer.NewOutputRoot(afero.NewOsFs(), cfg.OutputDir)
	handlers, err := writers.New(cfg.Layers, root, geometry.NewFactory(), opts)
	if err != nil {
		return err
	}

	popts := processing.Options{Logger: logger}
	if progress {
		bar := progressbar.Default(-1, "reading "+filepath.Base(input))
		defer func() { _ = bar.Finish() }()
		popts.Progress = func(osm.Object) { _ = bar.Add(1) }
	}

	logger.Info("=== start converting ===", zap.String("input", input), zap.Strings("layers", cfg.Layers))
	stats, err := processing.Process(ctx, source, handlers, popts)
	if err != nil {
		return err
	}
	logger.Info("=== done converting ===",
		zap.Uint64("nodes", stats.Nodes),
		zap.Uint64("ways", stats.Ways),
		zap.Uint64("relations", stats.Relations))
	for _, h := range handlers {
		if l, ok := h.(writers.Layer); ok {
			s := l.Stats()
			logger.Info("layer written",
				zap.String("layer", l.Name()),
				zap.Uint64("features", s.Written),
				zap.Uint64("skipped", s.Skipped))
		}
	}
	return nil
}
