package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"bus-schedule/internal/api"
	"bus-schedule/internal/catalog"
	"bus-schedule/internal/config"
	"bus-schedule/internal/db"
	"bus-schedule/internal/metrics"
	"bus-schedule/internal/overrides"
	"bus-schedule/internal/schedule"
	"bus-schedule/internal/session"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if os.Getenv("DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:           "bus-schedule",
		Usage:          "Campus bus timetable with next-stop countdowns",
		DefaultCommand: "serve",

		Commands: []*cli.Command{
			serveCommand(),
			routesCommand(),
			boardCommand(),
			inspectCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*schedule.Catalog, error) {
	switch cfg.CatalogSource {
	case config.SourceFile:
		return catalog.LoadFile(cfg.CatalogPath)
	case config.SourcePostgres:
		cat, err := db.LoadCatalog(ctx, cfg.DatabaseURL, cfg.CatalogDB)
		if err != nil {
			return nil, err
		}
		if err := catalog.Validate(cat); err != nil {
			return nil, err
		}
		return cat, nil
	default:
		return catalog.Bundled()
	}
}

func loadOverrides(cfg *config.Config) (*overrides.Store, error) {
	if cfg.OverridesPath == "" {
		return overrides.NewStore(), nil
	}
	store, err := overrides.LoadFile(cfg.OverridesPath)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	log.Info().Str("path", cfg.OverridesPath).Int("routes", store.Len()).Msg("Loaded special conditions")
	return store, nil
}

// Adapters return untyped nil when metrics are disabled so the packages can
// test against nil.

func sessionMetrics(c *metrics.Collector) session.Metrics {
	if c == nil {
		return nil
	}
	return c
}

func feedMetrics(c *metrics.Collector) overrides.FeedMetrics {
	if c == nil {
		return nil
	}
	return c
}

func apiMetrics(c *metrics.Collector) api.Metrics {
	if c == nil {
		return nil
	}
	return c
}
