// Command pipeline runs the join-and-aggregate batch once and exits.
// Inputs are the CSV exports produced by the restore and collector
// commands; output is the fact_fuel_consumption table in Postgres.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/service"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/config"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/csvfile"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/db/postgres"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var (
		shipmentsPath = flag.String("shipments", filepath.Join(cfg.DataDir, "shipments.csv"), "shipment export CSV")
		weatherPath   = flag.String("weather", filepath.Join(cfg.DataDir, "weather.csv"), "weather observation CSV")
		citiesPath    = flag.String("cities", filepath.Join(cfg.DataDir, "cities.csv"), "city gazetteer CSV")
	)
	flag.Parse()

	lg := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	scheme, err := domain.NewBucketScheme(cfg.Bucket.FloorC, cfg.Bucket.CeilingC, cfg.Bucket.WidthC)
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid bucket configuration")
	}

	pg, err := postgres.Connect(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		lg.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pg.Close()

	factRepo := postgres.NewFactRepository(pg)
	if err := factRepo.EnsureSchema(ctx); err != nil {
		lg.Fatal().Err(err).Msg("fact table migration failed")
	}

	pipeline := service.NewPipeline(
		csvfile.NewShipmentFileSource(*shipmentsPath),
		csvfile.NewObservationFileSource(*weatherPath),
		csvfile.NewCityFileSource(*citiesPath),
		factRepo,
		nil, // single-shot invocation, no cross-process lock
		scheme,
		service.PipelineConfig{
			Matcher: service.MatcherConfig{
				MaxTimeGap:       cfg.Match.MaxTimeGap,
				FallbackRadiusKm: cfg.Match.FallbackRadiusKm,
			},
			NormalizePerKm: cfg.Pipeline.NormalizePerKm,
		},
		lg,
	)

	report, err := pipeline.Run(ctx)
	if err != nil {
		lg.Fatal().Err(err).Msg("pipeline run failed")
	}

	lg.Info().
		Str("run_id", report.RunID).
		Int("shipments", report.Shipments).
		Int("matched", report.Matched).
		Int("unmatched", report.Unmatched).
		Int("row_errors", report.RowErrors).
		Int("facts", len(report.Facts)).
		Bool("empty_input", report.EmptyInput).
		Msg("pipeline run finished")
}
