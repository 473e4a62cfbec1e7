// Command collector fetches one weather observation per city for a single
// date, lands the results in MongoDB, and refreshes the weather CSV export
// consumed by the file-based pipeline.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/service"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/config"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/csvfile"
	mongodb "github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/db/mongo"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/weather"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var (
		dateFlag   = flag.String("date", "", "date to collect, YYYY-MM-DD (default: today minus COLLECTOR_LAG_DAYS)")
		citiesPath = flag.String("cities", filepath.Join(cfg.DataDir, "cities.csv"), "city gazetteer CSV")
		exportPath = flag.String("export", filepath.Join(cfg.DataDir, "weather.csv"), "observation CSV export (empty to skip)")
	)
	flag.Parse()

	lg := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	date := time.Now().UTC().AddDate(0, 0, -cfg.Collector.LagDays).Truncate(24 * time.Hour)
	if *dateFlag != "" {
		date, err = time.ParseInLocation("2006-01-02", *dateFlag, time.UTC)
		if err != nil {
			lg.Fatal().Str("date", *dateFlag).Msg("date must be YYYY-MM-DD")
		}
	}

	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		lg.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	obsRepo := mongodb.NewObservationRepository(mongoDB)
	if err := obsRepo.EnsureIndexes(ctx); err != nil {
		lg.Fatal().Err(err).Msg("observation index creation failed")
	}

	provider := weather.NewOpenMeteoClient(cfg.Weather.BaseURL, &http.Client{Timeout: cfg.Weather.Timeout})
	collector := service.NewCollector(provider, obsRepo, csvfile.NewCityFileSource(*citiesPath), service.CollectorConfig{
		TargetHour: cfg.Collector.TargetHour,
		Workers:    cfg.Collector.Workers,
	}, lg)

	report, err := collector.Collect(ctx, date)
	if err != nil {
		lg.Fatal().Err(err).Msg("collection failed")
	}

	lg.Info().
		Time("date", report.Date).
		Int("cities", report.Cities).
		Int("collected", report.Collected).
		Int("skipped_no_coordinates", report.SkippedNoCoords).
		Int("failed", report.Failed).
		Msg("collection finished")

	if *exportPath == "" {
		return
	}
	if err := exportObservations(ctx, obsRepo, *exportPath); err != nil {
		lg.Fatal().Err(err).Msg("observation export failed")
	}
	lg.Info().Str("path", *exportPath).Msg("observation export written")
}

func exportObservations(ctx context.Context, repo *mongodb.ObservationRepository, path string) error {
	obs, err := repo.ListObservations(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csvfile.WriteObservationsCSV(f, obs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
