// Command restore downloads the operational database backup, restores it
// into Postgres with pg_restore, and exports the shipment and city tables
// to CSV for the file-based pipeline.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/backup"
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
		urlFlag = flag.String("url", cfg.Backup.URL, "backup .bkp URL")
		outDir  = flag.String("out", cfg.DataDir, "directory for CSV exports")
	)
	flag.Parse()

	lg := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if *urlFlag == "" {
		lg.Fatal().Msg("backup URL required (BACKUP_URL or -url)")
	}

	pgCfg := postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}

	restorer := backup.NewRestorer(pgCfg, lg)

	bkpPath, err := restorer.Download(ctx, *urlFlag)
	if err != nil {
		lg.Fatal().Err(err).Msg("backup download failed")
	}
	defer os.Remove(bkpPath)

	if err := restorer.Restore(ctx, bkpPath); err != nil {
		lg.Fatal().Err(err).Msg("restore failed")
	}

	// Export the restored tables for the file-based pipeline.
	pg, err := postgres.Connect(ctx, pgCfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pg.Close()

	repo := postgres.NewShipmentRepository(pg)

	shipments, err := repo.ListShipments(ctx)
	if err != nil {
		lg.Fatal().Err(err).Msg("read shipments failed")
	}
	cities, err := repo.ListCities(ctx)
	if err != nil {
		lg.Fatal().Err(err).Msg("read cities failed")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		lg.Fatal().Err(err).Msg("create export directory failed")
	}

	shipmentsPath := filepath.Join(*outDir, "shipments.csv")
	if err := writeShipments(shipmentsPath, shipments); err != nil {
		lg.Fatal().Err(err).Msg("shipment export failed")
	}
	citiesPath := filepath.Join(*outDir, "cities.csv")
	if err := writeCities(citiesPath, cities); err != nil {
		lg.Fatal().Err(err).Msg("city export failed")
	}

	lg.Info().
		Int("shipments", len(shipments)).
		Int("cities", len(cities)).
		Str("dir", *outDir).
		Msg("restore and export finished")
}

func writeShipments(path string, records []domain.ShipmentRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csvfile.WriteShipmentsCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeCities(path string, cities []domain.City) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csvfile.WriteCitiesCSV(f, cities); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
