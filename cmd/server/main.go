// Command server runs the fuel facts API: fact table reads, on-demand
// pipeline and collection runs, and the daily collection schedule.
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/api"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/service"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/config"
	mongodb "github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/db/mongo"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/db/postgres"
	redisdb "github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/db/redis"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/infrastructure/weather"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/scheduler"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	lg.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting fuel facts server")

	scheme, err := domain.NewBucketScheme(cfg.Bucket.FloorC, cfg.Bucket.CeilingC, cfg.Bucket.WidthC)
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid bucket configuration")
	}

	// --- Postgres: fact table and restored operational schema ---
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
	shipmentRepo := postgres.NewShipmentRepository(pg)

	// --- Mongo: weather observation store ---
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

	// --- Redis: run lock ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		lg.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	runLock := redisdb.NewRunLock(rdb, cfg.Pipeline.LockTTL)

	// --- Core services ---
	pipeline := service.NewPipeline(
		shipmentRepo,
		obsRepo,
		shipmentRepo,
		factRepo,
		runLock,
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

	provider := weather.NewOpenMeteoClient(cfg.Weather.BaseURL, &http.Client{Timeout: cfg.Weather.Timeout})
	collector := service.NewCollector(provider, obsRepo, shipmentRepo, service.CollectorConfig{
		TargetHour: cfg.Collector.TargetHour,
		Workers:    cfg.Collector.Workers,
	}, lg)

	// --- Scheduler: daily collection ---
	sched := scheduler.New(collector, scheduler.Config{
		Schedule: cfg.Collector.Schedule,
		LagDays:  cfg.Collector.LagDays,
	}, lg)
	if err := sched.Start(); err != nil {
		lg.Fatal().Err(err).Msg("scheduler start failed")
	}
	defer sched.Stop()

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Facts:     factRepo,
		Pipeline:  pipeline,
		Collector: collector,
		Postgres:  pg,
		Mongo:     mongoDB,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Log:       lg,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			lg.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	lg.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("http shutdown error")
	}
}
