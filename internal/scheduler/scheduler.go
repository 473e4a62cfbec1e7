// Package scheduler drives the recurring weather collection job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

// Config controls when the daily collection fires and how far behind
// today it targets. The archive API publishes observations with a delay,
// so the job collects for today minus LagDays.
type Config struct {
	Schedule string
	LagDays  int
}

type Scheduler struct {
	cron      *gocron.Scheduler
	collector ports.CollectorService
	cfg       Config
	log       zerolog.Logger
}

func New(collector ports.CollectorService, cfg Config, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      gocron.NewScheduler(time.UTC),
		collector: collector,
		cfg:       cfg,
		log:       log,
	}
}

// Start registers the daily job and begins running it in the background.
func (s *Scheduler) Start() error {
	_, err := s.cron.Every(1).Day().At(s.cfg.Schedule).Do(s.runCollection)
	if err != nil {
		return fmt.Errorf("schedule collection job: %w", err)
	}

	s.cron.StartAsync()
	s.log.Info().Str("at", s.cfg.Schedule).Int("lag_days", s.cfg.LagDays).
		Msg("collection schedule started")
	return nil
}

// Stop blocks until a running job finishes, then halts the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runCollection() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	date := time.Now().UTC().AddDate(0, 0, -s.cfg.LagDays).Truncate(24 * time.Hour)

	report, err := s.collector.Collect(ctx, date)
	if err != nil {
		s.log.Error().Err(err).Time("date", date).Msg("scheduled collection failed")
		return
	}

	s.log.Info().
		Time("date", report.Date).
		Int("cities", report.Cities).
		Int("collected", report.Collected).
		Int("failed", report.Failed).
		Msg("scheduled collection finished")
}
