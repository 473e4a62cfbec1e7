package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

const defaultCollectorWorkers = 4

// CollectorConfig tunes one collector instance.
type CollectorConfig struct {
	// TargetHour is the UTC hour (0-23) whose reading represents the day.
	// When no reading exists at that exact hour, the one closest to it is
	// used.
	TargetHour int
	// Workers bounds concurrent provider fetches.
	Workers int
}

// Collector implements ports.CollectorService: for every city with known
// coordinates it fetches the hourly weather for a date, reduces the day to
// a single representative observation, and upserts the results into the
// observation store.
type Collector struct {
	provider ports.WeatherProvider
	sink     ports.ObservationSink
	cities   ports.CitySource
	cfg      CollectorConfig
	log      zerolog.Logger
}

var _ ports.CollectorService = (*Collector)(nil)

func NewCollector(provider ports.WeatherProvider, sink ports.ObservationSink, cities ports.CitySource, cfg CollectorConfig, log zerolog.Logger) *Collector {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultCollectorWorkers
	}
	return &Collector{provider: provider, sink: sink, cities: cities, cfg: cfg, log: log}
}

// Collect runs one collection pass for date. Per-city fetch failures are
// counted and logged; they never abort the pass. The sink write is the only
// fatal step.
func (c *Collector) Collect(ctx context.Context, date time.Time) (*ports.CollectReport, error) {
	cities, err := c.cities.ListCities(ctx)
	if err != nil {
		// Rows the source rejected are logged and the pass continues with
		// the cities that parsed; only an empty load is fatal.
		if len(cities) == 0 {
			return nil, fmt.Errorf("load cities: %w", err)
		}
		c.log.Warn().Err(err).Msg("city source rejected rows")
	}

	report := &ports.CollectReport{Date: date, Cities: len(cities)}

	jobs := make(chan domain.City)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		collected []domain.WeatherObservation
		failed    int
	)

	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for city := range jobs {
				obs, err := c.collectCity(ctx, city, date)
				mu.Lock()
				if err != nil {
					failed++
					c.log.Error().Err(err).Str("city", city.Name).Msg("weather fetch failed")
				} else {
					collected = append(collected, obs)
				}
				mu.Unlock()
			}
		}()
	}

	for _, city := range cities {
		if !city.HasCoordinates {
			report.SkippedNoCoords++
			c.log.Warn().Str("city", city.Name).Msg("skipping city without coordinates")
			continue
		}
		jobs <- city
	}
	close(jobs)
	wg.Wait()

	report.Failed = failed
	report.Collected = len(collected)

	if len(collected) > 0 {
		if err := c.sink.UpsertObservations(ctx, collected); err != nil {
			return nil, fmt.Errorf("store observations: %w", err)
		}
	}

	c.log.Info().
		Int("cities", report.Cities).
		Int("collected", report.Collected).
		Int("skipped", report.SkippedNoCoords).
		Int("failed", report.Failed).
		Str("date", date.Format("2006-01-02")).
		Msg("weather collection finished")

	return report, nil
}

// collectCity fetches the day's hourly readings for one city and picks the
// one representing the target hour.
func (c *Collector) collectCity(ctx context.Context, city domain.City, date time.Time) (domain.WeatherObservation, error) {
	hourly, err := c.provider.FetchDay(ctx, city, date)
	if err != nil {
		return domain.WeatherObservation{}, err
	}
	if len(hourly) == 0 {
		return domain.WeatherObservation{}, fmt.Errorf("no hourly data for %s on %s", city.Name, date.Format("2006-01-02"))
	}

	best := hourly[0]
	bestGap := hourGap(best.Timestamp, c.cfg.TargetHour)
	for _, o := range hourly[1:] {
		if gap := hourGap(o.Timestamp, c.cfg.TargetHour); gap < bestGap {
			best, bestGap = o, gap
		}
	}
	return best, nil
}

func hourGap(ts time.Time, targetHour int) int {
	gap := ts.UTC().Hour() - targetHour
	if gap < 0 {
		gap = -gap
	}
	return gap
}
