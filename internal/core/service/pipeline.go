package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

// PipelineConfig tunes one pipeline instance.
type PipelineConfig struct {
	Matcher MatcherConfig
	// NormalizePerKm folds consumed_fuel / shipment_distance (liters per
	// km) instead of the raw fuel figure. Shipments with non-positive
	// distance are skipped under this mode and counted in the report.
	NormalizePerKm bool
}

// Pipeline implements ports.PipelineService: the single-pass batch that
// joins shipments with weather, buckets temperatures, and replaces the
// fact table with the finalized averages.
type Pipeline struct {
	shipments ports.ShipmentSource
	weather   ports.WeatherSource
	cities    ports.CitySource // optional, for the matcher's coordinate fallback
	facts     ports.FactStore
	lock      ports.RunLock // optional
	scheme    domain.BucketScheme
	cfg       PipelineConfig
	log       zerolog.Logger
}

var _ ports.PipelineService = (*Pipeline)(nil)

func NewPipeline(
	shipments ports.ShipmentSource,
	weather ports.WeatherSource,
	cities ports.CitySource,
	facts ports.FactStore,
	lock ports.RunLock,
	scheme domain.BucketScheme,
	cfg PipelineConfig,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		shipments: shipments,
		weather:   weather,
		cities:    cities,
		facts:     facts,
		lock:      lock,
		scheme:    scheme,
		cfg:       cfg,
		log:       log,
	}
}

// Run executes one batch. Local failures (a shipment with no usable
// observation, an input row the source rejected) are counted and never
// abort the run; only persistence failures and loads that produce no
// records at all are fatal. Reruns on unchanged inputs recompute from scratch
// and produce an identical fact table.
//
// When either input snapshot is empty the run reports EmptyInput and skips
// the fact write entirely, so a misfired run against missing exports cannot
// wipe a previously computed fact table.
func (p *Pipeline) Run(ctx context.Context) (*ports.RunReport, error) {
	report := &ports.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := p.log.With().Str("run_id", report.RunID).Logger()

	if p.lock != nil {
		ok, err := p.lock.Acquire(ctx, report.RunID)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return nil, domain.ErrRunInProgress
		}
		defer func() {
			if err := p.lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("failed to release run lock")
			}
		}()
	}

	// A source error alongside records means the source skipped rows it
	// could not parse. Rejected rows are a data-quality signal like an
	// unmatched shipment; only a load that yields nothing is fatal.
	shipments, err := p.shipments.ListShipments(ctx)
	if err != nil {
		if len(shipments) == 0 {
			return nil, fmt.Errorf("load shipments: %w", err)
		}
		n := countRowErrors(err)
		report.RowErrors += n
		log.Warn().Err(err).Int("rows", n).Msg("shipment source rejected rows")
	}
	observations, err := p.weather.ListObservations(ctx)
	if err != nil {
		if len(observations) == 0 {
			return nil, fmt.Errorf("load weather observations: %w", err)
		}
		n := countRowErrors(err)
		report.RowErrors += n
		log.Warn().Err(err).Int("rows", n).Msg("weather source rejected rows")
	}
	report.Shipments = len(shipments)

	var cities []domain.City
	if p.cities != nil && p.cfg.Matcher.FallbackRadiusKm > 0 {
		cities, err = p.cities.ListCities(ctx)
		if err != nil {
			if len(cities) == 0 {
				return nil, fmt.Errorf("load city gazetteer: %w", err)
			}
			n := countRowErrors(err)
			report.RowErrors += n
			log.Warn().Err(err).Int("rows", n).Msg("city source rejected rows")
		}
	}

	log.Info().
		Int("shipments", len(shipments)).
		Int("observations", len(observations)).
		Msg("pipeline run started")

	if len(shipments) == 0 || len(observations) == 0 {
		report.EmptyInput = true
		report.Facts = []domain.FactRow{}
		report.FinishedAt = time.Now().UTC()
		log.Warn().Msg("empty input; fact table left untouched")
		return report, nil
	}

	matcher := NewMatcher(observations, cities, p.cfg.Matcher)
	agg := NewAggregator(p.scheme)

	for _, s := range shipments {
		obs, err := matcher.Match(s)
		if err != nil {
			if errors.Is(err, domain.ErrNoObservation) {
				report.Unmatched++
				log.Debug().
					Str("truck_id", s.TruckID).
					Str("start_location", s.StartLocation).
					Msg("shipment excluded: no weather observation")
				continue
			}
			return nil, err
		}

		value := s.FuelConsumed
		if p.cfg.NormalizePerKm {
			if s.DistanceKm <= 0 {
				report.Skipped++
				continue
			}
			value = s.FuelConsumed / s.DistanceKm
		}

		agg.Fold(p.scheme.Bucket(obs.TemperatureC), value)
		report.Matched++
	}

	report.Facts = agg.Finalize()

	if err := p.facts.ReplaceAll(ctx, report.Facts); err != nil {
		return nil, fmt.Errorf("write fact table: %w", err)
	}

	report.FinishedAt = time.Now().UTC()
	log.Info().
		Int("matched", report.Matched).
		Int("unmatched", report.Unmatched).
		Int("skipped", report.Skipped).
		Int("row_errors", report.RowErrors).
		Int("fact_rows", len(report.Facts)).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("pipeline run finished")

	return report, nil
}

// countRowErrors reports how many row failures a source error carries.
// Sources accumulate per-row errors with errors.Join, possibly wrapped.
func countRowErrors(err error) int {
	for err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			return len(joined.Unwrap())
		}
		err = errors.Unwrap(err)
	}
	return 1
}
