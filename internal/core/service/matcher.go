package service

import (
	"math"
	"sort"
	"time"

	"github.com/umahmood/haversine"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

// MatcherConfig tunes how shipments are correlated with observations.
type MatcherConfig struct {
	// MaxTimeGap caps the acceptable distance between a shipment start and
	// the chosen observation. Zero means unbounded, which mirrors the
	// plain nearest-by-time behaviour.
	MaxTimeGap time.Duration
	// FallbackRadiusKm enables matching against the geographically nearest
	// observed city when the shipment's own start city has no observations.
	// Requires gazetteer coordinates for the start city. Zero disables the
	// fallback: such shipments are reported as unmatched.
	FallbackRadiusKm float64
}

// Matcher finds, for each shipment, the weather observation judged most
// relevant to it. Shipments and weather share no surrogate key, so the
// correlation is inferred: observations are filtered by the shipment's
// start city, then the one closest in time to the shipment start wins.
// Ties resolve to the earliest timestamp.
//
// A Matcher is built once per run from an immutable observation snapshot
// and is safe for concurrent Match calls.
type Matcher struct {
	byCity    map[string][]domain.WeatherObservation // sorted by Timestamp asc
	gazetteer map[string]domain.City
	cfg       MatcherConfig
}

// NewMatcher indexes the observation snapshot. gazetteer may be nil when
// the coordinate fallback is disabled.
func NewMatcher(observations []domain.WeatherObservation, cities []domain.City, cfg MatcherConfig) *Matcher {
	byCity := make(map[string][]domain.WeatherObservation)
	for _, o := range observations {
		key := domain.NormalizeCity(o.City)
		byCity[key] = append(byCity[key], o)
	}
	for _, group := range byCity {
		sort.Slice(group, func(i, j int) bool { return group[i].Timestamp.Before(group[j].Timestamp) })
	}

	gaz := make(map[string]domain.City, len(cities))
	for _, c := range cities {
		if c.HasCoordinates {
			gaz[domain.NormalizeCity(c.Name)] = c
		}
	}

	return &Matcher{byCity: byCity, gazetteer: gaz, cfg: cfg}
}

// Match returns the best observation for the shipment, or
// domain.ErrNoObservation when none qualifies. The error is local to the
// shipment: callers count it and continue.
func (m *Matcher) Match(s domain.ShipmentRecord) (domain.WeatherObservation, error) {
	key := domain.NormalizeCity(s.StartLocation)
	candidates := m.byCity[key]
	if len(candidates) == 0 && m.cfg.FallbackRadiusKm > 0 {
		candidates = m.nearestCityCandidates(key)
	}
	if len(candidates) == 0 {
		return domain.WeatherObservation{}, domain.ErrNoObservation
	}

	best := candidates[0]
	bestGap := absDuration(best.Timestamp.Sub(s.StartTime))
	for _, o := range candidates[1:] {
		gap := absDuration(o.Timestamp.Sub(s.StartTime))
		// Strict less-than keeps the earliest timestamp on ties, because
		// candidates are sorted ascending.
		if gap < bestGap {
			best, bestGap = o, gap
		}
	}

	if m.cfg.MaxTimeGap > 0 && bestGap > m.cfg.MaxTimeGap {
		return domain.WeatherObservation{}, domain.ErrNoObservation
	}
	return best, nil
}

// nearestCityCandidates finds the observed city geographically closest to
// the shipment's start city, within the configured radius. Each observed
// city's coordinates are taken from its first (earliest) observation.
func (m *Matcher) nearestCityCandidates(startCity string) []domain.WeatherObservation {
	origin, ok := m.gazetteer[startCity]
	if !ok {
		return nil
	}
	from := haversine.Coord{Lat: origin.Latitude, Lon: origin.Longitude}

	// Iterate cities in sorted order so distance ties resolve the same way
	// on every run.
	keys := make([]string, 0, len(m.byCity))
	for k := range m.byCity {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best []domain.WeatherObservation
	bestKm := math.Inf(1)
	for _, k := range keys {
		o := m.byCity[k][0]
		_, km := haversine.Distance(from, haversine.Coord{Lat: o.Latitude, Lon: o.Longitude})
		if km <= m.cfg.FallbackRadiusKm && km < bestKm {
			best, bestKm = m.byCity[k], km
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
