package service

import (
	"errors"
	"testing"
	"time"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

var t0 = time.Date(2025, 3, 24, 12, 0, 0, 0, time.UTC)

func obs(city string, ts time.Time, temp float64) domain.WeatherObservation {
	return domain.WeatherObservation{City: city, Timestamp: ts, TemperatureC: temp}
}

func shipment(startCity string, start time.Time) domain.ShipmentRecord {
	return domain.ShipmentRecord{
		TruckID:       "TRK-1",
		StartLocation: startCity,
		StartTime:     start,
		EndTime:       start.Add(4 * time.Hour),
	}
}

func TestMatcher_CityFilter(t *testing.T) {
	m := NewMatcher([]domain.WeatherObservation{
		obs("Monterrey", t0, 30),
		obs("Guadalajara", t0, 22),
	}, nil, MatcherConfig{})

	got, err := m.Match(shipment("Guadalajara", t0))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.City != "Guadalajara" {
		t.Fatalf("matched city %q, want Guadalajara", got.City)
	}
}

func TestMatcher_CityNormalization(t *testing.T) {
	m := NewMatcher([]domain.WeatherObservation{
		obs("Monterrey", t0, 30),
	}, nil, MatcherConfig{})

	if _, err := m.Match(shipment("  monterrey ", t0)); err != nil {
		t.Fatalf("expected case/space-insensitive city match, got %v", err)
	}
}

func TestMatcher_NearestByTime(t *testing.T) {
	m := NewMatcher([]domain.WeatherObservation{
		obs("NYC", t0.Add(-6*time.Hour), 5),
		obs("NYC", t0.Add(-30*time.Minute), 10),
		obs("NYC", t0.Add(2*time.Hour), 15),
	}, nil, MatcherConfig{})

	got, err := m.Match(shipment("NYC", t0))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !got.Timestamp.Equal(t0.Add(-30 * time.Minute)) {
		t.Fatalf("matched %v, want observation 30m before start", got.Timestamp)
	}
}

func TestMatcher_TieBreaksToEarliest(t *testing.T) {
	earlier := obs("NYC", t0.Add(-1*time.Hour), 10)
	later := obs("NYC", t0.Add(1*time.Hour), 20)

	// Same result regardless of input order.
	for _, input := range [][]domain.WeatherObservation{
		{earlier, later},
		{later, earlier},
	} {
		m := NewMatcher(input, nil, MatcherConfig{})
		got, err := m.Match(shipment("NYC", t0))
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if !got.Timestamp.Equal(earlier.Timestamp) {
			t.Fatalf("tie resolved to %v, want earliest %v", got.Timestamp, earlier.Timestamp)
		}
	}
}

func TestMatcher_NoObservationForCity(t *testing.T) {
	m := NewMatcher([]domain.WeatherObservation{
		obs("Monterrey", t0, 30),
	}, nil, MatcherConfig{})

	_, err := m.Match(shipment("Cancun", t0))
	if !errors.Is(err, domain.ErrNoObservation) {
		t.Fatalf("expected ErrNoObservation, got %v", err)
	}
}

func TestMatcher_EmptySnapshot(t *testing.T) {
	m := NewMatcher(nil, nil, MatcherConfig{})
	if _, err := m.Match(shipment("NYC", t0)); !errors.Is(err, domain.ErrNoObservation) {
		t.Fatalf("expected ErrNoObservation, got %v", err)
	}
}

func TestMatcher_MaxTimeGap(t *testing.T) {
	m := NewMatcher([]domain.WeatherObservation{
		obs("NYC", t0.Add(5*time.Hour), 10),
	}, nil, MatcherConfig{MaxTimeGap: 2 * time.Hour})

	if _, err := m.Match(shipment("NYC", t0)); !errors.Is(err, domain.ErrNoObservation) {
		t.Fatalf("expected observation beyond max gap to be rejected, got %v", err)
	}

	// Unbounded by default.
	m = NewMatcher([]domain.WeatherObservation{
		obs("NYC", t0.Add(5*time.Hour), 10),
	}, nil, MatcherConfig{})
	if _, err := m.Match(shipment("NYC", t0)); err != nil {
		t.Fatalf("expected unbounded match, got %v", err)
	}
}

func TestMatcher_CoordinateFallback(t *testing.T) {
	nearby := domain.WeatherObservation{
		City: "Guadalupe", Timestamp: t0, TemperatureC: 28,
		Latitude: 25.68, Longitude: -100.26,
	}
	far := domain.WeatherObservation{
		City: "Cancun", Timestamp: t0, TemperatureC: 31,
		Latitude: 21.16, Longitude: -86.85,
	}
	cities := []domain.City{
		{Name: "Monterrey", Latitude: 25.67, Longitude: -100.31, HasCoordinates: true},
	}

	// Fallback disabled: unmatched.
	m := NewMatcher([]domain.WeatherObservation{nearby, far}, cities, MatcherConfig{})
	if _, err := m.Match(shipment("Monterrey", t0)); !errors.Is(err, domain.ErrNoObservation) {
		t.Fatalf("expected unmatched with fallback disabled, got %v", err)
	}

	// Fallback enabled: nearest observed city within radius wins.
	m = NewMatcher([]domain.WeatherObservation{nearby, far}, cities, MatcherConfig{FallbackRadiusKm: 50})
	got, err := m.Match(shipment("Monterrey", t0))
	if err != nil {
		t.Fatalf("Match with fallback: %v", err)
	}
	if got.City != "Guadalupe" {
		t.Fatalf("fallback matched %q, want Guadalupe", got.City)
	}

	// No gazetteer entry for the start city: fallback cannot apply.
	m = NewMatcher([]domain.WeatherObservation{nearby}, nil, MatcherConfig{FallbackRadiusKm: 50})
	if _, err := m.Match(shipment("Monterrey", t0)); !errors.Is(err, domain.ErrNoObservation) {
		t.Fatalf("expected unmatched without gazetteer coordinates, got %v", err)
	}
}
