package ports

import (
	"context"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

// ShipmentSource provides the shipment snapshot for a pipeline run.
// Records are type-valid but not checked for cross-dataset consistency.
type ShipmentSource interface {
	ListShipments(ctx context.Context) ([]domain.ShipmentRecord, error)
}

// WeatherSource provides the weather observation snapshot for a pipeline
// run, keyed uniquely by (city, timestamp).
type WeatherSource interface {
	ListObservations(ctx context.Context) ([]domain.WeatherObservation, error)
}

// CitySource provides the gazetteer exported from the operational database.
// Used by the collector (which cities to fetch weather for) and, optionally,
// by the matcher's coordinate fallback.
type CitySource interface {
	ListCities(ctx context.Context) ([]domain.City, error)
}
