package ports

import (
	"context"
	"time"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

// WeatherProvider fetches hourly weather observations for one city and one
// calendar date from an external weather API.
type WeatherProvider interface {
	// FetchDay returns the hourly observations for the given UTC date,
	// ordered by timestamp ascending.
	FetchDay(ctx context.Context, city domain.City, date time.Time) ([]domain.WeatherObservation, error)
}

// ObservationSink lands collected observations. Implementations upsert by
// the (city, timestamp) identity so re-collecting a date is idempotent.
type ObservationSink interface {
	UpsertObservations(ctx context.Context, obs []domain.WeatherObservation) error
}
