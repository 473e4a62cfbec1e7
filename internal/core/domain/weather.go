package domain

import (
	"fmt"
	"time"
)

// WeatherObservation is one ambient weather reading for a city at a point in
// time. The (city, timestamp) pair is the natural identity: the collection
// layer enforces uniqueness on it, so processing code may assume at most one
// observation per pair.
type WeatherObservation struct {
	City         string    `json:"city" bson:"city"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
	Latitude     float64   `json:"latitude" bson:"latitude"`
	Longitude    float64   `json:"longitude" bson:"longitude"`
	TemperatureC float64   `json:"temperature_celsius" bson:"temperature_celsius"`
	HumidityPct  float64   `json:"relative_humidity" bson:"relative_humidity"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
}

// Key returns the canonical identity of the observation.
func (o WeatherObservation) Key() string {
	return fmt.Sprintf("%s|%d", NormalizeCity(o.City), o.Timestamp.Unix())
}
