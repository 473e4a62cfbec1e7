package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrNoObservation = errors.New("no weather observation for shipment location")
var ErrRunInProgress = errors.New("pipeline run already in progress")

// ShipmentRecord is a single completed shipment as exported from the
// operational database. Records are read once per run and never mutated.
type ShipmentRecord struct {
	TruckID       string    `json:"truck_id" db:"truck_id"`
	DriverID      string    `json:"driver_id" db:"driver_id"`
	StartTime     time.Time `json:"start_time" db:"start_time"`
	EndTime       time.Time `json:"end_time" db:"end_time"`
	StartLocation string    `json:"start_location" db:"start_location"`
	EndLocation   string    `json:"end_location" db:"end_location"`
	DistanceKm    float64   `json:"shipment_distance" db:"shipment_distance"`
	FuelConsumed  float64   `json:"consumed_fuel" db:"consumed_fuel"`
}

// City is a gazetteer entry from the operational database. Coordinates are
// optional; a city without them cannot be used for weather collection or
// distance-based matching.
type City struct {
	Name           string  `json:"name" db:"name"`
	Latitude       float64 `json:"latitude" db:"latitude"`
	Longitude      float64 `json:"longitude" db:"longitude"`
	HasCoordinates bool    `json:"-" db:"-"`
}

// NormalizeCity canonicalizes a city name for use as a join key. Shipments
// and weather observations are sourced independently, so casing and
// surrounding whitespace cannot be assumed to agree.
func NormalizeCity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
