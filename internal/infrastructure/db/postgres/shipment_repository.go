package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

// ShipmentRepository reads the restored operational schema: the shipments
// table and the city gazetteer. The restore step (pg_restore) owns the
// schema; this repository only queries it.
type ShipmentRepository struct {
	db *sqlx.DB
}

var (
	_ ports.ShipmentSource = (*ShipmentRepository)(nil)
	_ ports.CitySource     = (*ShipmentRepository)(nil)
)

func NewShipmentRepository(db *sqlx.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

type shipmentRow struct {
	TruckID       string    `db:"truck_id"`
	DriverID      string    `db:"driver_id"`
	StartTime     time.Time `db:"start_time"`
	EndTime       time.Time `db:"end_time"`
	StartLocation string    `db:"start_location"`
	EndLocation   string    `db:"end_location"`
	DistanceKm    float64   `db:"shipment_distance"`
	FuelConsumed  float64   `db:"consumed_fuel"`
}

func (r *ShipmentRepository) ListShipments(ctx context.Context) ([]domain.ShipmentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var rows []shipmentRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT truck_id, driver_id, start_time, end_time,
		       start_location, end_location, shipment_distance, consumed_fuel
		FROM shipments.shipments
		ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}

	records := make([]domain.ShipmentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.ShipmentRecord{
			TruckID:       row.TruckID,
			DriverID:      row.DriverID,
			StartTime:     row.StartTime.UTC(),
			EndTime:       row.EndTime.UTC(),
			StartLocation: row.StartLocation,
			EndLocation:   row.EndLocation,
			DistanceKm:    row.DistanceKm,
			FuelConsumed:  row.FuelConsumed,
		})
	}
	return records, nil
}

type cityRow struct {
	Name      string          `db:"name"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
}

func (r *ShipmentRepository) ListCities(ctx context.Context) ([]domain.City, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []cityRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT name, latitude, longitude
		FROM shipments.cities
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}

	cities := make([]domain.City, 0, len(rows))
	for _, row := range rows {
		city := domain.City{Name: row.Name}
		if row.Latitude.Valid && row.Longitude.Valid {
			city.Latitude = row.Latitude.Float64
			city.Longitude = row.Longitude.Float64
			city.HasCoordinates = true
		}
		cities = append(cities, city)
	}
	return cities, nil
}
