package domain

// FactRow is one row of the fact_fuel_consumption table: the finalized
// average fuel consumption for a temperature range, keyed by the range
// label. Buckets with zero matched shipments are omitted rather than
// written with a sentinel value.
type FactRow struct {
	TempRange          string  `json:"temp_range" db:"temp_range"`
	AvgFuelConsumption float64 `json:"avg_fuel_consumption" db:"avg_fuel_consumption"`
	SampleCount        int64   `json:"sample_count" db:"sample_count"`
}
