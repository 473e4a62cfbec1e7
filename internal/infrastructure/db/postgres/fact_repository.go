package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

// FactRepository persists the fact_fuel_consumption table, keyed by the
// temperature range label.
type FactRepository struct {
	db *sqlx.DB
}

var _ ports.FactStore = (*FactRepository)(nil)

func NewFactRepository(db *sqlx.DB) *FactRepository {
	return &FactRepository{db: db}
}

// EnsureSchema creates the fact table when it does not exist yet.
func (r *FactRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fact_fuel_consumption (
			temp_range           TEXT PRIMARY KEY,
			avg_fuel_consumption DOUBLE PRECISION NOT NULL,
			sample_count         BIGINT NOT NULL,
			updated_at           TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure fact schema: %w", err)
	}
	return nil
}

// ReplaceAll swaps the full fact set inside a single transaction. A
// concurrent reader sees either the previous complete set or the new one;
// a failed run rolls back and leaves the previous rows visible.
func (r *FactRepository) ReplaceAll(ctx context.Context, rows []domain.FactRow) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fact transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fact_fuel_consumption`); err != nil {
		return fmt.Errorf("clear fact table: %w", err)
	}

	now := time.Now().UTC()
	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fact_fuel_consumption (temp_range, avg_fuel_consumption, sample_count, updated_at)
			VALUES ($1, $2, $3, $4)`,
			row.TempRange, row.AvgFuelConsumption, row.SampleCount, now,
		)
		if err != nil {
			return fmt.Errorf("insert fact row %q: %w", row.TempRange, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fact transaction: %w", err)
	}
	return nil
}

// List returns the current fact set.
func (r *FactRepository) List(ctx context.Context) ([]domain.FactRow, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows := []domain.FactRow{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT temp_range, avg_fuel_consumption, sample_count
		FROM fact_fuel_consumption
		ORDER BY temp_range`)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	return rows, nil
}
