package ports

import (
	"context"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

// FactStore is the persisted fact_fuel_consumption surface, keyed by
// temperature range label.
type FactStore interface {
	// ReplaceAll atomically swaps the entire fact set for rows: a reader
	// observes either the previous complete set or the new one, never a
	// partial write. A failed call leaves the previous set intact.
	ReplaceAll(ctx context.Context, rows []domain.FactRow) error
	// List returns the current fact set.
	List(ctx context.Context) ([]domain.FactRow, error)
}

// RunLock serializes pipeline runs across processes. There is at most one
// writer per run; the lock only guards against overlapping runs triggered
// from different entry points (API and scheduler).
type RunLock interface {
	// Acquire returns false when another run currently holds the lock.
	Acquire(ctx context.Context, runID string) (bool, error)
	Release(ctx context.Context) error
}
