package service

import (
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

// bucketStats is a running per-bucket accumulator.
type bucketStats struct {
	count int64
	mean  float64
}

// Aggregator accumulates fuel-consumption statistics per temperature
// bucket. It is an explicit, passed-around accumulator: one instance per
// run, never shared across runs, so runs stay composable and testable.
//
// The mean is maintained incrementally (mean += (v-mean)/n) rather than as
// a sum divided once at the end. At this data volume plain summation would
// be acceptable, but the incremental form bounds intermediate magnitudes
// and keeps the result independent of fold order beyond float rounding.
type Aggregator struct {
	scheme  domain.BucketScheme
	buckets map[string]*bucketStats
}

func NewAggregator(scheme domain.BucketScheme) *Aggregator {
	return &Aggregator{
		scheme:  scheme,
		buckets: make(map[string]*bucketStats),
	}
}

// Fold adds one fuel-consumption value to the bucket's running statistics.
func (a *Aggregator) Fold(label string, value float64) {
	b, ok := a.buckets[label]
	if !ok {
		b = &bucketStats{}
		a.buckets[label] = b
	}
	b.count++
	b.mean += (value - b.mean) / float64(b.count)
}

// Finalize returns an immutable snapshot of the per-bucket averages,
// ordered by ascending temperature range. Buckets that received no values
// are omitted. Finalize does not mutate the accumulator: calling it twice
// without intervening folds yields identical results.
func (a *Aggregator) Finalize() []domain.FactRow {
	rows := make([]domain.FactRow, 0, len(a.buckets))
	for _, label := range a.scheme.Labels() {
		b, ok := a.buckets[label]
		if !ok {
			continue
		}
		rows = append(rows, domain.FactRow{
			TempRange:          label,
			AvgFuelConsumption: b.mean,
			SampleCount:        b.count,
		})
	}
	return rows
}
