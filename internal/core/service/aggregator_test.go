package service

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

func testScheme(t *testing.T) domain.BucketScheme {
	t.Helper()
	s, err := domain.NewBucketScheme(0, 40, 10)
	if err != nil {
		t.Fatalf("NewBucketScheme: %v", err)
	}
	return s
}

func TestAggregator_Average(t *testing.T) {
	agg := NewAggregator(testScheme(t))
	agg.Fold("10-20", 10)
	agg.Fold("10-20", 20)
	agg.Fold("20-30", 7)

	rows := agg.Finalize()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].TempRange != "10-20" || rows[1].TempRange != "20-30" {
		t.Fatalf("rows out of bucket order: %+v", rows)
	}
	if rows[0].AvgFuelConsumption != 15 {
		t.Fatalf("avg for 10-20 = %v, want 15", rows[0].AvgFuelConsumption)
	}
	if rows[0].SampleCount != 2 {
		t.Fatalf("count for 10-20 = %d, want 2", rows[0].SampleCount)
	}
	if rows[1].AvgFuelConsumption != 7 || rows[1].SampleCount != 1 {
		t.Fatalf("unexpected 20-30 row: %+v", rows[1])
	}
}

func TestAggregator_EmptyBucketsOmitted(t *testing.T) {
	agg := NewAggregator(testScheme(t))
	agg.Fold("0-10", 3)

	rows := agg.Finalize()
	if len(rows) != 1 {
		t.Fatalf("expected only folded buckets in output, got %+v", rows)
	}
}

func TestAggregator_EmptyRun(t *testing.T) {
	rows := NewAggregator(testScheme(t)).Finalize()
	if len(rows) != 0 {
		t.Fatalf("expected no rows for empty run, got %+v", rows)
	}
}

func TestAggregator_FinalizeIdempotent(t *testing.T) {
	agg := NewAggregator(testScheme(t))
	agg.Fold("10-20", 12.5)
	agg.Fold("10-20", 8.25)

	first := agg.Finalize()
	second := agg.Finalize()
	if len(first) != len(second) {
		t.Fatalf("finalize changed row count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("finalize not idempotent: %+v vs %+v", first[i], second[i])
		}
	}
}

func TestAggregator_OrderIndependence(t *testing.T) {
	values := make([]float64, 500)
	rng := rand.New(rand.NewSource(42))
	for i := range values {
		values[i] = rng.Float64()*90 + 5 // 5..95
	}

	fold := func(vs []float64) float64 {
		agg := NewAggregator(testScheme(t))
		for _, v := range vs {
			agg.Fold("10-20", v)
		}
		return agg.Finalize()[0].AvgFuelConsumption
	}

	base := fold(values)
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]float64(nil), values...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := fold(shuffled)
		if rel := math.Abs(got-base) / math.Abs(base); rel > 1e-9 {
			t.Fatalf("fold order changed average beyond tolerance: %v vs %v (rel %v)", got, base, rel)
		}
	}
}
