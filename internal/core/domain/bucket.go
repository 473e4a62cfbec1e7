package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// BucketScheme partitions the real temperature line into fixed, half-open
// intervals. Interior buckets cover [lo, hi) and are labelled "lo-hi"; the
// open-ended bottom and top buckets ("<floor", ">=ceiling") make the
// partition total, so Bucket never fails. A value exactly on a boundary
// belongs to the bucket it opens: 10.0 falls in "10-20", not "0-10".
//
// Boundaries are configuration, not code: the scheme is built once from the
// configured floor, ceiling, and width and is immutable afterwards.
type BucketScheme struct {
	floor   float64
	ceiling float64
	width   float64
	labels  []string
}

// NewBucketScheme builds a scheme covering [floor, ceiling) in width-sized
// bands. ceiling-floor must be a positive whole multiple of width.
func NewBucketScheme(floor, ceiling, width float64) (BucketScheme, error) {
	if width <= 0 {
		return BucketScheme{}, errors.New("bucket width must be positive")
	}
	if ceiling <= floor {
		return BucketScheme{}, errors.New("bucket ceiling must be above floor")
	}
	span := ceiling - floor
	n := math.Round(span / width)
	if math.Abs(n*width-span) > 1e-9 {
		return BucketScheme{}, fmt.Errorf("bucket range %v does not divide evenly by width %v", span, width)
	}

	s := BucketScheme{floor: floor, ceiling: ceiling, width: width}
	s.labels = append(s.labels, "<"+formatBound(floor))
	for i := 0; i < int(n); i++ {
		lo := floor + float64(i)*width
		s.labels = append(s.labels, formatBound(lo)+"-"+formatBound(lo+width))
	}
	s.labels = append(s.labels, ">="+formatBound(ceiling))
	return s, nil
}

// Bucket maps a temperature to exactly one bucket label. Pure and total:
// any float, including implausible values and NaN, yields a label. NaN is
// indistinguishable from "unmeasurably low" upstream, so it maps to the
// bottom bucket.
func (s BucketScheme) Bucket(t float64) string {
	if math.IsNaN(t) || t < s.floor {
		return s.labels[0]
	}
	if t >= s.ceiling {
		return s.labels[len(s.labels)-1]
	}
	idx := int(math.Floor((t - s.floor) / s.width))
	// Guard against float rounding pushing an in-range value past the last
	// interior bucket.
	if idx > len(s.labels)-3 {
		idx = len(s.labels) - 3
	}
	return s.labels[idx+1]
}

// Labels returns every bucket label in ascending temperature order.
func (s BucketScheme) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
