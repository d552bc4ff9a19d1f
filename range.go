// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package facet holds the data model shared by every facet aggregation
// engine: range normalisation (C1), facet-set tuple primitives (C2),
// facet-set matchers (C3), the consumed doc-values/collector contracts,
// and top-N result assembly (C8). Sub-packages taxonomy, facetset and
// rangefacet each own one counting engine built on top of this package.
package facet

import (
	"math"

	"github.com/pkg/errors"
)

// ValueType identifies the on-disk numeric type of one dimension of a
// facet set tuple or range box. Long and Double occupy 8 encoded
// bytes; Int and Float occupy 4.
type ValueType int

const (
	Long ValueType = iota
	Double
	Int
	Float
)

// EncodedBytes returns the number of bytes this type occupies once
// encoded into its sortable/biased on-disk form.
func (t ValueType) EncodedBytes() int {
	switch t {
	case Long, Double:
		return 8
	case Int, Float:
		return 4
	default:
		panic(errors.Errorf("facet: unknown value type %d", int(t)))
	}
}

func (t ValueType) String() string {
	switch t {
	case Long:
		return "long"
	case Double:
		return "double"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return "unknown"
	}
}

// NormalizeLongBounds rewrites an exclusive long bound to the
// equivalent inclusive one and validates min <= max, per spec.md 4.1.
func NormalizeLongBounds(min int64, minInclusive bool, max int64, maxInclusive bool) (int64, int64, error) {
	if !minInclusive {
		if min == math.MaxInt64 {
			return 0, 0, errors.New("facet: exclusive min is MaxInt64, cannot be incremented")
		}
		min++
	}
	if !maxInclusive {
		if max == math.MinInt64 {
			return 0, 0, errors.New("facet: exclusive max is MinInt64, cannot be decremented")
		}
		max--
	}
	if min > max {
		return 0, 0, errors.New("facet: range matches nothing (min > max after normalisation)")
	}
	return min, max, nil
}

// NormalizeInt32Bounds is the int32 analogue of NormalizeLongBounds.
func NormalizeInt32Bounds(min int32, minInclusive bool, max int32, maxInclusive bool) (int32, int32, error) {
	if !minInclusive {
		if min == math.MaxInt32 {
			return 0, 0, errors.New("facet: exclusive min is MaxInt32, cannot be incremented")
		}
		min++
	}
	if !maxInclusive {
		if max == math.MinInt32 {
			return 0, 0, errors.New("facet: exclusive max is MinInt32, cannot be decremented")
		}
		max--
	}
	if min > max {
		return 0, 0, errors.New("facet: range matches nothing (min > max after normalisation)")
	}
	return min, max, nil
}

// NormalizeDoubleBounds rewrites an exclusive float64 bound to the
// next representable value toward the interior of the range. NaN
// bounds are rejected outright, matching spec.md 4.1.
func NormalizeDoubleBounds(min float64, minInclusive bool, max float64, maxInclusive bool) (float64, float64, error) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return 0, 0, errors.New("facet: NaN is not a valid range bound")
	}
	if !minInclusive {
		min = math.Nextafter(min, math.Inf(1))
	}
	if !maxInclusive {
		// "next value toward -inf", per the open question in spec.md 9:
		// we take the stricter nextDown reading rather than nextUp(-0.0)
		// edge-case ambiguity, and document it here rather than silently
		// picking one.
		max = math.Nextafter(max, math.Inf(-1))
	}
	if min > max {
		return 0, 0, errors.New("facet: range matches nothing (min > max after normalisation)")
	}
	return min, max, nil
}

// NormalizeFloat32Bounds is the float32 analogue of NormalizeDoubleBounds.
func NormalizeFloat32Bounds(min float32, minInclusive bool, max float32, maxInclusive bool) (float32, float32, error) {
	if isNaN32(min) || isNaN32(max) {
		return 0, 0, errors.New("facet: NaN is not a valid range bound")
	}
	if !minInclusive {
		min = nextAfter32(min, true)
	}
	if !maxInclusive {
		max = nextAfter32(max, false)
	}
	if min > max {
		return 0, 0, errors.New("facet: range matches nothing (min > max after normalisation)")
	}
	return min, max, nil
}

func isNaN32(f float32) bool {
	return f != f
}

// nextAfter32 returns the next representable float32 toward +inf (up)
// or -inf (down). math.Nextafter only operates on float64, which loses
// float32 ULP granularity, so this walks the bit pattern directly.
func nextAfter32(v float32, up bool) float32 {
	bits := FloatToSortableInt(v) // monotonic int32 view of v
	if up {
		bits++
	} else {
		bits--
	}
	return SortableIntToFloat(bits)
}

// LongRange is a single inclusive [Min, Max] bound over an int64
// dimension value, the facet-set/range-on-range building block C1
// describes. Label is a user-facing bucket name (e.g. "0-10").
type LongRange struct {
	Label    string
	Min, Max int64
}

// NewLongRange constructs a LongRange, normalising exclusive bounds to
// inclusive ones and rejecting empty ranges.
func NewLongRange(label string, min int64, minInclusive bool, max int64, maxInclusive bool) (*LongRange, error) {
	nmin, nmax, err := NormalizeLongBounds(min, minInclusive, max, maxInclusive)
	if err != nil {
		return nil, errors.Wrapf(err, "facet: range %q", label)
	}
	return &LongRange{Label: label, Min: nmin, Max: nmax}, nil
}

// Contains reports whether v falls within the normalised, inclusive
// range.
func (r *LongRange) Contains(v int64) bool {
	return r.Min <= v && v <= r.Max
}

// DoubleRange is the float64 analogue of LongRange.
type DoubleRange struct {
	Label    string
	Min, Max float64
}

// NewDoubleRange constructs a DoubleRange, normalising exclusive
// bounds to inclusive ones and rejecting NaN or empty ranges.
func NewDoubleRange(label string, min float64, minInclusive bool, max float64, maxInclusive bool) (*DoubleRange, error) {
	nmin, nmax, err := NormalizeDoubleBounds(min, minInclusive, max, maxInclusive)
	if err != nil {
		return nil, errors.Wrapf(err, "facet: range %q", label)
	}
	return &DoubleRange{Label: label, Min: nmin, Max: nmax}, nil
}

// Contains reports whether v falls within the normalised, inclusive
// range.
func (r *DoubleRange) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// NormalizeLongBoundsVec normalises dims-many parallel long bounds
// and validates each dimension independently, the
// multi-dimensional form spec.md 4.1 describes. It returns fresh
// slices; inputs are not mutated.
func NormalizeLongBoundsVec(min []int64, minInclusive []bool, max []int64, maxInclusive []bool) ([]int64, []int64, error) {
	if len(min) != len(max) || len(min) != len(minInclusive) || len(min) != len(maxInclusive) {
		return nil, nil, errors.New("facet: mismatched dimension counts in range bounds")
	}
	nmin := make([]int64, len(min))
	nmax := make([]int64, len(min))
	for i := range min {
		lo, hi, err := NormalizeLongBounds(min[i], minInclusive[i], max[i], maxInclusive[i])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "facet: dimension %d", i)
		}
		nmin[i], nmax[i] = lo, hi
	}
	return nmin, nmax, nil
}

// NormalizeDoubleBoundsVec is the float64 analogue of
// NormalizeLongBoundsVec.
func NormalizeDoubleBoundsVec(min []float64, minInclusive []bool, max []float64, maxInclusive []bool) ([]float64, []float64, error) {
	if len(min) != len(max) || len(min) != len(minInclusive) || len(min) != len(maxInclusive) {
		return nil, nil, errors.New("facet: mismatched dimension counts in range bounds")
	}
	nmin := make([]float64, len(min))
	nmax := make([]float64, len(min))
	for i := range min {
		lo, hi, err := NormalizeDoubleBounds(min[i], minInclusive[i], max[i], maxInclusive[i])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "facet: dimension %d", i)
		}
		nmin[i], nmax[i] = lo, hi
	}
	return nmin, nmax, nil
}
