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

package facet

import (
	"bytes"
	"log"

	"github.com/pkg/errors"
)

// FacetSetMatcher decides whether a decoded facet-set tuple belongs to
// a logical bucket (spec.md C3). Every matcher is fixed to a
// dimension count at construction time; calling Matches with a tuple
// of a different width is a programming error, not a recoverable one,
// and panics the way the teacher's limit.go panics on an invariant
// it considers impossible to hit in practice.
type FacetSetMatcher interface {
	Label() string
	Dims() int
	Matches(dimValues []int64) bool
}

// ByteMatcher is the optional zero-decode fast path some matchers
// support: evaluating directly against packed bytes instead of a
// decoded []int64 tuple.
type ByteMatcher interface {
	FacetSetMatcher
	MatchesBytes(packed []byte, start, numDims int) bool
}

// ExactMatcher matches tuples whose every dimension equals a fixed
// value.
type ExactMatcher struct {
	label  string
	values []int64
	packed []byte
}

// NewExactMatcher builds a matcher requiring dimValues to equal values
// exactly, dimension for dimension.
func NewExactMatcher(label string, values []int64) (*ExactMatcher, error) {
	if len(values) == 0 {
		return nil, errors.Errorf("facet: exact matcher %q needs at least one dimension", label)
	}
	packed := make([]byte, len(values)*8)
	packComparable(values, packed, 0)
	vcopy := make([]int64, len(values))
	copy(vcopy, values)
	return &ExactMatcher{label: label, values: vcopy, packed: packed}, nil
}

// NewExactMatcherFromFacetSet builds an ExactMatcher from a FacetSet's
// canonical comparable values, a convenience for the common case of
// matching one concrete tuple.
func NewExactMatcherFromFacetSet(label string, fs FacetSet) (*ExactMatcher, error) {
	return NewExactMatcher(label, fs.ComparableValues())
}

func (m *ExactMatcher) Label() string { return m.label }
func (m *ExactMatcher) Dims() int     { return len(m.values) }

func (m *ExactMatcher) Matches(dimValues []int64) bool {
	m.checkDims(len(dimValues))
	for i, v := range m.values {
		if dimValues[i] != v {
			return false
		}
	}
	return true
}

func (m *ExactMatcher) MatchesBytes(packed []byte, start, numDims int) bool {
	m.checkDims(numDims)
	return bytes.Equal(packed[start:start+numDims*8], m.packed)
}

func (m *ExactMatcher) checkDims(n int) {
	if n != len(m.values) {
		log.Panicf("facet: matcher %q expects %d dims, got %d", m.label, len(m.values), n)
	}
}

// RangeMatcher matches tuples whose every dimension falls within a
// fixed, inclusive per-dimension bound. Bounds must already be
// normalised to inclusive long values (see NormalizeLongBounds /
// NormalizeDoubleBounds) before reaching this constructor.
type RangeMatcher struct {
	label        string
	lower, upper []int64
}

// NewRangeMatcher builds a matcher requiring lower[i] <= dimValues[i]
// <= upper[i] for every dimension i.
func NewRangeMatcher(label string, lower, upper []int64) (*RangeMatcher, error) {
	if len(lower) == 0 {
		return nil, errors.Errorf("facet: range matcher %q needs at least one dimension", label)
	}
	if len(lower) != len(upper) {
		return nil, errors.Errorf("facet: range matcher %q has %d lower bounds but %d upper bounds", label, len(lower), len(upper))
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return nil, errors.Errorf("facet: range matcher %q dimension %d: lower > upper", label, i)
		}
	}
	lo := make([]int64, len(lower))
	hi := make([]int64, len(upper))
	copy(lo, lower)
	copy(hi, upper)
	return &RangeMatcher{label: label, lower: lo, upper: hi}, nil
}

// NewLongRangeMatcher is a convenience constructor building per-dimension
// bounds from exclusive/inclusive (min, max) pairs over int64 values.
func NewLongRangeMatcher(label string, min []int64, minInclusive []bool, max []int64, maxInclusive []bool) (*RangeMatcher, error) {
	lo, hi, err := NormalizeLongBoundsVec(min, minInclusive, max, maxInclusive)
	if err != nil {
		return nil, errors.Wrapf(err, "facet: range matcher %q", label)
	}
	return NewRangeMatcher(label, lo, hi)
}

// NewDoubleRangeMatcher is the float64 analogue of
// NewLongRangeMatcher: bounds are normalised in double space, then
// projected into the canonical long space every matcher compares in.
func NewDoubleRangeMatcher(label string, min []float64, minInclusive []bool, max []float64, maxInclusive []bool) (*RangeMatcher, error) {
	lo, hi, err := NormalizeDoubleBoundsVec(min, minInclusive, max, maxInclusive)
	if err != nil {
		return nil, errors.Wrapf(err, "facet: range matcher %q", label)
	}
	lower := make([]int64, len(lo))
	upper := make([]int64, len(hi))
	for i := range lo {
		lower[i] = DoubleToSortableLong(lo[i])
		upper[i] = DoubleToSortableLong(hi[i])
	}
	return NewRangeMatcher(label, lower, upper)
}

func (m *RangeMatcher) Label() string { return m.label }
func (m *RangeMatcher) Dims() int     { return len(m.lower) }

func (m *RangeMatcher) Matches(dimValues []int64) bool {
	if len(dimValues) != len(m.lower) {
		log.Panicf("facet: matcher %q expects %d dims, got %d", m.label, len(m.lower), len(dimValues))
	}
	for i := range m.lower {
		if dimValues[i] < m.lower[i] || dimValues[i] > m.upper[i] {
			return false
		}
	}
	return true
}
