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

import "github.com/pkg/errors"

// FacetSet is a typed N-tuple attached to a document (spec.md C2). All
// concrete variants reduce their dimension values to a canonical
// int64 "comparable long" space: Long and Int are identity (sign
// extended), Float and Double go through the sortable-bit transform
// (sortable.go). The packed wire form is always dims*8 bytes, per the
// facet-set doc-value layout in spec.md 3/6.
type FacetSet interface {
	// Dims is the tuple width.
	Dims() int
	// ComparableValues returns the canonical long view used by every
	// matcher, in dimension order.
	ComparableValues() []int64
	// PackValues writes this tuple's wire form into buf starting at
	// start and returns the number of bytes written
	// (Dims()*8).
	PackValues(buf []byte, start int) int
	// SizePackedBytes returns Dims()*8.
	SizePackedBytes() int
}

// LongFacetSet is a tuple of int64 dimension values.
type LongFacetSet struct {
	Values []int64
}

func (f LongFacetSet) Dims() int { return len(f.Values) }

func (f LongFacetSet) ComparableValues() []int64 {
	out := make([]int64, len(f.Values))
	copy(out, f.Values)
	return out
}

func (f LongFacetSet) PackValues(buf []byte, start int) int {
	return packComparable(f.ComparableValues(), buf, start)
}

func (f LongFacetSet) SizePackedBytes() int { return len(f.Values) * 8 }

// IntFacetSet is a tuple of int32 dimension values, sign-extended into
// the canonical long space.
type IntFacetSet struct {
	Values []int32
}

func (f IntFacetSet) Dims() int { return len(f.Values) }

func (f IntFacetSet) ComparableValues() []int64 {
	out := make([]int64, len(f.Values))
	for i, v := range f.Values {
		out[i] = int64(v)
	}
	return out
}

func (f IntFacetSet) PackValues(buf []byte, start int) int {
	return packComparable(f.ComparableValues(), buf, start)
}

func (f IntFacetSet) SizePackedBytes() int { return len(f.Values) * 8 }

// FloatFacetSet is a tuple of float32 dimension values, mapped through
// the sortable-bit transform into the canonical long space.
type FloatFacetSet struct {
	Values []float32
}

func (f FloatFacetSet) Dims() int { return len(f.Values) }

func (f FloatFacetSet) ComparableValues() []int64 {
	out := make([]int64, len(f.Values))
	for i, v := range f.Values {
		out[i] = int64(FloatToSortableInt(v))
	}
	return out
}

func (f FloatFacetSet) PackValues(buf []byte, start int) int {
	return packComparable(f.ComparableValues(), buf, start)
}

func (f FloatFacetSet) SizePackedBytes() int { return len(f.Values) * 8 }

// DoubleFacetSet is a tuple of float64 dimension values, mapped
// through the sortable-bit transform into the canonical long space.
type DoubleFacetSet struct {
	Values []float64
}

func (f DoubleFacetSet) Dims() int { return len(f.Values) }

func (f DoubleFacetSet) ComparableValues() []int64 {
	out := make([]int64, len(f.Values))
	for i, v := range f.Values {
		out[i] = DoubleToSortableLong(v)
	}
	return out
}

func (f DoubleFacetSet) PackValues(buf []byte, start int) int {
	return packComparable(f.ComparableValues(), buf, start)
}

func (f DoubleFacetSet) SizePackedBytes() int { return len(f.Values) * 8 }

func packComparable(values []int64, buf []byte, start int) int {
	for i, v := range values {
		PutSortableLong(buf[start+i*8:start+i*8+8], v)
	}
	return len(values) * 8
}

// DecodeFacetSetTuple reads dims comparable-long values out of a
// packed buffer at the given offset, the decode half of PackValues.
func DecodeFacetSetTuple(buf []byte, start, dims int) []int64 {
	out := make([]int64, dims)
	for i := 0; i < dims; i++ {
		out[i] = SortableLong(buf[start+i*8 : start+i*8+8])
	}
	return out
}

// ErrDimsMismatch is returned when a matcher is asked to operate on a
// tuple whose dimension count differs from its own.
var ErrDimsMismatch = errors.New("facet: facet set dimension count mismatch")
