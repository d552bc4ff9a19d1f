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

// Package rangefacet implements the range-on-range counting engine
// (spec.md C7): counting documents whose multi-dimensional boxes
// intersect, contain, are contained in, or cross each of a set of
// query ranges.
package rangefacet

import "github.com/pkg/errors"

// Relation is the spatial predicate evaluated between a document's
// box and a query Range.
type Relation int

const (
	Intersects Relation = iota
	Contains
	Within
	Crosses
)

func (r Relation) String() string {
	switch r {
	case Intersects:
		return "INTERSECTS"
	case Contains:
		return "CONTAINS"
	case Within:
		return "WITHIN"
	case Crosses:
		return "CROSSES"
	default:
		return "UNKNOWN"
	}
}

// Range is a named, multi-dimensional query box. Min/Max are already
// normalised (inclusive) and encoded per-dimension in the field's
// on-disk byte form (sortable for Double/Float, biased for Long/Int),
// ready for the unsigned byte comparisons the engine performs.
type Range struct {
	Label string
	Min   [][]byte
	Max   [][]byte
}

func newRange(label string, dims int, encode func(i int) ([]byte, []byte, error)) (*Range, error) {
	if dims == 0 {
		return nil, errors.Errorf("facet: range %q needs at least one dimension", label)
	}
	min := make([][]byte, dims)
	max := make([][]byte, dims)
	for i := 0; i < dims; i++ {
		lo, hi, err := encode(i)
		if err != nil {
			return nil, errors.Wrapf(err, "facet: range %q dimension %d", label, i)
		}
		min[i], max[i] = lo, hi
	}
	return &Range{Label: label, Min: min, Max: max}, nil
}
