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

package rangefacet

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/facet"
)

func checkDims(label string, n int, lens ...int) error {
	for _, l := range lens {
		if l != n {
			return errors.Errorf("facet: range %q has mismatched dimension counts", label)
		}
	}
	return nil
}

// NewLongRange builds a query Range over int64 dimension values,
// normalising each dimension's exclusive/inclusive bounds per
// spec.md 4.1 and encoding them in the field's biased on-disk form, so
// unsigned byte comparison against a document's box matches signed
// numeric order.
func NewLongRange(label string, min, max []int64, minInclusive, maxInclusive []bool) (*Range, error) {
	dims := len(min)
	if err := checkDims(label, dims, len(max), len(minInclusive), len(maxInclusive)); err != nil {
		return nil, err
	}
	return newRange(label, dims, func(i int) ([]byte, []byte, error) {
		lo, hi, err := facet.NormalizeLongBounds(min[i], minInclusive[i], max[i], maxInclusive[i])
		if err != nil {
			return nil, nil, err
		}
		lob := make([]byte, 8)
		hib := make([]byte, 8)
		facet.PutBiasedInt64(lob, lo)
		facet.PutBiasedInt64(hib, hi)
		return lob, hib, nil
	})
}

// NewDoubleRange builds a query Range over float64 dimension values.
func NewDoubleRange(label string, min, max []float64, minInclusive, maxInclusive []bool) (*Range, error) {
	dims := len(min)
	if err := checkDims(label, dims, len(max), len(minInclusive), len(maxInclusive)); err != nil {
		return nil, err
	}
	return newRange(label, dims, func(i int) ([]byte, []byte, error) {
		lo, hi, err := facet.NormalizeDoubleBounds(min[i], minInclusive[i], max[i], maxInclusive[i])
		if err != nil {
			return nil, nil, err
		}
		lob := make([]byte, 8)
		hib := make([]byte, 8)
		facet.PutSortableFloat64(lob, lo)
		facet.PutSortableFloat64(hib, hi)
		return lob, hib, nil
	})
}

// NewIntRange builds a query Range over int32 dimension values,
// encoded with the biased representation range boxes use for signed
// integers.
func NewIntRange(label string, min, max []int32, minInclusive, maxInclusive []bool) (*Range, error) {
	dims := len(min)
	if err := checkDims(label, dims, len(max), len(minInclusive), len(maxInclusive)); err != nil {
		return nil, err
	}
	return newRange(label, dims, func(i int) ([]byte, []byte, error) {
		lo, hi, err := facet.NormalizeInt32Bounds(min[i], minInclusive[i], max[i], maxInclusive[i])
		if err != nil {
			return nil, nil, err
		}
		lob := make([]byte, 4)
		hib := make([]byte, 4)
		facet.PutBiasedInt32(lob, lo)
		facet.PutBiasedInt32(hib, hi)
		return lob, hib, nil
	})
}

// NewFloatRange builds a query Range over float32 dimension values.
func NewFloatRange(label string, min, max []float32, minInclusive, maxInclusive []bool) (*Range, error) {
	dims := len(min)
	if err := checkDims(label, dims, len(max), len(minInclusive), len(maxInclusive)); err != nil {
		return nil, err
	}
	return newRange(label, dims, func(i int) ([]byte, []byte, error) {
		lo, hi, err := facet.NormalizeFloat32Bounds(min[i], minInclusive[i], max[i], maxInclusive[i])
		if err != nil {
			return nil, nil, err
		}
		lob := make([]byte, 4)
		hib := make([]byte, 4)
		facet.PutSortableFloat32(lob, lo)
		facet.PutSortableFloat32(hib, hi)
		return lob, hib, nil
	})
}
