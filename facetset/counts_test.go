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

package facetset

import (
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/facet"
)

// fakeBinaryDocValues is a minimal in-memory BinaryDocValues backed by
// a per-doc byte payload map.
type fakeBinaryDocValues struct {
	perDoc map[int][]byte
	cur    []byte
}

func newFakeBinaryDocValues(perDoc map[int][]byte) *fakeBinaryDocValues {
	return &fakeBinaryDocValues{perDoc: perDoc}
}

func (d *fakeBinaryDocValues) Advance(doc int) (bool, error) {
	v, ok := d.perDoc[doc]
	if !ok {
		d.cur = nil
		return false, nil
	}
	d.cur = v
	return true, nil
}

func (d *fakeBinaryDocValues) BinaryValue() []byte { return d.cur }

func hits(docs ...uint32) facet.MatchingDocs {
	return facet.MatchingDocs{Bits: roaring.BitmapOf(docs...)}
}

// TestExactFacetSetCounting is scenario E4: doc tuples [(1,2,3)],
// [(1,2,3),(4,5,6)], [(7,8,9)] matched against an exact matcher for
// (1,2,3) yields count 2, totCount 2.
func TestExactFacetSetCounting(t *testing.T) {
	doc0 := facet.EncodeFacetSetValue([]facet.FacetSet{facet.LongFacetSet{Values: []int64{1, 2, 3}}})
	doc1 := facet.EncodeFacetSetValue([]facet.FacetSet{
		facet.LongFacetSet{Values: []int64{1, 2, 3}},
		facet.LongFacetSet{Values: []int64{4, 5, 6}},
	})
	doc2 := facet.EncodeFacetSetValue([]facet.FacetSet{facet.LongFacetSet{Values: []int64{7, 8, 9}}})

	dv := newFakeBinaryDocValues(map[int][]byte{0: doc0, 1: doc1, 2: doc2})

	matcher, err := facet.NewExactMatcher("1,2,3", []int64{1, 2, 3})
	require.NoError(t, err)

	counts, err := NewFacetSetCounts(Config{Field: "fs", Matchers: []facet.FacetSetMatcher{matcher}}, []Segment{
		{Hits: hits(0, 1, 2), DocValues: dv},
	})
	require.NoError(t, err)

	require.Equal(t, int64(2), counts.MatcherCount(0))
	require.Equal(t, int64(2), counts.TotCount())
}

func TestFacetSetCountingWithByteFastPath(t *testing.T) {
	doc0 := facet.EncodeFacetSetValue([]facet.FacetSet{facet.LongFacetSet{Values: []int64{1, 2, 3}}})
	dv := newFakeBinaryDocValues(map[int][]byte{0: doc0})

	matcher, err := facet.NewExactMatcher("1,2,3", []int64{1, 2, 3})
	require.NoError(t, err)

	counts, err := NewFacetSetCounts(Config{
		Field:      "fs",
		Matchers:   []facet.FacetSetMatcher{matcher},
		CountBytes: true,
	}, []Segment{{Hits: hits(0), DocValues: dv}})
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.MatcherCount(0))
}

func TestFacetSetCountingRangeMatcher(t *testing.T) {
	doc0 := facet.EncodeFacetSetValue([]facet.FacetSet{facet.LongFacetSet{Values: []int64{5, 5}}})
	doc1 := facet.EncodeFacetSetValue([]facet.FacetSet{facet.LongFacetSet{Values: []int64{50, 50}}})
	dv := newFakeBinaryDocValues(map[int][]byte{0: doc0, 1: doc1})

	matcher, err := facet.NewRangeMatcher("low", []int64{0, 0}, []int64{10, 10})
	require.NoError(t, err)

	counts, err := NewFacetSetCounts(Config{Field: "fs", Matchers: []facet.FacetSetMatcher{matcher}}, []Segment{
		{Hits: hits(0, 1), DocValues: dv},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.MatcherCount(0))
	require.Equal(t, int64(1), counts.TotCount())
}

func TestGetTopChildrenReturnsAllNonZeroInRegistrationOrder(t *testing.T) {
	doc0 := facet.EncodeFacetSetValue([]facet.FacetSet{facet.LongFacetSet{Values: []int64{1}}})
	doc1 := facet.EncodeFacetSetValue([]facet.FacetSet{facet.LongFacetSet{Values: []int64{2}}})
	dv := newFakeBinaryDocValues(map[int][]byte{0: doc0, 1: doc1})

	m1, err := facet.NewExactMatcher("one", []int64{1})
	require.NoError(t, err)
	m2, err := facet.NewExactMatcher("two", []int64{2})
	require.NoError(t, err)
	m3, err := facet.NewExactMatcher("three", []int64{3})
	require.NoError(t, err)

	counts, err := NewFacetSetCounts(Config{Field: "fs", Matchers: []facet.FacetSetMatcher{m3, m1, m2}}, []Segment{
		{Hits: hits(0, 1), DocValues: dv},
	})
	require.NoError(t, err)

	result := counts.GetTopChildren()
	require.Equal(t, []facet.LabelValue{{Label: "one", Value: 1}, {Label: "two", Value: 1}}, result.LabelValues)
}

func TestNewFacetSetCountsRejectsMismatchedDims(t *testing.T) {
	m1, err := facet.NewExactMatcher("a", []int64{1})
	require.NoError(t, err)
	m2, err := facet.NewExactMatcher("b", []int64{1, 2})
	require.NoError(t, err)

	_, err = NewFacetSetCounts(Config{Field: "fs", Matchers: []facet.FacetSetMatcher{m1, m2}}, nil)
	require.Error(t, err)
}

// TestEmptyInputFacetSets is part of scenario E6: no docs means zero
// counts without error.
func TestEmptyInputFacetSets(t *testing.T) {
	m1, err := facet.NewExactMatcher("a", []int64{1})
	require.NoError(t, err)

	counts, err := NewFacetSetCounts(Config{Field: "fs", Matchers: []facet.FacetSetMatcher{m1}}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), counts.TotCount())
	require.Equal(t, int64(0), counts.MatcherCount(0))
	require.Empty(t, counts.GetTopChildren().LabelValues)
}
