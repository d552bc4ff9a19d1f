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

package taxonomy

import (
	"sort"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/facet"
)

type fakeReader struct{ key any }

func (r fakeReader) CacheKey() any { return r.key }

// fakeSortedSetDocValues is a minimal in-memory SortedSetDocValues
// backed by a sorted label dictionary and a per-doc list of ordinals.
type fakeSortedSetDocValues struct {
	labels []string
	perDoc map[int][]int

	curOrds []int
	curIdx  int
}

func newFakeSortedSetDocValues(labels []string, perDoc map[int][]int) *fakeSortedSetDocValues {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)
	return &fakeSortedSetDocValues{labels: sorted, perDoc: perDoc}
}

func (d *fakeSortedSetDocValues) LookupOrd(ord int) ([]byte, error) {
	return []byte(d.labels[ord]), nil
}

func (d *fakeSortedSetDocValues) LookupTerm(term []byte) (int, error) {
	i := sort.SearchStrings(d.labels, string(term))
	if i < len(d.labels) && d.labels[i] == string(term) {
		return i, nil
	}
	return -1, nil
}

func (d *fakeSortedSetDocValues) ValueCount() int { return len(d.labels) }

func (d *fakeSortedSetDocValues) Advance(doc int) (bool, error) {
	ords, ok := d.perDoc[doc]
	if !ok {
		d.curOrds = nil
		d.curIdx = 0
		return false, nil
	}
	d.curOrds = ords
	d.curIdx = 0
	return true, nil
}

func (d *fakeSortedSetDocValues) NextOrd() (int, error) {
	if d.curIdx >= len(d.curOrds) {
		return facet.NoMoreOrds, nil
	}
	ord := d.curOrds[d.curIdx]
	d.curIdx++
	return ord, nil
}

func hits(docs ...uint32) facet.MatchingDocs {
	bm := roaring.BitmapOf(docs...)
	return facet.MatchingDocs{Bits: bm}
}

func labelFor(t *testing.T, dv *fakeSortedSetDocValues, want string) int {
	t.Helper()
	ord, err := dv.LookupTerm([]byte(want))
	require.NoError(t, err)
	require.GreaterOrEqual(t, ord, 0)
	return ord
}

// TestFlatCounts is scenario E1: 3 docs with labels A/x, A/y, A/x.
func TestFlatCounts(t *testing.T) {
	labels := []string{PathToString([]string{"A", "x"}), PathToString([]string{"A", "y"})}
	dv := newFakeSortedSetDocValues(labels, nil)
	xOrd := labelFor(t, dv, PathToString([]string{"A", "x"}))
	yOrd := labelFor(t, dv, PathToString([]string{"A", "y"}))
	dv = newFakeSortedSetDocValues(labels, map[int][]int{
		0: {xOrd},
		1: {yOrd},
		2: {xOrd},
	})

	state, err := NewReaderState(fakeReader{}, "facet_A", dv, Config{Hierarchical: false})
	require.NoError(t, err)

	counts, err := NewOrdinalFacetCounts(state, []SegmentHits{
		{Hits: hits(0, 1, 2), DocValues: dv},
	})
	require.NoError(t, err)

	result, err := counts.GetTopChildren(10, "A")
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, int64(3), result.Value)
	require.Equal(t, 2, result.ChildCount)
	require.Equal(t, []facet.LabelValue{{Label: "x", Value: 2}, {Label: "y", Value: 1}}, result.LabelValues)
	require.Equal(t, int64(3), counts.TotCount())
}

// TestHierarchicalCounts is scenario E2: labels a, a/b, a/b/c, a/d
// across 4 docs, each doc indexing its label plus ancestors.
func TestHierarchicalCounts(t *testing.T) {
	labels := []string{
		PathToString([]string{"a"}),
		PathToString([]string{"a", "b"}),
		PathToString([]string{"a", "b", "c"}),
		PathToString([]string{"a", "d"}),
	}
	dv := newFakeSortedSetDocValues(labels, nil)
	aOrd := labelFor(t, dv, PathToString([]string{"a"}))
	abOrd := labelFor(t, dv, PathToString([]string{"a", "b"}))
	abcOrd := labelFor(t, dv, PathToString([]string{"a", "b", "c"}))
	adOrd := labelFor(t, dv, PathToString([]string{"a", "d"}))

	// Doc 0 has label "a" (indexes just "a"); doc1 has "a/b" (indexes
	// "a" and "a/b"); doc2 has "a/b/c" (indexes all three ancestors);
	// doc3 has "a/d" (indexes "a" and "a/d").
	perDoc := map[int][]int{
		0: {aOrd},
		1: {aOrd, abOrd},
		2: {aOrd, abOrd, abcOrd},
		3: {aOrd, adOrd},
	}
	dv = newFakeSortedSetDocValues(labels, perDoc)

	state, err := NewReaderState(fakeReader{}, "facet_a", dv, Config{Hierarchical: true})
	require.NoError(t, err)

	counts, err := NewOrdinalFacetCounts(state, []SegmentHits{
		{Hits: hits(0, 1, 2, 3), DocValues: dv},
	})
	require.NoError(t, err)

	top, err := counts.GetTopChildren(10, "a")
	require.NoError(t, err)
	require.Equal(t, int64(4), top.Value)
	require.Equal(t, []facet.LabelValue{{Label: "b", Value: 2}, {Label: "d", Value: 1}}, top.LabelValues)

	sub, err := counts.GetTopChildren(10, "a", "b")
	require.NoError(t, err)
	require.Equal(t, int64(2), sub.Value)
	require.Equal(t, []facet.LabelValue{{Label: "c", Value: 1}}, sub.LabelValues)
}

// TestHierarchyClosure is testable property 2: a parent's count is
// never less than any child's count.
func TestHierarchyClosure(t *testing.T) {
	labels := []string{
		PathToString([]string{"a"}),
		PathToString([]string{"a", "b"}),
		PathToString([]string{"a", "b", "c"}),
	}
	dv := newFakeSortedSetDocValues(labels, nil)
	aOrd := labelFor(t, dv, PathToString([]string{"a"}))
	abOrd := labelFor(t, dv, PathToString([]string{"a", "b"}))
	abcOrd := labelFor(t, dv, PathToString([]string{"a", "b", "c"}))
	dv = newFakeSortedSetDocValues(labels, map[int][]int{
		0: {aOrd, abOrd, abcOrd},
		1: {aOrd, abOrd},
	})

	state, err := NewReaderState(fakeReader{}, "f", dv, Config{Hierarchical: true})
	require.NoError(t, err)
	counts, err := NewOrdinalFacetCounts(state, []SegmentHits{{Hits: hits(0, 1), DocValues: dv}})
	require.NoError(t, err)

	require.GreaterOrEqual(t, counts.Count(aOrd), counts.Count(abOrd))
	require.GreaterOrEqual(t, counts.Count(abOrd), counts.Count(abcOrd))
}

// TestOrdinalRemapEquivalence is testable property 4: the sparse and
// dense counting strategies in countSegment must agree. We drive both
// branches by varying the hit-set cardinality against a fixed
// dictionary size.
func TestOrdinalRemapEquivalence(t *testing.T) {
	var labels []string
	for i := 0; i < 200; i++ {
		labels = append(labels, PathToString([]string{"dim", string(rune('a' + (i % 26)))}))
	}
	dv := newFakeSortedSetDocValues(labels, nil)

	perDoc := map[int][]int{}
	var denseDocs []uint32
	for doc := 0; doc < 150; doc++ {
		ord := doc % dv.ValueCount()
		perDoc[doc] = []int{ord}
		denseDocs = append(denseDocs, uint32(doc))
	}
	dvDense := newFakeSortedSetDocValues(labels, perDoc)

	sparsePerDoc := map[int][]int{0: {1}, 1: {2}}
	dvSparse := newFakeSortedSetDocValues(labels, sparsePerDoc)

	stateDense, err := NewReaderState(fakeReader{}, "dim", dvDense, Config{Hierarchical: false})
	require.NoError(t, err)
	countsDense, err := NewOrdinalFacetCounts(stateDense, []SegmentHits{{Hits: hits(denseDocs...), DocValues: dvDense}})
	require.NoError(t, err)

	stateSparse, err := NewReaderState(fakeReader{}, "dim", dvSparse, Config{Hierarchical: false})
	require.NoError(t, err)
	countsSparse, err := NewOrdinalFacetCounts(stateSparse, []SegmentHits{{Hits: hits(0, 1), DocValues: dvSparse}})
	require.NoError(t, err)

	require.Equal(t, int64(1), countsSparse.Count(1))
	require.Equal(t, int64(1), countsSparse.Count(2))

	for ord := 0; ord < dvDense.ValueCount(); ord++ {
		expected := int64(0)
		for doc := 0; doc < 150; doc++ {
			if doc%dvDense.ValueCount() == ord {
				expected++
			}
		}
		require.Equal(t, expected, countsDense.Count(int32(ord)), "ord %d", ord)
	}
}

func TestEmptyInputReturnsNilResults(t *testing.T) {
	labels := []string{PathToString([]string{"A", "x"})}
	dv := newFakeSortedSetDocValues(labels, nil)
	state, err := NewReaderState(fakeReader{}, "A", dv, Config{Hierarchical: false})
	require.NoError(t, err)

	counts, err := NewOrdinalFacetCounts(state, nil)
	require.NoError(t, err)

	result, err := counts.GetTopChildren(10, "A")
	require.NoError(t, err)
	require.Nil(t, result)

	all, err := counts.GetAllDims(10)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestGetTopChildrenUnknownDimReturnsNil(t *testing.T) {
	labels := []string{PathToString([]string{"A", "x"})}
	dv := newFakeSortedSetDocValues(labels, nil)
	state, err := NewReaderState(fakeReader{}, "A", dv, Config{Hierarchical: false})
	require.NoError(t, err)
	counts, err := NewOrdinalFacetCounts(state, nil)
	require.NoError(t, err)

	result, err := counts.GetTopChildren(10, "nope")
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestReaderMismatchIsRejected(t *testing.T) {
	labels := []string{PathToString([]string{"A", "x"})}
	dv := newFakeSortedSetDocValues(labels, map[int][]int{0: {0}})
	state, err := NewReaderState(fakeReader{key: "r1"}, "A", dv, Config{Hierarchical: false})
	require.NoError(t, err)

	other := hits(0)
	other.Context.Reader = fakeReader{key: "r2"}
	_, err = NewOrdinalFacetCounts(state, []SegmentHits{{Hits: other, DocValues: dv}})
	require.Error(t, err)
}
