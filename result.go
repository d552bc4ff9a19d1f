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
	"container/heap"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// LabelValue is one labelled count in a FacetResult's children.
type LabelValue struct {
	Label string
	Value int64
}

func (lv LabelValue) String() string {
	return fmt.Sprintf("%s (%d)", lv.Label, lv.Value)
}

// FacetResult is the labelled outcome of a top-children query against
// one dim/path (spec.md C8).
type FacetResult struct {
	Dim         string
	Path        []string
	Value       int64
	ChildCount  int
	LabelValues []LabelValue
}

// MostPopular returns the highest-count label, or the zero value and
// false if there are no children.
func (r *FacetResult) MostPopular() (LabelValue, bool) {
	if r == nil || len(r.LabelValues) == 0 {
		return LabelValue{}, false
	}
	return r.LabelValues[0], true
}

func (r *FacetResult) String() string {
	return fmt.Sprintf("dim=%s path=%v value=%d childCount=%d children=%v", r.Dim, r.Path, r.Value, r.ChildCount, r.LabelValues)
}

// ValidateTopN rejects a non-positive topN, the precondition every
// getTopChildren-style call enforces (spec.md 4.5/8).
func ValidateTopN(topN int) error {
	if topN <= 0 {
		return errors.Errorf("facet: topN must be > 0, got %d", topN)
	}
	return nil
}

// topNHeap is a fixed-capacity min-heap over LabelValue, ordered
// (count asc; on tie, label desc) so that the root is always the entry
// to evict first. TopN copies the retained entries out and sorts them
// into the user-visible order (count desc; on tie, label asc).
type topNHeap struct {
	items []LabelValue
	cap   int
}

func newTopNHeap(capacity int) *topNHeap {
	h := &topNHeap{cap: capacity}
	h.items = make([]LabelValue, 0, capacity)
	return h
}

func (h *topNHeap) Len() int { return len(h.items) }
func (h *topNHeap) Less(i, j int) bool {
	if h.items[i].Value != h.items[j].Value {
		return h.items[i].Value < h.items[j].Value
	}
	return h.items[i].Label > h.items[j].Label
}
func (h *topNHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *topNHeap) Push(x any)    { h.items = append(h.items, x.(LabelValue)) }
func (h *topNHeap) Pop() any {
	n := len(h.items)
	it := h.items[n-1]
	h.items = h.items[:n-1]
	return it
}

// offer inserts lv, evicting the current minimum if the heap is at
// capacity and lv sorts above it.
func (h *topNHeap) offer(lv LabelValue) {
	if h.cap == 0 {
		return
	}
	if h.Len() < h.cap {
		heap.Push(h, lv)
		return
	}
	min := h.items[0]
	if greaterThan(lv, min) {
		h.items[0] = lv
		heap.Fix(h, 0)
	}
}

// greaterThan reports whether a should be kept over b under the
// display ordering (count desc, label asc): a strictly higher count,
// or an equal count with a lexicographically smaller label.
func greaterThan(a, b LabelValue) bool {
	if a.Value != b.Value {
		return a.Value > b.Value
	}
	return a.Label < b.Label
}

// TopN selects the top n LabelValues from candidates by (value desc,
// label asc), the shared selection routine backing C5's per-dimension
// top-K and C7's getTopChildren.
func TopN(candidates []LabelValue, n int) []LabelValue {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}
	h := newTopNHeap(n)
	for _, c := range candidates {
		h.offer(c)
	}
	out := make([]LabelValue, len(h.items))
	copy(out, h.items)
	slices.SortFunc(out, func(a, b LabelValue) bool { return greaterThan(a, b) })
	return out
}

// SortDimResults sorts a set of per-dimension FacetResults by (value
// desc, dim asc), the ordering getAllDims uses (spec.md 4.8).
func SortDimResults(results []*FacetResult) {
	slices.SortFunc(results, func(a, b *FacetResult) bool {
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Dim < b.Dim
	})
}
