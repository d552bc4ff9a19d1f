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
	"github.com/pkg/errors"

	"github.com/sourcegraph/facet"
)

// SegmentHits bundles one segment's matching-doc bitset with the
// per-segment sorted-set doc-values and the function that translates
// a segment-local ordinal into the reader-wide global ordinal space
// (identity when the reader has a single segment, per spec.md 4.5).
type SegmentHits struct {
	Hits        facet.MatchingDocs
	DocValues   facet.SortedSetDocValues
	ToGlobalOrd func(segOrd int) int
}

// OrdinalFacetCounts is the per-query counter holder for the ordinal
// counting engine (spec.md C5). Counts live in the global ord space;
// TotCount is the number of distinct matching docs that contributed
// at least one count.
type OrdinalFacetCounts struct {
	state    *ReaderState
	counts   []int64
	totCount int64
}

// NewOrdinalFacetCounts allocates a fresh counter array sized to
// state's dictionary and counts every segment in segments.
func NewOrdinalFacetCounts(state *ReaderState, segments []SegmentHits) (*OrdinalFacetCounts, error) {
	c := &OrdinalFacetCounts{state: state, counts: make([]int64, state.ValueCount())}
	for _, seg := range segments {
		if err := state.CheckReader(seg.Hits.Context.Reader); err != nil {
			return nil, err
		}
		if err := c.countSegment(seg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// TotCount is the number of matching documents that contributed to at
// least one ordinal.
func (c *OrdinalFacetCounts) TotCount() int64 { return c.totCount }

// Count returns the global-ord count for ord, or 0 if out of range.
func (c *OrdinalFacetCounts) Count(ord int32) int64 {
	if int(ord) < 0 || int(ord) >= len(c.counts) {
		return 0
	}
	return c.counts[ord]
}

func (c *OrdinalFacetCounts) countSegment(seg SegmentHits) error {
	dv := seg.DocValues
	if dv == nil || seg.Hits.Bits == nil {
		return nil
	}
	numSegOrds := dv.ValueCount()
	if numSegOrds == 0 {
		return nil
	}
	toGlobal := seg.ToGlobalOrd
	if toGlobal == nil {
		toGlobal = func(o int) int { return o }
	}

	// Density heuristic (spec.md 4.5 step 3): remapping every visited
	// ord on the fly is cheaper for a sparse hit set, but for a dense
	// one it's cheaper to accumulate into a per-segment dense array and
	// remap only the non-zero slots once.
	sparse := seg.Hits.Cardinality() < numSegOrds/10

	var segCounts []int64
	if !sparse {
		segCounts = make([]int64, numSegOrds)
	}

	it := seg.Hits.Bits.Iterator()
	for it.HasNext() {
		doc := int(it.Next())
		ok, err := dv.Advance(doc)
		if err != nil {
			return errors.Wrapf(err, "facet: advancing doc values for field %q", c.state.Field())
		}
		if !ok {
			continue
		}
		contributed := false
		for {
			ord, err := dv.NextOrd()
			if err != nil {
				return errors.Wrapf(err, "facet: reading ordinals for field %q", c.state.Field())
			}
			if ord == facet.NoMoreOrds {
				break
			}
			contributed = true
			if sparse {
				c.counts[toGlobal(ord)]++
			} else {
				segCounts[ord]++
			}
		}
		if contributed {
			c.totCount++
		}
	}

	if !sparse {
		for ord, n := range segCounts {
			if n > 0 {
				c.counts[toGlobal(ord)] += n
			}
		}
	}
	return nil
}

// GetTopChildren implements spec.md's getTopChildren(topN, dim,
// path...): the top-N labelled children of dim (optionally drilled
// down through path, hierarchical taxonomies only), or nil if dim (or
// the dim/path combination) is not present in the dictionary or has a
// count of zero.
func (c *OrdinalFacetCounts) GetTopChildren(topN int, dim string, path ...string) (*facet.FacetResult, error) {
	if err := facet.ValidateTopN(topN); err != nil {
		return nil, err
	}
	var r *facet.FacetResult
	var err error
	if c.state.Hierarchical() {
		r, err = c.topChildrenHierarchical(topN, dim, path)
	} else {
		if len(path) > 0 {
			return nil, errors.Errorf("facet: dim %q is flat, path %v is not supported", dim, path)
		}
		r, err = c.topChildrenFlat(topN, dim)
	}
	if err != nil || r == nil || r.Value == 0 {
		return nil, err
	}
	return r, nil
}

func (c *OrdinalFacetCounts) topChildrenFlat(topN int, dim string) (*facet.FacetResult, error) {
	rng, ok := c.state.Flat()[dim]
	if !ok {
		return nil, nil
	}
	var value int64
	childCount := 0
	candidates := make([]facet.LabelValue, 0, rng.End-rng.Start+1)
	for ord := rng.Start; ord <= rng.End; ord++ {
		n := c.counts[ord]
		value += n
		if n > 0 {
			childCount++
			candidates = append(candidates, facet.LabelValue{Label: flatValueLabel(c.state.Label(int32(ord))), Value: n})
		}
	}
	return &facet.FacetResult{
		Dim:         dim,
		Value:       value,
		ChildCount:  childCount,
		LabelValues: facet.TopN(candidates, topN),
	}, nil
}

func (c *OrdinalFacetCounts) topChildrenHierarchical(topN int, dim string, path []string) (*facet.FacetResult, error) {
	full := append([]string{dim}, path...)
	ord, ok := c.state.OrdForPath(full)
	if !ok {
		return nil, nil
	}
	children := c.state.Tree().ChildOrds(ord)
	candidates := make([]facet.LabelValue, 0, len(children))
	childCount := 0
	for _, child := range children {
		n := c.counts[child]
		if n > 0 {
			childCount++
			candidates = append(candidates, facet.LabelValue{Label: lastComponent(c.state.Label(child)), Value: n})
		}
	}
	return &facet.FacetResult{
		Dim:         dim,
		Path:        path,
		Value:       c.counts[ord],
		ChildCount:  childCount,
		LabelValues: facet.TopN(candidates, topN),
	}, nil
}

// GetAllDims returns one FacetResult per dimension with at least one
// count, each a top-N within its dim, sorted by (value desc, dim asc)
// as spec.md 4.8 requires.
func (c *OrdinalFacetCounts) GetAllDims(topN int) ([]*facet.FacetResult, error) {
	if err := facet.ValidateTopN(topN); err != nil {
		return nil, err
	}
	var dimNames []string
	if c.state.Hierarchical() {
		dimNames = c.state.Tree().DimNames()
	} else {
		dimNames = c.state.FlatDims()
	}

	results := make([]*facet.FacetResult, 0, len(dimNames))
	for _, d := range dimNames {
		r, err := c.GetTopChildren(topN, d)
		if err != nil {
			return nil, err
		}
		if r != nil && r.Value > 0 {
			results = append(results, r)
		}
	}
	facet.SortDimResults(results)
	return results, nil
}

func flatValueLabel(label string) string {
	parts := StringToPath(label)
	if len(parts) != 2 {
		return label
	}
	return parts[1]
}

func lastComponent(label string) string {
	parts := StringToPath(label)
	if len(parts) == 0 {
		return label
	}
	return parts[len(parts)-1]
}
