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

// Package facetset implements the facet-set counting engine (spec.md
// C6): iterating per-document binary doc values holding one or more
// typed N-tuples, and evaluating a fixed catalog of matchers against
// each tuple.
package facetset

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/facet"
)

// Config configures one FacetSetCounts run: the field to read, the
// fixed matcher catalog (all of equal dimensionality), and whether to
// evaluate matchers on raw packed bytes (CountBytes) or decode each
// tuple once into a reusable []int64 buffer first.
type Config struct {
	Field      string
	Matchers   []facet.FacetSetMatcher
	CountBytes bool
}

// Segment is one segment's matching-doc bitset paired with the
// per-segment binary doc-values column for Config.Field. DocValues is
// nil when the field has no binary doc-values in this segment, which
// is not an error (spec.md 4.6 failure semantics): it simply
// contributes zero counts.
type Segment struct {
	Hits      facet.MatchingDocs
	DocValues facet.BinaryDocValues
}

// FacetSetCounts is the per-query counter holder for the facet-set
// engine. Counts are parallel to Config.Matchers.
type FacetSetCounts struct {
	cfg      Config
	counts   []int64
	totCount int64
}

// NewFacetSetCounts validates cfg and counts every segment.
func NewFacetSetCounts(cfg Config, segments []Segment) (*FacetSetCounts, error) {
	if len(cfg.Matchers) == 0 {
		return nil, errors.New("facet: facet-set counting requires at least one matcher")
	}
	dims := cfg.Matchers[0].Dims()
	for _, m := range cfg.Matchers[1:] {
		if m.Dims() != dims {
			return nil, errors.Errorf("facet: matcher %q has %d dims, expected %d (all matchers must share dimensionality)", m.Label(), m.Dims(), dims)
		}
	}

	c := &FacetSetCounts{cfg: cfg, counts: make([]int64, len(cfg.Matchers))}
	for _, seg := range segments {
		if err := c.countSegment(seg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *FacetSetCounts) countSegment(seg Segment) error {
	dv := seg.DocValues
	if dv == nil || seg.Hits.Bits == nil {
		return nil
	}

	cachedNumDims := -1
	var buf []int64

	it := seg.Hits.Bits.Iterator()
	for it.HasNext() {
		doc := int(it.Next())
		ok, err := dv.Advance(doc)
		if err != nil {
			return errors.Wrapf(err, "facet: advancing binary doc values for field %q", c.cfg.Field)
		}
		if !ok {
			continue
		}
		raw := dv.BinaryValue()
		if len(raw) < 8 {
			return errors.Errorf("facet: doc %d has a malformed facet set payload for field %q", doc, c.cfg.Field)
		}
		numDims := int(facet.SortableLong(raw[0:8]))
		if numDims <= 0 {
			return errors.Errorf("facet: doc %d declares %d dims for field %q, want > 0", doc, numDims, c.cfg.Field)
		}
		if cachedNumDims == -1 {
			cachedNumDims = numDims
		} else if numDims != cachedNumDims {
			return errors.Errorf("facet: doc %d declares %d dims for field %q, but an earlier doc declared %d", doc, numDims, c.cfg.Field, cachedNumDims)
		}

		tupleSize := numDims * 8
		docMatched := false
		for off := 8; off+tupleSize <= len(raw); off += tupleSize {
			matched := false
			if c.cfg.CountBytes {
				matched = c.evaluateBytes(raw, off, numDims)
			} else {
				if len(buf) != numDims {
					buf = make([]int64, numDims)
				}
				copy(buf, facet.DecodeFacetSetTuple(raw, off, numDims))
				matched = c.evaluateLongs(buf)
			}
			if matched {
				docMatched = true
			}
		}
		if docMatched {
			c.totCount++
		}
	}
	return nil
}

// evaluateLongs tests every matcher against a decoded tuple, in
// registration order, with no short-circuiting — every matcher is
// evaluated for every tuple (spec.md 4.6).
func (c *FacetSetCounts) evaluateLongs(dimValues []int64) bool {
	matchedAny := false
	for i, m := range c.cfg.Matchers {
		if m.Matches(dimValues) {
			c.counts[i]++
			matchedAny = true
		}
	}
	return matchedAny
}

func (c *FacetSetCounts) evaluateBytes(raw []byte, off, numDims int) bool {
	matchedAny := false
	for i, m := range c.cfg.Matchers {
		var matched bool
		if bm, ok := m.(facet.ByteMatcher); ok {
			matched = bm.MatchesBytes(raw, off, numDims)
		} else {
			matched = m.Matches(facet.DecodeFacetSetTuple(raw, off, numDims))
		}
		if matched {
			c.counts[i]++
			matchedAny = true
		}
	}
	return matchedAny
}

// TotCount is the number of matching documents that had at least one
// tuple accepted by at least one matcher.
func (c *FacetSetCounts) TotCount() int64 { return c.totCount }

// MatcherCount returns the count accumulated for cfg.Matchers[i].
func (c *FacetSetCounts) MatcherCount(i int) int64 { return c.counts[i] }

// GetTopChildren returns every matcher with a non-zero count, in
// registration order. The underlying Lucene-derived engine this spec
// distills returns all children rather than a true top-K here (an
// open, unresolved improvement noted in spec.md §9); this engine
// preserves that observable behaviour rather than inventing a ranking
// it isn't asked for.
func (c *FacetSetCounts) GetTopChildren() *facet.FacetResult {
	lvs := make([]facet.LabelValue, 0, len(c.cfg.Matchers))
	childCount := 0
	for i, m := range c.cfg.Matchers {
		if c.counts[i] > 0 {
			childCount++
			lvs = append(lvs, facet.LabelValue{Label: m.Label(), Value: c.counts[i]})
		}
	}
	return &facet.FacetResult{
		Dim:         c.cfg.Field,
		Value:       c.totCount,
		ChildCount:  childCount,
		LabelValues: lvs,
	}
}
