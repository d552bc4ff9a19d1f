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
	"github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"

	"github.com/sourcegraph/facet"
)

// Config configures one RangeOnRangeCounts run.
type Config struct {
	Field    string
	Type     facet.ValueType
	Dims     int
	Relation Relation
	Ranges   []*Range
}

// Segment is one segment's matching-doc bitset, the per-segment
// binary doc-values column holding packed boxes for Config.Field, and
// an optional fast-match bitset (spec.md 4.7's "fast-match
// sub-query"): when set, docs it excludes are treated as missing
// without even consulting doc values.
type Segment struct {
	Hits      facet.MatchingDocs
	DocValues facet.BinaryDocValues
	FastMatch *roaring.Bitmap
}

// RangeOnRangeCounts is the per-query counter holder for the
// range-on-range engine. Counts are parallel to Config.Ranges.
type RangeOnRangeCounts struct {
	cfg      Config
	counts   []int64
	totCount int64
}

// NewRangeOnRangeCounts validates cfg and counts every segment.
func NewRangeOnRangeCounts(cfg Config, segments []Segment) (*RangeOnRangeCounts, error) {
	if len(cfg.Ranges) == 0 {
		return nil, errors.New("facet: range-on-range counting requires at least one query range")
	}
	if cfg.Dims == 0 {
		return nil, errors.New("facet: range-on-range counting requires dims > 0")
	}
	for _, r := range cfg.Ranges {
		if len(r.Min) != cfg.Dims || len(r.Max) != cfg.Dims {
			return nil, errors.Errorf("facet: query range %q has %d dimensions, expected %d", r.Label, len(r.Min), cfg.Dims)
		}
	}

	c := &RangeOnRangeCounts{cfg: cfg, counts: make([]int64, len(cfg.Ranges))}
	for _, seg := range segments {
		if err := c.countSegment(seg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *RangeOnRangeCounts) boxSize() int {
	return c.cfg.Dims * c.cfg.Type.EncodedBytes() * 2
}

func (c *RangeOnRangeCounts) countSegment(seg Segment) error {
	if seg.Hits.Bits == nil {
		return nil
	}
	boxSize := c.boxSize()
	c.totCount += int64(seg.Hits.Cardinality())
	missing := 0

	it := seg.Hits.Bits.Iterator()
	for it.HasNext() {
		doc := int(it.Next())
		if seg.FastMatch != nil && !seg.FastMatch.Contains(uint32(doc)) {
			missing++
			continue
		}
		if seg.DocValues == nil {
			missing++
			continue
		}
		ok, err := seg.DocValues.Advance(doc)
		if err != nil {
			return errors.Wrapf(err, "facet: advancing range doc values for field %q", c.cfg.Field)
		}
		if !ok {
			missing++
			continue
		}
		raw := seg.DocValues.BinaryValue()
		if len(raw) == 0 || len(raw)%boxSize != 0 {
			missing++
			continue
		}

		matchedAny := false
		for base := 0; base+boxSize <= len(raw); base += boxSize {
			for ri, qr := range c.cfg.Ranges {
				if c.relates(raw, base, qr) {
					c.counts[ri]++
					matchedAny = true
				}
			}
		}
		if !matchedAny {
			missing++
		}
	}

	c.totCount -= int64(missing)
	return nil
}

// relates evaluates the configured spatial Relation between the box
// at raw[base:base+boxSize()] and query range qr, per spec.md 4.7.
func (c *RangeOnRangeCounts) relates(raw []byte, base int, qr *Range) bool {
	ebytes := c.cfg.Type.EncodedBytes()
	minsStart := base
	maxsStart := base + c.cfg.Dims*ebytes

	intersects, contains, within := true, true, true
	for i := 0; i < c.cfg.Dims; i++ {
		dmin := raw[minsStart+i*ebytes : minsStart+(i+1)*ebytes]
		dmax := raw[maxsStart+i*ebytes : maxsStart+(i+1)*ebytes]
		qmin := qr.Min[i]
		qmax := qr.Max[i]

		if !(facet.CompareUnsignedBytes(qmin, dmax) <= 0 && facet.CompareUnsignedBytes(dmin, qmax) <= 0) {
			intersects = false
		}
		if !(facet.CompareUnsignedBytes(dmin, qmin) <= 0 && facet.CompareUnsignedBytes(qmax, dmax) <= 0) {
			contains = false
		}
		if !(facet.CompareUnsignedBytes(qmin, dmin) <= 0 && facet.CompareUnsignedBytes(dmax, qmax) <= 0) {
			within = false
		}
	}

	switch c.cfg.Relation {
	case Intersects:
		return intersects
	case Contains:
		return contains
	case Within:
		return within
	case Crosses:
		return intersects && !within && !contains
	default:
		return false
	}
}

// TotCount is the number of matching documents with at least one box
// satisfying at least one query range.
func (c *RangeOnRangeCounts) TotCount() int64 { return c.totCount }

// GetAllChildren returns one LabelValue per query range, preserving
// the user-supplied range order (spec.md 4.7).
func (c *RangeOnRangeCounts) GetAllChildren() *facet.FacetResult {
	lvs := make([]facet.LabelValue, len(c.cfg.Ranges))
	childCount := 0
	for i, r := range c.cfg.Ranges {
		lvs[i] = facet.LabelValue{Label: r.Label, Value: c.counts[i]}
		if c.counts[i] > 0 {
			childCount++
		}
	}
	return &facet.FacetResult{
		Dim:         c.cfg.Field,
		Value:       c.totCount,
		ChildCount:  childCount,
		LabelValues: lvs,
	}
}

// GetTopChildren returns the top-N query ranges by count, tie-broken
// by label ascending, via the shared C8 selection routine.
func (c *RangeOnRangeCounts) GetTopChildren(topN int) (*facet.FacetResult, error) {
	if err := facet.ValidateTopN(topN); err != nil {
		return nil, err
	}
	all := c.GetAllChildren()
	candidates := make([]facet.LabelValue, 0, len(all.LabelValues))
	for _, lv := range all.LabelValues {
		if lv.Value > 0 {
			candidates = append(candidates, lv)
		}
	}
	all.LabelValues = facet.TopN(candidates, topN)
	return all, nil
}

// EncodeBox packs one document's box (min then max per dimension,
// both already in the field's on-disk byte form) for tests that
// synthesize range doc values. Multiple boxes are concatenated for a
// multi-valued document.
func EncodeBox(min, max [][]byte) []byte {
	var buf []byte
	for _, b := range min {
		buf = append(buf, b...)
	}
	for _, b := range max {
		buf = append(buf, b...)
	}
	return buf
}
