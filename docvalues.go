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

import "github.com/RoaringBitmap/roaring"

// NoMoreOrds terminates per-document ordinal iteration on a
// SortedSetDocValues, mirroring Lucene's NO_MORE_ORDS sentinel.
const NoMoreOrds = -1

// IndexReader is the subset of a segment reader the facet core needs:
// enough to recognise whether two MatchingDocs batches were collected
// against the same reader state (spec.md §7, "Reader mismatch").
type IndexReader interface {
	// CacheKey identifies this reader for ordinal-map caching and for
	// the reader-mismatch check; readers that should be treated as the
	// same underlying segment set must return equal keys.
	CacheKey() any
}

// LeafReaderContext locates one segment within its parent reader.
type LeafReaderContext struct {
	Reader  IndexReader
	DocBase int
}

// MatchingDocs is one segment's contribution to a query's hit set,
// the collector contract spec.md §6 describes. Bits holds the
// matching per-segment document IDs; TotalHits is the number of
// matching docs if the collector tracked it eagerly, or 0 if unknown
// (callers fall back to Bits.GetCardinality()).
type MatchingDocs struct {
	Context   LeafReaderContext
	Bits      *roaring.Bitmap
	TotalHits int
}

// Cardinality returns TotalHits if the collector recorded it, else
// derives it from the bitset.
func (m MatchingDocs) Cardinality() int {
	if m.TotalHits > 0 {
		return m.TotalHits
	}
	if m.Bits == nil {
		return 0
	}
	return int(m.Bits.GetCardinality())
}

// SortedSetDocValues is a dictionary-coded string-set column: each
// document carries zero or more ordinals into a shared, sorted
// dictionary of byte-string labels (spec.md §6).
type SortedSetDocValues interface {
	// LookupOrd returns the label for ord.
	LookupOrd(ord int) ([]byte, error)
	// LookupTerm returns the ord for term, or a negative number if
	// term is absent from the dictionary.
	LookupTerm(term []byte) (int, error)
	// ValueCount is the dictionary size.
	ValueCount() int
	// Advance positions the iterator at the first doc >= doc that
	// carries a value for this field; ok is false if none remains.
	Advance(doc int) (ok bool, err error)
	// NextOrd returns the next ordinal for the document Advance last
	// positioned on, or NoMoreOrds once exhausted.
	NextOrd() (int, error)
}

// OrdinalMap translates a per-segment ordinal into the reader-wide
// global ordinal space (spec.md §3, "global ordinal map").
type OrdinalMap interface {
	GlobalOrd(segmentIndex, segmentOrd int) int
}

// BinaryDocValues is a per-document opaque byte column, the payload
// format facet-set and range-on-range fields are stored in.
type BinaryDocValues interface {
	Advance(doc int) (ok bool, err error)
	BinaryValue() []byte
}
