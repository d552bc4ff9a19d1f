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
	"math"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/sourcegraph/facet"
)

// maxDictionarySize bounds the number of distinct labels a single
// dictionary may hold; beyond it ordinals can no longer be addressed
// as a plain Go int without risking overflow on 32-bit platforms,
// matching spec.md's "dictionary size > INT_MAX -> fatal".
const maxDictionarySize = math.MaxInt32

// Config selects how ReaderState interprets the dictionary: as a flat
// two-component dim/value taxonomy, or as a hierarchical tree.
type Config struct {
	Hierarchical bool
}

// ReaderState is the immutable, per-reader-open taxonomy derived from
// a field's sorted-set dictionary (spec.md C4). It is safe to share
// across concurrent queries; each query must open its own doc-values
// iterator via the reader it was built against.
type ReaderState struct {
	cfg        Config
	field      string
	valueCount int
	labels     []string // ord -> dictionary label, sorted ascending
	flat       FlatDimMap
	tree       *Tree
	reader     facet.IndexReader

	mu          sync.Mutex
	ordMapCache map[any]facet.OrdinalMap
}

// NewReaderState performs the single forward scan of dv's dictionary
// spec.md 4.4 describes and builds either the flat dim-range map or
// the hierarchical tree, depending on cfg.
func NewReaderState(reader facet.IndexReader, field string, dv facet.SortedSetDocValues, cfg Config) (*ReaderState, error) {
	valueCount := dv.ValueCount()
	if int64(valueCount) > int64(maxDictionarySize) {
		return nil, errors.Errorf("facet: dictionary for field %q has %s values, exceeding the %s maximum",
			field, humanize.Comma(int64(valueCount)), humanize.Comma(int64(maxDictionarySize)))
	}

	labels := make([]string, valueCount)
	paths := make([][]string, valueCount)
	for ord := 0; ord < valueCount; ord++ {
		b, err := dv.LookupOrd(ord)
		if err != nil {
			return nil, errors.Wrapf(err, "facet: reading dictionary for field %q at ord %d", field, ord)
		}
		labels[ord] = string(b)
		paths[ord] = StringToPath(labels[ord])
	}

	rs := &ReaderState{
		cfg:         cfg,
		field:       field,
		valueCount:  valueCount,
		labels:      labels,
		reader:      reader,
		ordMapCache: make(map[any]facet.OrdinalMap),
	}

	if cfg.Hierarchical {
		tree, err := BuildTree(paths)
		if err != nil {
			return nil, errors.Wrapf(err, "facet: building hierarchical taxonomy for field %q", field)
		}
		rs.tree = tree
	} else {
		flat, err := BuildFlatDimMap(paths)
		if err != nil {
			return nil, errors.Wrapf(err, "facet: building flat taxonomy for field %q", field)
		}
		rs.flat = flat
	}
	return rs, nil
}

func (rs *ReaderState) Field() string       { return rs.field }
func (rs *ReaderState) ValueCount() int     { return rs.valueCount }
func (rs *ReaderState) Hierarchical() bool  { return rs.cfg.Hierarchical }
func (rs *ReaderState) Tree() *Tree         { return rs.tree }
func (rs *ReaderState) Flat() FlatDimMap    { return rs.flat }
func (rs *ReaderState) Label(ord int32) string {
	if int(ord) < 0 || int(ord) >= len(rs.labels) {
		return ""
	}
	return rs.labels[ord]
}

// FlatDims returns the flat layout's dimension names in a stable
// (alphabetical) order. Only valid when Hierarchical() is false.
func (rs *ReaderState) FlatDims() []string {
	names := make([]string, 0, len(rs.flat))
	for d := range rs.flat {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

// OrdForPath resolves the ordinal for an exact dictionary path, using
// binary search over the sorted label list (the same lookup
// SortedSetDocValues.LookupTerm exposes, cached here since the
// dictionary never changes after construction).
func (rs *ReaderState) OrdForPath(path []string) (int32, bool) {
	target := PathToString(path)
	i := sort.SearchStrings(rs.labels, target)
	if i < len(rs.labels) && rs.labels[i] == target {
		return int32(i), true
	}
	return InvalidOrdinal, false
}

// CheckReader enforces spec.md §7's "Reader mismatch" rule: a
// MatchingDocs batch collected against a reader other than the one
// this state was built against is a configuration error, detected
// eagerly rather than producing silently wrong counts.
func (rs *ReaderState) CheckReader(reader facet.IndexReader) error {
	if rs.reader == nil || reader == nil {
		return nil
	}
	if rs.reader.CacheKey() != reader.CacheKey() {
		return errors.Errorf("facet: MatchingDocs reader does not match the reader ReaderState for field %q was built against", rs.field)
	}
	return nil
}

// GlobalOrdinalMap returns the cached OrdinalMap for cacheKey,
// building and caching it via build on first use. The cache is
// guarded by a lock on its own map, the only shared mutable state
// spec.md §5 allows.
func (rs *ReaderState) GlobalOrdinalMap(cacheKey any, build func() (facet.OrdinalMap, error)) (facet.OrdinalMap, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if m, ok := rs.ordMapCache[cacheKey]; ok {
		return m, nil
	}
	m, err := build()
	if err != nil {
		return nil, err
	}
	rs.ordMapCache[cacheKey] = m
	return m, nil
}
