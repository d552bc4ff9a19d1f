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

import "github.com/pkg/errors"

// InvalidOrdinal is returned by Tree.Sibling when an ord has no
// further sibling at its depth.
const InvalidOrdinal int32 = -1

// OrdRange is an inclusive [Start, End] run of ordinals, used by the
// flat (non-hierarchical) dimension layout.
type OrdRange struct {
	Start, End int
}

// FlatDimMap maps a top-level dimension name to the contiguous,
// disjoint run of ordinals that dimension occupies in the dictionary.
type FlatDimMap map[string]OrdRange

// BuildFlatDimMap implements the single forward scan spec.md 4.4
// describes for the flat layout: every label must be a two-component
// dim/value path, and runs are recorded each time the leading
// component changes.
func BuildFlatDimMap(paths [][]string) (FlatDimMap, error) {
	m := make(FlatDimMap)
	if len(paths) == 0 {
		return m, nil
	}
	curDim := ""
	start := 0
	for ord, p := range paths {
		if len(p) != 2 {
			return nil, errors.Errorf("facet: flat taxonomy requires dim/value paths, got %d components at ord %d (%q)", len(p), ord, PathToString(p))
		}
		if ord == 0 {
			curDim = p[0]
			continue
		}
		if p[0] != curDim {
			m[curDim] = OrdRange{Start: start, End: ord - 1}
			curDim = p[0]
			start = ord
		}
	}
	m[curDim] = OrdRange{Start: start, End: len(paths) - 1}
	return m, nil
}

// Tree is the hierarchical ordinal tree derived once from a sorted
// dictionary (spec.md C4). It is immutable and safe to share across
// queries.
type Tree struct {
	hasChildren []bool
	siblings    []int32
	dims        []int32
	dimNames    []string
}

type stackEntry struct {
	ord  int32
	path []string
}

// BuildTree runs the single forward scan with an explicit
// depth-keyed stack spec.md 4.4 and 9 describe, resolving
// hasChildren/siblings for every ordinal and collecting the list of
// top-level dimension roots.
func BuildTree(paths [][]string) (*Tree, error) {
	n := len(paths)
	t := &Tree{
		hasChildren: make([]bool, n),
		siblings:    make([]int32, n),
	}
	var stack []stackEntry
	for ord := 0; ord < n; ord++ {
		path := paths[ord]
		depth := len(path)
		if depth == 0 {
			return nil, errors.Errorf("facet: empty taxonomy path at ord %d", ord)
		}
		if depth == 1 {
			t.dims = append(t.dims, int32(ord))
			t.dimNames = append(t.dimNames, path[0])
		}

		for len(stack) > 0 && len(stack[len(stack)-1].path) >= depth {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(top.path) == depth && samePrefix(top.path, path) {
				t.siblings[top.ord] = int32(ord)
			} else {
				t.siblings[top.ord] = InvalidOrdinal
			}
		}

		if ord+1 < n {
			next := paths[ord+1]
			switch {
			case len(next) > depth:
				t.hasChildren[ord] = true
				stack = append(stack, stackEntry{ord: int32(ord), path: path})
			case len(next) == depth:
				t.siblings[ord] = int32(ord + 1)
			default:
				t.siblings[ord] = InvalidOrdinal
			}
		} else {
			t.siblings[ord] = InvalidOrdinal
		}
	}
	for _, e := range stack {
		t.siblings[e.ord] = InvalidOrdinal
	}
	return t, nil
}

// samePrefix reports whether a and b, both of the same length, share
// every component except the last (i.e. have the same parent path).
func samePrefix(a, b []string) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HasChildren reports whether ord has at least one child.
func (t *Tree) HasChildren(ord int32) bool {
	return int(ord) >= 0 && int(ord) < len(t.hasChildren) && t.hasChildren[ord]
}

// Sibling returns the next ord at the same depth and parent path, or
// InvalidOrdinal.
func (t *Tree) Sibling(ord int32) int32 {
	if int(ord) < 0 || int(ord) >= len(t.siblings) {
		return InvalidOrdinal
	}
	return t.siblings[ord]
}

// Dims returns the ordered list of top-level dimension root ordinals.
func (t *Tree) Dims() []int32 { return t.dims }

// DimNames returns the dimension names parallel to Dims().
func (t *Tree) DimNames() []string { return t.dimNames }

// ChildOrds returns every direct child of ord, in dictionary order.
// It is empty when ord has no children.
func (t *Tree) ChildOrds(ord int32) []int32 {
	if !t.HasChildren(ord) {
		return nil
	}
	var out []int32
	child := ord + 1
	for child != InvalidOrdinal {
		out = append(out, child)
		child = t.Sibling(child)
	}
	return out
}
