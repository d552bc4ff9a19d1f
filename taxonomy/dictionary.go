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

// Package taxonomy implements the ordinal reader state (spec.md C4)
// and the ordinal counting engine (C5): the flat and hierarchical
// sorted-set taxonomies that back Lucene-style string facets.
package taxonomy

import "strings"

// separator joins path components into the dictionary's on-disk
// label; escape precedes a literal separator or escape byte that
// occurs inside a component. Both are ASCII control characters that
// can never appear as a continuation byte of a multi-byte UTF-8
// sequence, so byte-level scanning never splits a label mid-rune.
const (
	separator byte = 0x1f
	escape    byte = 0x1e
)

// PathToString is the canonical encoding of a taxonomy path into the
// dictionary label spec.md §6 requires implementers to preserve
// exactly. Components are joined with separator; any literal
// separator or escape byte inside a component is escaped.
func PathToString(path []string) string {
	var b strings.Builder
	for i, c := range path {
		if i > 0 {
			b.WriteByte(separator)
		}
		for j := 0; j < len(c); j++ {
			ch := c[j]
			if ch == separator || ch == escape {
				b.WriteByte(escape)
			}
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// StringToPath is the inverse of PathToString.
func StringToPath(label string) []string {
	var path []string
	var cur strings.Builder
	for i := 0; i < len(label); i++ {
		ch := label[i]
		switch {
		case ch == escape && i+1 < len(label):
			i++
			cur.WriteByte(label[i])
		case ch == separator:
			path = append(path, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	path = append(path, cur.String())
	return path
}
